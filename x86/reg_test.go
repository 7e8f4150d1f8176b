package x86

import (
	"testing"

	asmjit "github.com/ppaulweber/libasmjit"
	"github.com/stretchr/testify/assert"
)

func TestRegNameGP(t *testing.T) {
	assert.Equal(t, "rax", RegName(GP(8, 0)))
	assert.Equal(t, "eax", RegName(GP(4, 0)))
	assert.Equal(t, "al", RegName(GP(1, 0)))
}

func TestRegNameVector(t *testing.T) {
	assert.Equal(t, "xmm3", RegName(XMM(3)))
	assert.Equal(t, "mm2", RegName(MMX(2)))
	assert.Equal(t, "ymm5", RegName(YMM(5)))
	assert.Equal(t, "zmm10", RegName(ZMM(10)))
}

func TestRegMaskProbe(t *testing.T) {
	mask := probeRegs([]asmjit.Operand{})
	assert.False(t, mask.Has(RegTypeXMM))

	mask = probeRegs([]asmjit.Operand{XMM(0), MMX(1)})
	assert.True(t, mask.Has(RegTypeXMM))
	assert.True(t, mask.Has(RegTypeMMX))
	assert.False(t, mask.Has(RegTypeGP))
}
