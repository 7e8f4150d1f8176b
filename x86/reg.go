// Package x86 supplies the x86/x64 domain on top of the root asmjit
// package: concrete register constructors, an instruction database
// (the external collaborator the core only ever sees through
// asmjit.InstructionDatabase), and the SSE-to-AVX lifter pass.
package x86

import (
	"fmt"
	"strings"

	asmjit "github.com/ppaulweber/libasmjit"
	"golang.org/x/arch/x86/x86asm"
)

// RegType distinguishes a register's class for the purposes the node
// model cares about: which slot of Operand.regType a register
// constructor fills in, and the bitmask the SSE-to-AVX lifter probes
// to decide whether an instruction touches XMM, MMX, or neither.
// Stored in the low byte of every register Operand this package
// builds.
type RegType uint8

const (
	RegTypeNone RegType = iota
	// RegTypeGP covers every general-purpose integer width (8/16/32/64
	// bit); the width itself lives in Operand.Size, not RegType, since
	// the lifter only ever needs to know "general purpose" vs. vector.
	RegTypeGP
	RegTypeMMX
	RegTypeXMM
	RegTypeYMM
	RegTypeZMM
)

func (t RegType) String() string {
	switch t {
	case RegTypeGP:
		return "gp"
	case RegTypeMMX:
		return "mmx"
	case RegTypeXMM:
		return "xmm"
	case RegTypeYMM:
		return "ymm"
	case RegTypeZMM:
		return "zmm"
	default:
		return "none"
	}
}

// RegMask is a bitset over RegType, the "set of register types
// referenced across its operands" the lifter's probe phase computes
// per instruction (spec'd as kProbeMmx/kProbeXmm in the original).
type RegMask uint8

func maskOf(t RegType) RegMask { return RegMask(1) << uint(t) }

const (
	MaskGP  = RegMask(1) << RegTypeGP
	MaskMMX = RegMask(1) << RegTypeMMX
	MaskXMM = RegMask(1) << RegTypeXMM
	MaskYMM = RegMask(1) << RegTypeYMM
	MaskZMM = RegMask(1) << RegTypeZMM
)

func (m RegMask) Has(t RegType) bool { return m&maskOf(t) != 0 }

// x86asm's Reg constants lay out each GP width as a contiguous block;
// gpBase anchors a 0-based register id onto the block for a given width
// so x86asm.Reg.String() can supply the names instead of a hand-rolled
// table. MMX/XMM/YMM/ZMM names are rendered locally by RegName.
var gpBase = map[uint8]x86asm.Reg{
	1: x86asm.AL,
	2: x86asm.AX,
	4: x86asm.EAX,
	8: x86asm.RAX,
}

// GP builds a general-purpose register operand. width is the register
// width in bytes (1, 2, 4, or 8); id is the 0-based encoding index
// (0=A, 1=C, 2=D, 3=B, ... matching x86asm's register order, not the
// ModRM/REX encoding order used by an assembler back end).
func GP(width uint8, id uint8) asmjit.Operand {
	if id > 15 {
		panic(fmt.Sprintf("x86: general-purpose register id %d out of range", id))
	}
	return asmjit.NewReg(uint8(RegTypeGP), id, width)
}

// MMX builds an MMX register operand (id 0..7).
func MMX(id uint8) asmjit.Operand {
	if id > 7 {
		panic(fmt.Sprintf("x86: mmx register id %d out of range", id))
	}
	return asmjit.NewReg(uint8(RegTypeMMX), id, 8)
}

// XMM builds a 128-bit XMM register operand (id 0..15).
func XMM(id uint8) asmjit.Operand {
	if id > 15 {
		panic(fmt.Sprintf("x86: xmm register id %d out of range", id))
	}
	return asmjit.NewReg(uint8(RegTypeXMM), id, 16)
}

// YMM builds a 256-bit YMM register operand (id 0..15). x86asm (the
// disassembler this package leans on for GP/MMX/XMM names) predates
// AVX-256 register decoding, so YMM/ZMM names are rendered locally
// instead of through x86asm.Reg.String().
func YMM(id uint8) asmjit.Operand {
	if id > 15 {
		panic(fmt.Sprintf("x86: ymm register id %d out of range", id))
	}
	return asmjit.NewReg(uint8(RegTypeYMM), id, 32)
}

// ZMM builds a 512-bit ZMM register operand (id 0..31).
func ZMM(id uint8) asmjit.Operand {
	if id > 31 {
		panic(fmt.Sprintf("x86: zmm register id %d out of range", id))
	}
	return asmjit.NewReg(uint8(RegTypeZMM), id, 64)
}

// XMM0 is the implicit mask register the Blend conversion mode appends
// when an AVX blend instruction's legacy SSE form only had two
// explicit operands.
var XMM0 = XMM(0)

// RegName renders op (which must be a register operand built by this
// package) as a lowercase mnemonic register name. General-purpose
// names come straight from x86asm.Reg.String() (its Plan9-flavored
// "RAX"/"EAX"/"AL" names lowercase into the familiar form). x86asm has
// no GNU-syntax export for vector registers (its M0.."M7"/X0.."X15"
// don't match conventional "%mmN"/"%xmmN" mnemonics), and doesn't
// model YMM/ZMM at all, so those four classes are rendered directly.
func RegName(op asmjit.Operand) string {
	if !op.IsReg() {
		return "?"
	}
	id := op.RegID()
	switch RegType(op.RegType()) {
	case RegTypeGP:
		base, ok := gpBase[op.Size()]
		if !ok {
			return fmt.Sprintf("gp%d_%d", op.Size()*8, id)
		}
		return strings.ToLower((base + x86asm.Reg(id)).String())
	case RegTypeMMX:
		return fmt.Sprintf("mm%d", id)
	case RegTypeXMM:
		return fmt.Sprintf("xmm%d", id)
	case RegTypeYMM:
		return fmt.Sprintf("ymm%d", id)
	case RegTypeZMM:
		return fmt.Sprintf("zmm%d", id)
	default:
		return "?"
	}
}

// regMaskOf returns the RegMask bit for a register operand, or 0 for
// any non-register operand (memory, immediate, label, none) — the
// lifter only cares about registers actually referenced.
func regMaskOf(op asmjit.Operand) RegMask {
	if !op.IsReg() {
		return 0
	}
	return maskOf(RegType(op.RegType()))
}
