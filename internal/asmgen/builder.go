/*
 * Copyright 2025 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package asmgen

import (
	"fmt"

	"github.com/cloudwego/rvgen/internal/frame"
	"github.com/cloudwego/rvgen/internal/layout"
	"github.com/cloudwego/rvgen/internal/riscv"
	"github.com/cloudwego/rvgen/internal/target"
	"github.com/cloudwego/rvgen/internal/writer"
)

const rvInstructionAlignmentBytes = 4

// Sentry values planted below each stack for overflow detection ("-SENTRY-"
// and "-SEN" in ASCII).
const (
	sentryValueRv64 = 0x2d5952544e45532d
	sentryValueRv32 = 0x4e45532d
)

const (
	statusFsMaskDirty = 3 << 13
	statusFsClean     = 2 << 13
)

// LabelRole identifies a well-known label of the boot file.
type LabelRole int

const (
	ParkHart LabelRole = iota
	SecondaryStart
	BootIdxVariable
	ResetStart
	RestoreTrapFrame
	CreateTrapFrame
	HandleTrap
	ThreadPointerBlock
	JumpToRustEntrypoint
	BssInitDone
	ProtectStack
	GetTrapAddr
)

// NamedReg identifies a register with a fixed role across the boot path.
type NamedReg int

const (
	NamedBootId NamedReg = iota
	NamedHartId
)

// Builder accumulates assembly sentences. It tracks a free temporary
// register pool and the well-known labels; misuse of either is a generation
// defect and panics.
type Builder struct {
	rt        *frame.RtConfig
	nextLabel int
	sentences []Sentence
	freeRegs  []riscv.Reg
	labels    map[LabelRole]string
	namedRegs map[NamedReg]riscv.Reg
}

func NewBuilder(rt *frame.RtConfig) *Builder {
	b := &Builder{
		rt:        rt,
		nextLabel: 1,
		labels:    make(map[LabelRole]string),
		namedRegs: make(map[NamedReg]riscv.Reg),
	}
	b.comment(writer.Banner)
	return b
}

// Generate renders all recorded sentences into the writer.
func (self *Builder) Generate(w *writer.Writer) {
	for _, s := range self.sentences {
		s.render(w, self.rt)
	}
}

func (self *Builder) add(s Sentence) {
	self.sentences = append(self.sentences, s)
}

// Register pool.

func (self *Builder) assignFreeRegPool(regs ...riscv.Reg) {
	self.freeRegs = append(self.freeRegs, regs...)
}

func (self *Builder) drainFreeRegPool() {
	self.freeRegs = self.freeRegs[:0]
}

// initDefaultFreeRegPool resets the pool to the full temporary set. Called
// wherever the emitted code has just saved or not yet touched the
// temporaries.
func (self *Builder) initDefaultFreeRegPool() {
	self.drainFreeRegPool()
	self.assignFreeRegPool(
		riscv.T0, riscv.T1, riscv.T2,
		riscv.T3, riscv.T4, riscv.T5, riscv.T6,
	)
}

func (self *Builder) getFreeReg() riscv.Reg {
	if len(self.freeRegs) == 0 {
		panic("asmgen: out of free general registers")
	}
	reg := self.freeRegs[len(self.freeRegs)-1]
	self.freeRegs = self.freeRegs[:len(self.freeRegs)-1]
	return reg
}

func (self *Builder) releaseReg(reg riscv.Reg) {
	for _, r := range self.freeRegs {
		if r == reg {
			panic("asmgen: double release of register " + reg.String())
		}
	}
	self.freeRegs = append(self.freeRegs, reg)
}

// Named registers.

func (self *Builder) allocateIdRegs() {
	self.namedRegs[NamedBootId] = self.getFreeReg()
	self.namedRegs[NamedHartId] = self.getFreeReg()
}

func (self *Builder) releaseIdRegs() {
	self.releaseReg(self.bootIdReg())
	self.releaseReg(self.hartIdReg())
	delete(self.namedRegs, NamedBootId)
	delete(self.namedRegs, NamedHartId)
}

func (self *Builder) namedReg(name NamedReg) riscv.Reg {
	reg, ok := self.namedRegs[name]
	if !ok {
		panic("asmgen: named register not allocated")
	}
	return reg
}

func (self *Builder) bootIdReg() riscv.Reg {
	return self.namedReg(NamedBootId)
}

func (self *Builder) hartIdReg() riscv.Reg {
	return self.namedReg(NamedHartId)
}

// Labels.

func (self *Builder) addLabels(labels map[LabelRole]string) {
	for role, name := range labels {
		self.labels[role] = name
	}
}

func (self *Builder) labelFor(role LabelRole) string {
	name, ok := self.labels[role]
	if !ok {
		panic("asmgen: no label registered for role")
	}
	return name
}

// nextNumericLabel hands out local numeric labels, referenced with the
// "Nf"/"Nb" direction suffixes.
func (self *Builder) nextNumericLabel() string {
	label := self.nextLabel
	self.nextLabel++
	return fmt.Sprintf("%d", label)
}

func forwardLabel(label string) string {
	return label + "f"
}

func backwardLabel(label string) string {
	return label + "b"
}

// Sections and labels.

func (self *Builder) textSectionFlags() string {
	return "ax"
}

func (self *Builder) globalEntrypoint(sectionName string) {
	self.section(sectionName, self.textSectionFlags())
	self.add(globalEntrypoint{name: self.labelFor(ResetStart)})
}

func (self *Builder) globalFunction(fnName string) {
	self.section(layout.TextDefaultSection(), self.textSectionFlags())
	self.add(globalEntrypoint{name: fnName})
}

func (self *Builder) section(name, flags string) {
	self.add(section{name: name, flags: flags})
}

func (self *Builder) endSection() {
	self.add(endSection{})
}

// label places a label, optionally preceded by an alignment directive and a
// section switch.
func (self *Builder) label(name string, alignment int, sectionName, sectionFlags string) {
	if alignment > 0 {
		self.align(alignment)
	}
	if sectionName != "" {
		self.section(sectionName, sectionFlags)
	}
	self.add(label{name: name})
}

// CSR instructions.

func (self *Builder) csrw(csr riscv.Csr, rs riscv.Reg) {
	self.add(csrw{csr: csr, rs: rs})
}

func (self *Builder) csrsBits(csr riscv.Csr, rs riscv.Reg) {
	self.add(csrs{csr: csr, rs: rs})
}

func (self *Builder) csrcBits(csr riscv.Csr, rs riscv.Reg) {
	self.add(csrc{csr: csr, rs: rs})
}

func (self *Builder) csrwZero(csr riscv.Csr) {
	self.add(csrw{csr: csr, rs: riscv.Zero})
}

func (self *Builder) csrr(rd riscv.Reg, csr riscv.Csr) {
	self.add(csrr{rd: rd, csr: csr})
}

func (self *Builder) csrrw(rd riscv.Reg, csr riscv.Csr, rs riscv.Reg) {
	self.add(csrrw{rd: rd, csr: csr, rs: rs})
}

// Assembler options.

func (self *Builder) optionPush() {
	self.add(option{name: "push"})
}

func (self *Builder) optionPop() {
	self.add(option{name: "pop"})
}

func (self *Builder) optionNorelax() {
	self.add(option{name: "norelax"})
}

// Loads, stores, moves.

func (self *Builder) la(rd riscv.Reg, symbol string) {
	self.add(la{rd: rd, symbol: symbol})
}

func (self *Builder) liUnconstrained(rd riscv.Reg, imm int) {
	self.add(li{rd: rd, imm: imm})
}

// liConstrained enforces the 12-bit immediate window so the value can later
// participate in addi-style arithmetic without materialization surprises.
func (self *Builder) liConstrained(rd riscv.Reg, imm int) {
	checkImmRange(imm)
	self.add(li{rd: rd, imm: imm})
}

func checkImmRange(imm int) {
	if imm < -2048 || imm > 2047 {
		panic(fmt.Sprintf("asmgen: immediate value %d out of range", imm))
	}
}

func (self *Builder) load(rd, rs riscv.Reg, offset int) {
	self.add(load{rd: rd, rs: rs, offset: offset})
}

func (self *Builder) store(rs2, rs1 riscv.Reg, offset int) {
	self.add(store{rs2: rs2, rs1: rs1, offset: offset})
}

func (self *Builder) storeZero(rs1 riscv.Reg) {
	self.store(riscv.Zero, rs1, 0)
}

func (self *Builder) fload(rd riscv.FReg, rs riscv.Reg, offset int) {
	self.add(fload{rd: rd, rs: rs, offset: offset})
}

func (self *Builder) fstore(rs2 riscv.FReg, rs1 riscv.Reg, offset int) {
	self.add(fstore{rs2: rs2, rs1: rs1, offset: offset})
}

func (self *Builder) moveToFloat(fd riscv.FReg, rs riscv.Reg) {
	self.add(moveToFloat{fd: fd, rs: rs})
}

func (self *Builder) mov(rd, rs riscv.Reg) {
	self.add(regOp{op: "add", rd: rd, rs1: rs, rs2: riscv.Zero})
}

// ALU.

func (self *Builder) addi(rd, rs riscv.Reg, imm int) {
	checkImmRange(imm)
	self.add(immOp{op: "addi", rd: rd, rs: rs, imm: imm})
}

func (self *Builder) xori(rd, rs riscv.Reg, imm int) {
	checkImmRange(imm)
	self.add(immOp{op: "xori", rd: rd, rs: rs, imm: imm})
}

func (self *Builder) andi(rd, rs riscv.Reg, imm int) {
	checkImmRange(imm)
	self.add(immOp{op: "andi", rd: rd, rs: rs, imm: imm})
}

func (self *Builder) addRegs(rd, rs1, rs2 riscv.Reg) {
	self.add(regOp{op: "add", rd: rd, rs1: rs1, rs2: rs2})
}

func (self *Builder) sub(rd, rs1, rs2 riscv.Reg) {
	self.add(regOp{op: "sub", rd: rd, rs1: rs1, rs2: rs2})
}

func (self *Builder) mul(rd, rs1, rs2 riscv.Reg) {
	self.add(regOp{op: "mul", rd: rd, rs1: rs1, rs2: rs2})
}

func (self *Builder) and(rd, rs1, rs2 riscv.Reg) {
	self.add(regOp{op: "and", rd: rd, rs1: rs1, rs2: rs2})
}

func (self *Builder) or(rd, rs1, rs2 riscv.Reg) {
	self.add(regOp{op: "or", rd: rd, rs1: rs1, rs2: rs2})
}

// Branches and jumps.

func (self *Builder) bgeu(rs1, rs2 riscv.Reg, label string) {
	self.add(branch{op: "bgeu", rs1: rs1, rs2: rs2, label: label})
}

func (self *Builder) bltu(rs1, rs2 riscv.Reg, label string) {
	self.add(branch{op: "bltu", rs1: rs1, rs2: rs2, label: label})
}

func (self *Builder) beq(rs1, rs2 riscv.Reg, label string) {
	self.add(branch{op: "beq", rs1: rs1, rs2: rs2, label: label})
}

func (self *Builder) bne(rs1, rs2 riscv.Reg, label string) {
	self.add(branch{op: "bne", rs1: rs1, rs2: rs2, label: label})
}

func (self *Builder) beqz(rs riscv.Reg, label string) {
	self.add(branchZero{op: "beqz", rs: rs, label: label})
}

func (self *Builder) bnez(rs riscv.Reg, label string) {
	self.add(branchZero{op: "bnez", rs: rs, label: label})
}

func (self *Builder) j(label string) {
	self.add(jump{op: "j", label: label})
}

func (self *Builder) jal(label string) {
	self.add(jump{op: "jal", label: label})
}

func (self *Builder) jr(rs riscv.Reg) {
	self.add(jr{rs: rs})
}

func (self *Builder) jalr(rd, rs1 riscv.Reg, offset int) {
	self.add(jalr{rd: rd, rs1: rs1, offset: offset})
}

// Atomics, system, data.

func (self *Builder) amoadd(rd, rs1, rs2 riscv.Reg) {
	self.add(amoadd{rd: rd, rs1: rs1, rs2: rs2})
}

func (self *Builder) scReg(rd, rs2, rs1 riscv.Reg) {
	self.add(sc{rd: rd, rs2: rs2, rs1: rs1})
}

func (self *Builder) sfence(rs1, rs2 riscv.Reg) {
	self.add(sfence{rs1: rs1, rs2: rs2})
}

func (self *Builder) wfi() {
	self.add(wfi{})
}

func (self *Builder) ret() {
	self.add(ret{})
}

func (self *Builder) modeRet() {
	self.add(modeRet{})
}

func (self *Builder) dword(val uint64) {
	self.add(dword{val: val})
}

func (self *Builder) word(val uint32) {
	self.add(word{val: val})
}

func (self *Builder) xword(val int) {
	if self.rt.XlenBytes() == 8 {
		self.dword(uint64(val))
	} else {
		self.word(uint32(val))
	}
}

// rept fills count bytes with repeated native words of the given value.
func (self *Builder) rept(count, val int) {
	self.add(rept{count: count / self.rt.XlenBytes()})
	self.xword(val)
	self.add(endRept{})
}

func (self *Builder) align(alignmentBytes int) {
	self.add(alignBytes{alignment: alignmentBytes})
}

func (self *Builder) comment(text string) {
	self.add(comment{text: text})
}

func (self *Builder) preamble() {
	if self.rt.Xlen() == target.Xlen64 {
		// The assembler rejects AMO mnemonics unless the arch attribute
		// carries the A extension; default to rv64gc on RV64.
		self.add(attribute{name: "arch", value: "rv64gc"})
	}
}

// Runtime-flag and tp-block helpers.

// setRtFlagBit loads the flag's mask into reg, clearing everything else.
func (self *Builder) setRtFlagBit(reg riscv.Reg, flag frame.RtFlag) {
	self.addi(reg, riscv.Zero, flag.Mask())
}

func (self *Builder) writeRtFlagsToTpBlock(reg riscv.Reg) {
	self.store(reg, riscv.Tp, self.rt.TpBlockRtFlagsOffset())
}

func (self *Builder) clearRtFlagsInTpBlock() {
	self.comment("Clear out RT state (flags) in tpblock")
	self.writeRtFlagsToTpBlock(riscv.Zero)
}

func (self *Builder) readRtFlagsFromTpBlock(reg riscv.Reg) {
	self.load(reg, riscv.Tp, self.rt.TpBlockRtFlagsOffset())
}

// The trapframe variants assume sp points at the frame base.

func (self *Builder) storeRtFlagsToTrapFrame(reg riscv.Reg) {
	self.store(reg, riscv.Sp, self.rt.RtFlagsOffset())
}

func (self *Builder) loadRtFlagsFromTrapFrame(reg riscv.Reg) {
	self.load(reg, riscv.Sp, self.rt.RtFlagsOffset())
}

func (self *Builder) storeTrapFrameAddressToTpBlock(reg riscv.Reg) {
	self.store(reg, riscv.Tp, self.rt.TpBlockTrapFrameOffset())
}

func (self *Builder) loadTrapFrameAddressFromTpBlock(reg riscv.Reg) {
	self.load(reg, riscv.Tp, self.rt.TpBlockTrapFrameOffset())
}
