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
)

func zeroTrapCsrs(asm *Builder) {
	asm.comment("Zero out interrupt/exception CSRs")
	asm.csrwZero(riscv.CsrIe)
	if asm.rt.Mode() == target.MachineMode {
		asm.csrwZero(riscv.CsrMideleg)
		asm.csrwZero(riscv.CsrMedeleg)
	}
}

func writeGp(asm *Builder) {
	asm.comment("Set up global pointer")
	asm.optionPush()
	asm.optionNorelax()
	asm.la(riscv.Gp, layout.GlobalPointerSymbol)
	asm.optionPop()
}

func zeroBss(asm *Builder) {
	if asm.rt.SkipBssClearing() {
		return
	}
	asm.comment("Zero out BSS")
	startReg := asm.getFreeReg()
	endReg := asm.getFreeReg()

	asm.la(startReg, layout.Bss.StartSymbol())
	asm.la(endReg, layout.Bss.EndSymbol())

	loopLabel := asm.nextNumericLabel()
	exitLabel := asm.nextNumericLabel()

	asm.bgeu(startReg, endReg, forwardLabel(exitLabel))
	asm.label(loopLabel, 0, "", "")
	asm.storeZero(startReg)
	asm.addi(startReg, startReg, asm.rt.XlenBytes())
	asm.bltu(startReg, endReg, backwardLabel(loopLabel))
	asm.label(exitLabel, 0, "", "")

	asm.releaseReg(startReg)
	asm.releaseReg(endReg)

	if asm.rt.IsMultiHart() {
		addrReg := asm.getFreeReg()
		valReg := asm.getFreeReg()

		asm.comment("Mark BSS init done")
		asm.la(addrReg, asm.labelFor(BssInitDone))
		asm.liConstrained(valReg, 1)
		asm.store(valReg, addrReg, 0)

		asm.releaseReg(addrReg)
		asm.releaseReg(valReg)
	}
}

// initStackPointerUsingBootId places sp at the top of the hart's own stack
// slice: _stack_top minus (boot_id + 1) whole stacks. The +1 keeps the
// stack-bottom math uniform with getStackBottom.
func initStackPointerUsingBootId(asm *Builder) {
	asm.comment("Initialize stack pointer using boot id")

	sub := asm.getFreeReg()
	asm.liUnconstrained(sub, asm.rt.HartStackSize())

	offset := asm.getFreeReg()
	asm.addi(offset, asm.bootIdReg(), 1)
	asm.mul(sub, sub, offset)
	asm.releaseReg(offset)

	asm.la(riscv.Sp, layout.StackTopSymbol)
	asm.sub(riscv.Sp, riscv.Sp, sub)

	asm.releaseReg(sub)
}

func handleNonbootHarts(asm *Builder) {
	bootHartLabel := asm.nextNumericLabel()
	nonbootAddrReg := asm.getFreeReg()

	asm.comment("Jump to non-boot hart handling")
	asm.beqz(asm.bootIdReg(), forwardLabel(bootHartLabel))
	asm.la(nonbootAddrReg, asm.labelFor(SecondaryStart))
	asm.jr(nonbootAddrReg)
	asm.label(bootHartLabel, 0, "", "")
	asm.releaseReg(nonbootAddrReg)
}

func (self *Builder) loadSentryValue(reg riscv.Reg) {
	if self.rt.Xlen() == target.Xlen32 {
		self.liUnconstrained(reg, sentryValueRv32)
	} else {
		self.liUnconstrained(reg, sentryValueRv64)
	}
}

func protectStack(asm *Builder) {
	asm.comment("Place a sentry value at the bottom of the current hart's stack to try to detect future stack overflows")
	stackBottom := asm.getFreeReg()
	// assumption here: sp holds the top of the stack
	asm.mov(stackBottom, riscv.Sp)
	sub := asm.getFreeReg()
	asm.liUnconstrained(sub, asm.rt.HartStackSize())
	asm.sub(stackBottom, stackBottom, sub)

	asm.releaseReg(sub)

	sentryValue := asm.getFreeReg()
	asm.loadSentryValue(sentryValue)
	asm.store(sentryValue, stackBottom, 0)

	asm.releaseReg(sentryValue)
	asm.releaseReg(stackBottom)
}

func gotoRustEntrypoint(asm *Builder) {
	asm.label(asm.labelFor(JumpToRustEntrypoint), rvInstructionAlignmentBytes, layout.TextDefaultSection(), asm.textSectionFlags())

	asm.comment("save RA before we lose it due to jal")
	asm.store(riscv.Ra, riscv.Tp, asm.rt.ReturnAddrOffset())

	asm.jal(asm.labelFor(CreateTrapFrame))

	// Every general register except sp and tp is stashed now.
	asm.initDefaultFreeRegPool()

	// The global pointer is written after the trap frame is created so the
	// interrupted context's gp survives in the frame.
	writeGp(asm)

	asm.comment("Store trap frame address (current sp value) in tpblock")
	asm.storeTrapFrameAddressToTpBlock(riscv.Sp)

	reg := asm.getFreeReg()
	restoreLabel := asm.labelFor(RestoreTrapFrame)

	asm.comment(fmt.Sprintf("On return from Rust, goto %s", restoreLabel))
	asm.load(reg, riscv.Tp, asm.rt.RustEntrypointOffset())
	asm.la(riscv.Ra, restoreLabel)

	asm.jr(reg)
	asm.releaseReg(reg)
}

func jumpToRustEntrypoint(asm *Builder, entrypoint string) {
	writeEntrypointInTp(asm, entrypoint)
	if asm.rt.StackOverflowDetection() {
		asm.j(asm.labelFor(ProtectStack))
	} else {
		asm.j(asm.labelFor(JumpToRustEntrypoint))
	}
}

func protectStackSection(asm *Builder) {
	asm.label(asm.labelFor(ProtectStack), rvInstructionAlignmentBytes, layout.TextDefaultSection(), asm.textSectionFlags())
	protectStack(asm)
	asm.j(asm.labelFor(JumpToRustEntrypoint))
}

func nonbootHartCallRustEntrypoint(asm *Builder) {
	asm.label(asm.labelFor(SecondaryStart), rvInstructionAlignmentBytes, "", "")
	waitForBssInitDone(asm)
	asm.comment("Jump to Rust entrypoint on non-boot hart")
	jumpToRustEntrypoint(asm, asm.rt.Entrypoint(frame.NonBootHartEntry))
}

func boothartCallRustEntrypoint(asm *Builder) {
	asm.comment("Jump to Rust entrypoint on boot hart")
	jumpToRustEntrypoint(asm, asm.rt.Entrypoint(frame.BootHartEntry))
}

func parkHart(asm *Builder) {
	asm.align(rvInstructionAlignmentBytes)
	parkLabel := asm.labelFor(ParkHart)
	asm.globalFunction(parkLabel)
	asm.wfi()
	asm.j(parkLabel)
}

func defineHartIdxVariable(asm *Builder) {
	asm.label(asm.labelFor(BootIdxVariable), 0, layout.DataDefaultSection(), "")
	asm.comment("Variable for determining boot id")
	asm.xword(0)
	asm.endSection()
}

// defineThreadPointerBlock reserves one zeroed tp block per hart. Projects
// that keep multiple contexts per mode can override the storage by swapping
// this definition out.
func defineThreadPointerBlock(asm *Builder) {
	asm.label(asm.labelFor(ThreadPointerBlock), 0, layout.DataDefaultSection(), "")
	asm.comment("Thread pointer block storage")
	asm.rept(asm.rt.MaxHartCount()*asm.rt.TpBlockSize(), 0)
	asm.endSection()
}

func defineBssInitDone(asm *Builder) {
	if asm.rt.SkipBssClearing() {
		return
	}
	asm.label(asm.labelFor(BssInitDone), 0, layout.DataDefaultSection(), "")
	asm.comment("Variable for indicating bss clearing status")
	asm.xword(0)
	asm.endSection()
}

func waitForBssInitDone(asm *Builder) {
	if asm.rt.SkipBssClearing() {
		return
	}
	addrReg := asm.getFreeReg()
	valReg := asm.getFreeReg()

	loopbackLabel := asm.nextNumericLabel()
	asm.comment("Wait for BSS init done")
	asm.la(addrReg, asm.labelFor(BssInitDone))
	asm.label(loopbackLabel, 0, "", "")
	asm.load(valReg, addrReg, 0)
	asm.beqz(valReg, backwardLabel(loopbackLabel))

	asm.releaseReg(addrReg)
	asm.releaseReg(valReg)
}

func hartCountErrorHandling(asm *Builder) {
	maxHartCount := asm.getFreeReg()
	bootLabel := asm.nextNumericLabel()
	parkAddrReg := asm.getFreeReg()

	asm.comment("Park hart if boot id is greater than max hart count defined in configuration")
	asm.liConstrained(maxHartCount, asm.rt.MaxHartCount())
	asm.bltu(asm.bootIdReg(), maxHartCount, forwardLabel(bootLabel))
	asm.la(parkAddrReg, asm.labelFor(ParkHart))
	asm.jr(parkAddrReg)
	asm.label(bootLabel, 0, "", "")
	asm.releaseReg(maxHartCount)
	asm.releaseReg(parkAddrReg)
}

func readHartId(asm *Builder) {
	hartId := asm.hartIdReg()

	asm.comment("Read hart id")
	// M-mode reads mhartid directly; in S-mode the previous boot stage
	// passes the hart id in a0.
	switch asm.rt.Mode() {
	case target.MachineMode:
		asm.csrr(hartId, riscv.CsrMhartid)
	case target.SupervisorMode:
		asm.mov(hartId, riscv.A0)
	}
}

func determineBootId(asm *Builder) {
	bootId := asm.bootIdReg()

	if asm.rt.IsMultiHart() {
		asm.comment("Determine boot id")
		asm.la(bootId, asm.labelFor(BootIdxVariable))

		inc := asm.getFreeReg()
		asm.liConstrained(inc, 1)

		// Multi-hart configurations require AMOADD for boot id assignment.
		asm.amoadd(bootId, bootId, inc)
		asm.releaseReg(inc)

		hartCountErrorHandling(asm)
	} else {
		// Single-hart configurations assume boot id 0.
		asm.mov(bootId, riscv.Zero)
	}
}

func writeEpc(asm *Builder) {
	reg := asm.getFreeReg()
	asm.comment("Default action is to park hart on return from Rust code, unless epc is changed by the called code")
	asm.la(reg, asm.labelFor(ParkHart))
	asm.csrw(riscv.CsrEpc, reg)
	asm.releaseReg(reg)
}

func writeStatus(asm *Builder) {
	reg := asm.getFreeReg()
	asm.comment("Default action is to return back to current mode on return from Rust code, unless changed by called code")
	// The pp bits are shifted into field position, so the value exceeds the
	// 12-bit immediate window.
	asm.liUnconstrained(reg, asm.rt.Mode().PPMask())
	asm.csrcBits(riscv.CsrStatus, reg)

	asm.liUnconstrained(reg, asm.rt.Mode().PPBits())
	asm.csrsBits(riscv.CsrStatus, reg)
	asm.releaseReg(reg)
}

func textResetSection(asm *Builder) {
	asm.globalEntrypoint(layout.ResetSection)
}

func callCustomResetEntrypoint(asm *Builder) {
	rs := asm.getFreeReg()
	entrypoint := asm.rt.Entrypoint(frame.CustomResetEntry)
	asm.comment(fmt.Sprintf("The component that uses this lib needs to provide '%s' in its own .S file", entrypoint))
	asm.la(rs, entrypoint)
	asm.jalr(riscv.Ra, rs, 0)
	asm.releaseReg(rs)
}

func writeScratch(asm *Builder) {
	asm.comment("Initialize scratch pointer with thread pointer block storage to make the return path same as trap return")
	asm.la(riscv.Tp, asm.labelFor(ThreadPointerBlock))

	reg := asm.getFreeReg()
	asm.liConstrained(reg, asm.rt.TpBlockSize())
	asm.mul(reg, reg, asm.bootIdReg())
	asm.addRegs(riscv.Tp, riscv.Tp, reg)
	asm.releaseReg(reg)
	asm.store(asm.bootIdReg(), riscv.Tp, asm.rt.BootIdOffset())
	asm.store(asm.hartIdReg(), riscv.Tp, asm.rt.HartIdOffset())

	asm.csrw(riscv.CsrScratch, riscv.Tp)
}

func writeSptp(asm *Builder) {
	asm.comment("Store current stack pointer as interrupted and current mode stack pointer in thread pointer block to make return path same as trap return")
	asm.store(riscv.Sp, riscv.Tp, asm.rt.InterruptedModeStackOffset())
	asm.store(riscv.Sp, riscv.Tp, asm.rt.CurrentModeStackOffset())
}

func writeInitRtflags(asm *Builder) {
	asm.clearRtFlagsInTpBlock()
}

func writeEntrypointInTp(asm *Builder, entrypoint string) {
	reg := asm.getFreeReg()

	asm.comment("Write out the Rust entrypoint address in thread pointer block")
	asm.la(reg, entrypoint)
	asm.store(reg, riscv.Tp, asm.rt.RustEntrypointOffset())

	asm.releaseReg(reg)
}

func writeTvec(asm *Builder) {
	reg := asm.getFreeReg()
	asm.comment("Initialize trap vector base address")
	asm.la(reg, asm.labelFor(HandleTrap))
	asm.csrw(riscv.CsrTvec, reg)
	asm.releaseReg(reg)
}

func initFp(asm *Builder) {
	statusReg := asm.getFreeReg()
	maskReg := asm.getFreeReg()
	asm.comment("Set FS to Clean")
	asm.csrr(statusReg, riscv.CsrStatus)
	asm.liUnconstrained(maskReg, ^statusFsMaskDirty)
	asm.and(statusReg, statusReg, maskReg)
	asm.liUnconstrained(maskReg, statusFsClean)
	asm.or(statusReg, statusReg, maskReg)
	asm.csrw(riscv.CsrStatus, statusReg)

	asm.comment("Clear FCSR")
	asm.csrw(riscv.CsrFcsr, riscv.Zero)

	asm.comment("Zero the FP registers")
	for _, fr := range asm.rt.TrapFrame().FloatRegs {
		asm.moveToFloat(fr, riscv.Zero)
	}

	asm.releaseReg(statusReg)
	asm.releaseReg(maskReg)
}

func commonHartInit(asm *Builder) {
	if asm.rt.NeedsCustomReset() {
		callCustomResetEntrypoint(asm)
	}

	determineBootId(asm)
	readHartId(asm)
	initStackPointerUsingBootId(asm)
	zeroTrapCsrs(asm)
	writeEpc(asm)
	writeStatus(asm)
	writeTvec(asm)
	writeScratch(asm)
	writeSptp(asm)
	writeInitRtflags(asm)

	if asm.rt.FloatingPoint() {
		initFp(asm)
	}
}

func buildMultiHartStart(asm *Builder) {
	textResetSection(asm)

	commonHartInit(asm)

	// Non-boot harts branch off to the secondary label.
	handleNonbootHarts(asm)

	// Only the boot hart runs this initialization.
	zeroBss(asm)
	boothartCallRustEntrypoint(asm)

	nonbootHartCallRustEntrypoint(asm)
}

func buildBootHartStart(asm *Builder) {
	textResetSection(asm)
	commonHartInit(asm)
	zeroBss(asm)
	boothartCallRustEntrypoint(asm)
}

func buildSecondaryHartStart(asm *Builder) {
	asm.align(rvInstructionAlignmentBytes)
	asm.globalFunction(asm.labelFor(SecondaryStart))
	commonHartInit(asm)
	waitForBssInitDone(asm)
	jumpToRustEntrypoint(asm, asm.rt.Entrypoint(frame.NonBootHartEntry))
}
