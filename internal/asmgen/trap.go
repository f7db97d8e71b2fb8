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
)

func alignUp(val, alignTo int) int {
	if alignTo <= 0 || alignTo&(alignTo-1) != 0 {
		panic("asmgen: alignment must be a power of 2")
	}
	return (val + alignTo - 1) &^ (alignTo - 1)
}

func alignedTrapFrameSize(trapFrameSize int) int {
	return alignUp(trapFrameSize, 16)
}

// getStackBottom computes the bottom of the calling hart's stack into
// stackBottomReg. With sp starting at _stack_top - (boot_id + 1) * size, the
// bottom sits one more stack below the top.
func getStackBottom(stackBottomReg riscv.Reg, asm *Builder) {
	asm.comment("Get stack bottom using boot id")

	sub := asm.getFreeReg()
	asm.liUnconstrained(sub, asm.rt.HartStackSize())
	offset := asm.getFreeReg()
	// The id registers are long released here, so reread boot id from the
	// thread pointer block.
	bootIdReg := asm.getFreeReg()
	asm.load(bootIdReg, riscv.Tp, asm.rt.BootIdOffset())
	asm.addi(offset, bootIdReg, 2)
	asm.mul(sub, sub, offset)
	asm.releaseReg(bootIdReg)
	asm.releaseReg(offset)

	asm.la(stackBottomReg, layout.StackTopSymbol)
	asm.sub(stackBottomReg, stackBottomReg, sub)
	asm.releaseReg(sub)
}

func checkStack(asm *Builder) {
	asm.comment("Perform stack overflow detection")

	stackBottomReg := asm.getFreeReg()
	getStackBottom(stackBottomReg, asm)

	valueReg := asm.getFreeReg()
	asm.load(valueReg, stackBottomReg, 0)

	sentryValue := asm.getFreeReg()
	asm.loadSentryValue(sentryValue)

	nextLabel := asm.nextNumericLabel()
	asm.comment("If stack overflow is detected, jump to stack overflow handler")

	asm.beq(valueReg, sentryValue, forwardLabel(nextLabel))

	rs := asm.getFreeReg()
	asm.la(rs, asm.rt.Entrypoint(frame.StackOverflowEntry))
	asm.comment("we are returning to park hart as this indicates something went wrong and we cannot recover from this")
	asm.la(riscv.Ra, asm.labelFor(ParkHart))

	asm.comment("Expected value in a0")
	asm.mov(riscv.A0, sentryValue)
	asm.comment("Actual current value in a1")
	asm.mov(riscv.A1, valueReg)
	asm.jr(rs)
	asm.releaseReg(rs)

	asm.label(nextLabel, 0, "", "")

	asm.releaseReg(stackBottomReg)
	asm.releaseReg(valueReg)
	asm.releaseReg(sentryValue)
}

func restoreTrapFrame(asm *Builder) {
	sp := riscv.Sp
	tp := riscv.Tp
	regSize := asm.rt.XlenBytes()

	asm.label(asm.labelFor(RestoreTrapFrame), rvInstructionAlignmentBytes, layout.TextDefaultSection(), asm.textSectionFlags())

	if asm.rt.StackOverflowDetection() {
		checkStack(asm)
	}

	// Unwind the current mode stack when returning to a lower privilege
	// mode.
	pp := asm.getFreeReg()
	status := asm.getFreeReg()
	restoreLabel := asm.nextNumericLabel()

	asm.comment("Check if returning to lower privilege mode")
	asm.load(status, sp, asm.rt.StatusRegOffset())
	// The pp field is compared in shifted position (6144 or 256 decimal),
	// which does not fit the 12-bit immediate window.
	asm.liUnconstrained(pp, asm.rt.Mode().PPBits())
	asm.and(status, status, pp)
	asm.beq(status, pp, forwardLabel(restoreLabel))

	asm.releaseReg(pp)
	asm.releaseReg(status)

	tempReg := asm.getFreeReg()
	asm.comment("Save unwound stack pointer in thread block structure if returning to lower privilege mode")
	totalSize := alignedTrapFrameSize(asm.rt.TrapFrameSize())
	asm.comment(fmt.Sprintf(
		"The size = %d: size of trap frame %d being aligned up to 16 bytes since we aligned sp down to be 16-byte aligned in jump_to_rust",
		totalSize, asm.rt.TrapFrameSize(),
	))
	asm.addi(tempReg, sp, totalSize)
	asm.store(tempReg, tp, asm.rt.CurrentModeStackOffset())

	asm.csrw(riscv.CsrScratch, tp)

	asm.label(restoreLabel, 0, "", "")
	restoreCsrLabel := asm.nextNumericLabel()

	asm.comment(fmt.Sprintf(
		"Restore previous trapframe address to thread pointer block if rt_flags say so (bit %d)",
		frame.RestoreTrapFrameInTpBlock,
	))
	asm.loadRtFlagsFromTrapFrame(tempReg)
	asm.andi(tempReg, tempReg, frame.RestoreTrapFrameInTpBlock.Mask())
	asm.beqz(tempReg, forwardLabel(restoreCsrLabel))

	asm.load(tempReg, sp, asm.rt.InterruptedFrameAddrOffset())
	asm.storeTrapFrameAddressToTpBlock(tempReg)

	if asm.rt.SfenceOnRestore() {
		asm.loadRtFlagsFromTrapFrame(tempReg)
		noSfence := asm.nextNumericLabel()
		asm.andi(tempReg, tempReg, frame.TranslationRegChanged.Mask())
		asm.beqz(tempReg, forwardLabel(noSfence))

		asm.sfence(riscv.Zero, riscv.Zero)

		asm.label(noSfence, 0, "", "")
	}

	if asm.rt.FloatingPoint() {
		asm.comment("Now restore floating point registers if required")
		fsClean := asm.nextNumericLabel()

		asm.loadRtFlagsFromTrapFrame(tempReg)
		asm.andi(tempReg, tempReg, frame.FsStateWasDirty.Mask())
		asm.beqz(tempReg, forwardLabel(fsClean))

		frStartIdx := asm.rt.TrapFrame().FrStartIdx()
		for idx, fr := range asm.rt.TrapFrame().FloatRegs {
			asm.fload(fr, sp, (idx+frStartIdx)*regSize)
		}

		// The state is clean again.
		asm.loadRtFlagsFromTrapFrame(tempReg)
		asm.andi(tempReg, tempReg, ^frame.FsStateWasDirty.Mask())
		asm.storeRtFlagsToTrapFrame(tempReg)

		asm.label(fsClean, 0, "", "")
	}

	asm.label(restoreCsrLabel, 0, "", "")
	asm.comment("Restore all CSRs first since they require a general register for csrw")
	csrStartIdx := asm.rt.TrapFrame().CsrStartIdx()
	for idx, csr := range asm.rt.TrapFrame().Csrs {
		if csr.RestoreFromTrapFrame() {
			asm.load(tempReg, sp, (idx+csrStartIdx)*regSize)
			asm.csrw(csr, tempReg)
		}
	}

	asm.releaseReg(tempReg)

	asm.comment("Now restore all general registers except sp - sp is restored last")
	for idx, gr := range asm.rt.TrapFrame().GeneralRegs {
		if gr == sp {
			// sp is restored just before the mode return.
			if idx == 0 {
				panic("asmgen: sp at trap frame index 0")
			}
			continue
		}

		asm.load(gr, sp, asm.rt.TrapFrame().GrIdx(gr)*regSize)

		if asm.rt.AtomicExtension() && idx == 0 {
			asm.comment("Clear any reservations before performing a context switch")
			asm.scReg(riscv.Zero, gr, sp)
		}
	}

	asm.comment("Restore sp and perform return from mode")
	asm.load(sp, sp, asm.rt.SpRegOffset())
	asm.modeRet()
}

func createTrapFrame(asm *Builder) {
	sp := riscv.Sp
	tp := riscv.Tp
	ra := riscv.Ra
	regSize := asm.rt.XlenBytes()

	asm.comment("Create new trapframe")
	asm.label(asm.labelFor(CreateTrapFrame), rvInstructionAlignmentBytes, layout.TextDefaultSection(), asm.textSectionFlags())
	asm.addi(sp, sp, -asm.rt.TrapFrameSize())

	asm.comment("Align sp down to ensure it is 16-byte aligned by performing andi sp, sp, ~0xf. This is required by the RISC-V psABI")
	asm.comment("We are doing this in two steps with the following andi instruction(instead of sub the aligned size directly)")
	asm.comment("since in case of nested trap, sp can not be guaranteed to be aligned upon entry.")

	asm.andi(sp, sp, -16)

	// sp, tp and ra are stashed from elsewhere: sp and ra from the thread
	// pointer block, tp from the scratch register.
	asm.comment("First stash away all the general registers in trap frame except SP, TP and RA - those are stashed from elsewhere")
	for _, gr := range asm.rt.TrapFrame().GeneralRegs {
		if gr != sp && gr != tp && gr != ra {
			asm.store(gr, sp, asm.rt.TrapFrame().GrIdx(gr)*regSize)
		}
	}

	// Every general register except sp and tp is stashed now.
	asm.initDefaultFreeRegPool()

	if asm.rt.FloatingPoint() {
		asm.comment("Check if FS is dirty and if so, stash the floating-point registers")
		fsClean := asm.nextNumericLabel()

		statusReg := asm.getFreeReg()
		tempReg := asm.getFreeReg()
		maskReg := asm.getFreeReg()

		asm.csrr(statusReg, riscv.CsrStatus)
		asm.liUnconstrained(maskReg, statusFsMaskDirty)
		asm.and(tempReg, statusReg, maskReg)
		asm.bne(tempReg, maskReg, forwardLabel(fsClean))

		frStartIdx := asm.rt.TrapFrame().FrStartIdx()
		for idx, fr := range asm.rt.TrapFrame().FloatRegs {
			asm.fstore(fr, sp, (idx+frStartIdx)*regSize)
		}

		asm.comment("Now that the FP registers are stashed, set the FS state to Clean")
		asm.xori(maskReg, maskReg, -1)
		asm.and(tempReg, maskReg, statusReg)
		asm.liUnconstrained(maskReg, statusFsClean)
		asm.or(statusReg, tempReg, maskReg)
		asm.csrw(riscv.CsrStatus, statusReg)
		asm.releaseReg(statusReg)

		asm.comment("Record the fact that the FP registers will need to be restored in RT flags")
		asm.readRtFlagsFromTpBlock(tempReg)
		asm.liUnconstrained(maskReg, frame.FsStateWasDirty.Mask())
		asm.or(tempReg, tempReg, maskReg)
		asm.writeRtFlagsToTpBlock(tempReg)

		asm.releaseReg(maskReg)
		asm.releaseReg(tempReg)

		asm.label(fsClean, 0, "", "")
	}

	tempReg := asm.getFreeReg()

	asm.comment("Stash SP in trap frame using the interrupted mode stack value in thread pointer block")
	asm.load(tempReg, tp, asm.rt.InterruptedModeStackOffset())
	asm.store(tempReg, sp, asm.rt.SpRegOffset())

	asm.comment("get ra from thread pointer block and save")
	asm.load(tempReg, tp, asm.rt.ReturnAddrOffset())
	asm.store(tempReg, sp, asm.rt.RaRegOffset())

	asm.comment("Stash TP in trap frame using the scratch register value")
	asm.load(tempReg, tp, asm.rt.InterruptedModeTpOffset())
	asm.store(tempReg, sp, asm.rt.TpRegOffset())

	asm.comment("Write 0 to scratch register so that trap entry path knows if we encounter a nested trap in current mode")
	asm.csrw(riscv.CsrScratch, riscv.Zero)

	asm.comment("Stash all the CSRs in trap frame")
	csrStartIdx := asm.rt.TrapFrame().CsrStartIdx()
	for idx, csr := range asm.rt.TrapFrame().Csrs {
		asm.csrr(tempReg, csr)
		asm.store(tempReg, sp, (idx+csrStartIdx)*regSize)
	}

	asm.comment("Read RT state (flags) from tpblock and save to trapframe")
	asm.readRtFlagsFromTpBlock(tempReg)
	asm.storeRtFlagsToTrapFrame(tempReg)
	asm.clearRtFlagsInTpBlock()

	asm.comment("Stash trap ctx frame address in current trapframe")
	asm.loadTrapFrameAddressFromTpBlock(tempReg)
	asm.store(tempReg, sp, asm.rt.InterruptedFrameAddrOffset())

	asm.releaseReg(tempReg)
	asm.ret()
}

func handleTrap(asm *Builder) {
	sp := riscv.Sp
	tp := riscv.Tp

	notNestedLabel := asm.nextNumericLabel()
	jumpAheadLabel := asm.nextNumericLabel()

	asm.label(asm.labelFor(HandleTrap), rvInstructionAlignmentBytes, layout.TextDefaultSection(), asm.textSectionFlags())
	asm.comment("Check if this is a nested trap. If yes, then scratch would be 0")
	asm.csrrw(tp, riscv.CsrScratch, tp)
	asm.bnez(tp, forwardLabel(notNestedLabel))
	asm.comment("For nested trap, read back tp from scratch")
	asm.csrr(tp, riscv.CsrScratch)
	asm.comment("Store current stack pointer as current mode stack to use")
	asm.store(sp, tp, asm.rt.CurrentModeStackOffset())
	asm.comment("Set rt state(flags) to indicate we are in nested mode. No free reg to use. So, let's use sp and restore it back from tpblock.")
	asm.setRtFlagBit(sp, frame.RestoreTrapFrameInTpBlock)
	asm.writeRtFlagsToTpBlock(sp)
	asm.load(sp, tp, asm.rt.CurrentModeStackOffset())
	asm.j(forwardLabel(jumpAheadLabel))

	asm.label(notNestedLabel, 0, "", "")
	asm.comment("Not in recursive trap. Clear out rt flags in tp block")
	asm.clearRtFlagsInTpBlock()

	asm.label(jumpAheadLabel, 0, "", "")
	asm.comment("Store current stack pointer as interrupted mode stack pointer to restore on return path")
	asm.store(sp, tp, asm.rt.InterruptedModeStackOffset())

	// sp is stashed away now, so it can serve as the only free register.
	asm.assignFreeRegPool(sp)

	reg := asm.getFreeReg()
	asm.csrr(reg, riscv.CsrScratch)
	asm.store(reg, tp, asm.rt.InterruptedModeTpOffset())
	asm.releaseReg(reg)

	asm.comment("We only have SP register available to use as temp reg to stash Rust entrypoint")
	writeEntrypointInTp(asm, asm.rt.Entrypoint(frame.TrapEntry))

	// sp goes live again below, so stop treating it as free.
	asm.drainFreeRegPool()

	asm.comment("Load current mode stack pointer to start using stack in current mode")
	asm.load(sp, tp, asm.rt.CurrentModeStackOffset())

	asm.j(asm.labelFor(JumpToRustEntrypoint))
}

func switchTo(asm *Builder) {
	// No registers are free on entry.
	asm.drainFreeRegPool()
	asm.align(rvInstructionAlignmentBytes)
	asm.globalFunction(frame.FnSwitchTo.AsmFn())
	asm.comment("input: a0 contains address of the thread block to switch to")
	sp := riscv.Sp
	ra := riscv.Ra
	tp := riscv.Tp
	a0 := riscv.A0

	asm.comment("save interrupted registers first")
	asm.store(sp, tp, asm.rt.InterruptedModeStackOffset())
	asm.store(tp, tp, asm.rt.InterruptedModeTpOffset())

	asm.comment("We want to return back to ra, so set it as mepc")
	asm.csrw(riscv.CsrEpc, ra)

	asm.comment("Write ra to tpblock.return_address so that it is saved correctly")
	asm.store(ra, tp, asm.rt.ReturnAddrOffset())

	asm.comment("Set RT flag to indicate that trapframe address must be restored on switching back to this context")
	// Flags are staged in sp, which is stashed in the tp block above.
	asm.setRtFlagBit(sp, frame.RestoreTrapFrameInTpBlock)
	asm.writeRtFlagsToTpBlock(sp)
	asm.load(sp, tp, asm.rt.InterruptedModeStackOffset())

	asm.comment("save current context now")
	asm.jal(asm.labelFor(CreateTrapFrame))

	asm.initDefaultFreeRegPool()
	trapReg := asm.getFreeReg()
	asm.comment("Save just created frame to priv mode context")
	asm.load(trapReg, tp, asm.rt.ContextAddrOffset())
	asm.store(sp, trapReg, asm.rt.PrivCtxOffset())

	asm.comment("Store priv mode context (passed in a0) as current context")
	asm.store(a0, tp, asm.rt.ContextAddrOffset())
	asm.comment("Zero out current mode sp in TpBlock since we are switching threads")
	asm.comment("this gets initialized on trap exit to lower mode and nested trap entry paths.")
	asm.store(riscv.Zero, tp, asm.rt.CurrentModeStackOffset())
	asm.comment("Switch priv context to the one provided in a0")
	asm.load(sp, a0, asm.rt.PrivCtxOffset())
	asm.comment("Zero out priv context frame address in context being switched to since we are restoring it now")
	asm.store(riscv.Zero, a0, asm.rt.PrivCtxOffset())

	asm.comment("some task are hart agnostic. Make sure when they resume")
	asm.comment("they get to run with tp of the hart that invoked them")
	asm.store(tp, sp, asm.rt.TpRegOffset())
	asm.j(asm.labelFor(RestoreTrapFrame))
}
