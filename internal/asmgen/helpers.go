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
	"github.com/cloudwego/rvgen/internal/frame"
	"github.com/cloudwego/rvgen/internal/riscv"
)

// The helpers below expose boot and trap state to non-assembly callers via
// the C ABI: result in a0, return through ra.

func asmTpBlockBase(asm *Builder) {
	asm.align(rvInstructionAlignmentBytes)
	asm.comment("Function to be called from non-assembly code")
	asm.globalFunction(frame.FnTpBlockBase.AsmFn())
	asm.comment("Load address of tp block in a0 as return value")
	asm.la(riscv.A0, asm.labelFor(ThreadPointerBlock))
	asm.comment("Return back to address in ra")
	asm.jr(riscv.Ra)
}

func asmGetRestTfLabel(asm *Builder) {
	asm.align(rvInstructionAlignmentBytes)
	asm.comment("Function to be called from non-assembly code")
	asm.globalFunction(frame.FnRestoreTrapFrame.AsmFn())
	asm.comment("Load address of rest tf in a0 as return value")
	asm.la(riscv.A0, asm.labelFor(RestoreTrapFrame))
	asm.comment("Return back to address in ra")
	asm.jr(riscv.Ra)
}

func generateAsmId(asm *Builder, asmFnName string, tpBlockOffset int) {
	asm.align(rvInstructionAlignmentBytes)
	asm.comment("Function to be called from non-assembly code")
	asm.globalFunction(asmFnName)
	asm.comment("Take id from tp block and place it in a0 as return value")
	asm.load(riscv.A0, riscv.Tp, tpBlockOffset)
	asm.comment("Return back to address in ra")
	asm.jr(riscv.Ra)
}

func asmMyIds(asm *Builder) {
	generateAsmId(asm, frame.FnBootId.AsmFn(), asm.rt.BootIdOffset())
	generateAsmId(asm, frame.FnHartId.AsmFn(), asm.rt.HartIdOffset())
}

func asmMyTrapFrameAddr(asm *Builder) {
	asm.align(rvInstructionAlignmentBytes)
	asm.comment("Function to be called from non-assembly code")
	asm.globalFunction(asm.labelFor(GetTrapAddr))
	asm.comment("Take trap frame addr from tp block and place it in a0 as return value")
	asm.loadTrapFrameAddressFromTpBlock(riscv.A0)
	asm.comment("Return back to address in ra")
	asm.jr(riscv.Ra)
}

func asmMyTpBlockAddr(asm *Builder) {
	asm.align(rvInstructionAlignmentBytes)
	asm.comment("Function to be called from non-assembly code")
	asm.globalFunction(frame.FnTpBlockAddr.AsmFn())
	asm.comment("Take tp block address from tp and place it in a0 as return value")
	asm.mov(riscv.A0, riscv.Tp)
	asm.comment("Return back to address in ra")
	asm.jr(riscv.Ra)
}

func writeAsmHelpers(asm *Builder) {
	asmMyIds(asm)
	asmMyTrapFrameAddr(asm)
	asmMyTpBlockAddr(asm)
	asmTpBlockBase(asm)
	asmGetRestTfLabel(asm)
	switchTo(asm)
}
