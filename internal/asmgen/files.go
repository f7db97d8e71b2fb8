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
	"path/filepath"

	"github.com/cloudwego/rvgen/internal/frame"
	"github.com/cloudwego/rvgen/internal/layout"
	"github.com/cloudwego/rvgen/internal/rust"
	"github.com/cloudwego/rvgen/internal/writer"
)

const bootSFilename = "boot.S"

func writeBootSFile(dir string, rt *frame.RtConfig) error {
	w := writer.New(filepath.Join(dir, bootSFilename), writer.None)
	asm := NewBuilder(rt)

	asm.preamble()

	asm.addLabels(map[LabelRole]string{
		ResetStart:           layout.StartSymbol,
		ParkHart:             "_park_hart",
		SecondaryStart:       "_secondary_start",
		RestoreTrapFrame:     "restore_trap_frame",
		CreateTrapFrame:      "create_trap_frame",
		HandleTrap:           "handle_trap",
		JumpToRustEntrypoint: "jump_to_rust",
		BootIdxVariable:      "boot_idx",
		ThreadPointerBlock:   "tp_block",
		BssInitDone:          "bss_init_done",
		ProtectStack:         "protect_stack",
		GetTrapAddr:          frame.FnTrapFrameAddr.AsmFn(),
	})

	asm.initDefaultFreeRegPool()

	asm.allocateIdRegs()

	if rt.IsMultiHart() {
		defineHartIdxVariable(asm)
		defineBssInitDone(asm)
	}
	defineThreadPointerBlock(asm)
	if rt.MultihartResetHandlingRequired() {
		buildMultiHartStart(asm)
	} else {
		buildBootHartStart(asm)
		if rt.IsMultiHart() {
			buildSecondaryHartStart(asm)
		}
	}

	asm.releaseIdRegs()

	if rt.StackOverflowDetection() {
		protectStackSection(asm)
	}

	parkHart(asm)

	restoreTrapFrame(asm)
	handleTrap(asm)
	gotoRustEntrypoint(asm)

	writeAsmHelpers(asm)
	createTrapFrame(asm)
	asm.Generate(w)
	return w.Flush()
}

func writeAsmRsFile(dir string, root *writer.Writer) error {
	path := filepath.Join(dir, "asm.rs")
	w := writer.New(path, writer.Braces)
	w.AddLine("// " + writer.Banner)
	w.AddLine(fmt.Sprintf("core::arch::global_asm!(include_str!(%q));", bootSFilename))
	rust.AddModule(root, path)
	return w.Flush()
}

func writeTrapframeRsFile(dir string, rt *frame.RtConfig, root *writer.Writer) error {
	path := filepath.Join(dir, "trapframe.rs")
	w := writer.New(path, writer.Braces)

	b := rust.NewBuilder()

	defineStruct(b, rt.TrapFrame().StructName(), rt.TrapFrame().Members(rt.Mode()), true)

	defineTrapframeHelper(b, rt)
	generateRtFlagsEnum(b)

	b.Generate(w)

	rust.AddModule(root, path)
	return w.Flush()
}

func writeTpblockRsFile(dir string, rt *frame.RtConfig, root *writer.Writer) error {
	path := filepath.Join(dir, "tpblock.rs")
	w := writer.New(path, writer.Braces)

	b := rust.NewBuilder()

	defineStruct(b, rt.TpBlock().StructName(), rt.TpBlock().MemberNames(), false)

	writeTpblockRustHelpers(b, rt)
	b.Generate(w)

	rust.AddModule(root, path)
	return w.Flush()
}

func exportMaxBootIds(rt *frame.RtConfig, root *writer.Writer) {
	root.AddLine("#[allow(dead_code)]")
	root.AddLine(fmt.Sprintf("pub const MAX_BOOT_IDS: usize = %d;", rt.MaxHartCount()))
}

// WriteRtFiles emits boot.S and its Rust companions plus the root source of
// the runtime output directory. The directory must already exist.
func WriteRtFiles(dir string, rt *frame.RtConfig, crateType rust.CrateType) error {
	root := rust.NewRootWriter(dir, crateType)

	if err := writeBootSFile(dir, rt); err != nil {
		return err
	}
	if err := writeAsmRsFile(dir, root); err != nil {
		return err
	}
	if err := writeTpblockRsFile(dir, rt, root); err != nil {
		return err
	}
	if err := writeTrapframeRsFile(dir, rt, root); err != nil {
		return err
	}
	exportMaxBootIds(rt, root)

	return root.Flush()
}
