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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/rvgen/internal/frame"
	"github.com/cloudwego/rvgen/internal/riscv"
	"github.com/cloudwego/rvgen/internal/rust"
	"github.com/cloudwego/rvgen/internal/target"
)

func testTarget(maxHarts int) target.Config {
	return target.Config{
		Hart: target.HartConfig{
			Mode:                       target.MachineMode,
			Xlen:                       target.Xlen64,
			MaxHartCount:               maxHarts,
			AllHartsStartAtResetVector: true,
		},
		Mem: target.MemConfig{
			PerHartStackSize: 8192,
			HeapSize:         4096,
		},
	}
}

func newTestRtConfig(t *testing.T, tgt target.Config, feats frame.Features) *frame.RtConfig {
	eps := frame.Entrypoints{
		frame.BootHartEntry:    "main",
		frame.NonBootHartEntry: "secondary_main",
		frame.TrapEntry:        "trap_enter",
	}
	if feats.StackOverflowDetection {
		eps[frame.StackOverflowEntry] = "handle_stack_overflow"
	}
	if tgt.NeedsCustomReset() {
		eps[frame.CustomResetEntry] = "my_custom_reset"
	}

	rt, err := frame.NewRtConfig(
		eps, frame.DefaultTrapFrame(), frame.DefaultTpBlock(), frame.DefaultThreadContext(), tgt, feats,
	)
	require.NoError(t, err)
	return rt
}

func renderBootS(t *testing.T, rt *frame.RtConfig) string {
	dir := t.TempDir()
	require.NoError(t, writeBootSFile(dir, rt))

	content, err := os.ReadFile(filepath.Join(dir, bootSFilename))
	require.NoError(t, err)
	return string(content)
}

func TestBuilder_ImmediateRange(t *testing.T) {
	asm := NewBuilder(newTestRtConfig(t, testTarget(4), frame.Features{}))

	require.Panics(t, func() { asm.addi(riscv.Sp, riscv.Sp, 2048) })
	require.Panics(t, func() { asm.addi(riscv.Sp, riscv.Sp, -2049) })
	require.Panics(t, func() { asm.liConstrained(riscv.T0, 4096) })
	require.NotPanics(t, func() { asm.liUnconstrained(riscv.T0, 4096) })
	require.NotPanics(t, func() { asm.addi(riscv.Sp, riscv.Sp, -2048) })
}

func TestBuilder_RegisterPool(t *testing.T) {
	asm := NewBuilder(newTestRtConfig(t, testTarget(4), frame.Features{}))
	asm.initDefaultFreeRegPool()

	seen := make(map[riscv.Reg]bool)
	for i := 0; i < 7; i++ {
		reg := asm.getFreeReg()
		require.False(t, seen[reg])
		seen[reg] = true
	}
	require.Panics(t, func() { asm.getFreeReg() })

	asm.releaseReg(riscv.T0)
	require.Panics(t, func() { asm.releaseReg(riscv.T0) })
}

func TestBuilder_LabelForPanicsWhenUnregistered(t *testing.T) {
	asm := NewBuilder(newTestRtConfig(t, testTarget(4), frame.Features{}))
	require.Panics(t, func() { asm.labelFor(ParkHart) })
}

func TestBootS_ArchAttribute(t *testing.T) {
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))
	require.Contains(t, bootS, `.attribute arch, "rv64gc"`)

	tgt := testTarget(4)
	tgt.Hart.Xlen = target.Xlen32
	bootS = renderBootS(t, newTestRtConfig(t, tgt, frame.Features{}))
	require.NotContains(t, bootS, ".attribute")
}

func TestBootS_Labels(t *testing.T) {
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))

	for _, label := range []string{
		"_start:",
		"_park_hart:",
		"_secondary_start:",
		"restore_trap_frame:",
		"create_trap_frame:",
		"handle_trap:",
		"jump_to_rust:",
		"boot_idx:",
		"tp_block:",
		"bss_init_done:",
		"__my_boot_id:",
		"__my_hart_id:",
		"__my_trap_frame_addr:",
		"__my_tpblock_addr:",
		"__tpblock_base:",
		"__get_restore_tf_label:",
		"__switch_to:",
	} {
		require.Contains(t, bootS, "\n"+label+"\n")
	}

	require.Contains(t, bootS, ".global _start")
	require.Contains(t, bootS, `.section .text.entry, "ax"`)
}

func TestBootS_MultiHartArbitration(t *testing.T) {
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))

	require.Contains(t, bootS, "amoadd.d")
	require.Contains(t, bootS, "li ")
	require.Contains(t, bootS, "csrr")
	require.Contains(t, bootS, "mhartid")

	// One zeroed tp block per hart: 4 harts x 80 bytes in native words.
	require.Contains(t, bootS, ".rept 40")
	require.Contains(t, bootS, ".endr")
}

func TestBootS_SingleHart(t *testing.T) {
	tgt := testTarget(1)
	bootS := renderBootS(t, newTestRtConfig(t, tgt, frame.Features{}))

	require.NotContains(t, bootS, "amoadd")
	require.NotContains(t, bootS, "_secondary_start:")
	require.NotContains(t, bootS, "boot_idx:")
	require.NotContains(t, bootS, "bss_init_done:")
	require.Contains(t, bootS, ".rept 10")
}

func TestBootS_SupervisorMode(t *testing.T) {
	tgt := testTarget(4)
	tgt.Hart.Mode = target.SupervisorMode
	bootS := renderBootS(t, newTestRtConfig(t, tgt, frame.Features{}))

	require.Contains(t, bootS, "csrw stvec")
	require.Contains(t, bootS, "csrw sepc")
	require.Contains(t, bootS, "\n    sret\n")

	// S-mode receives the hart id in a0 from the previous boot stage.
	require.NotContains(t, bootS, "mhartid")
	require.NotContains(t, bootS, "mideleg")
	require.NotContains(t, bootS, "\n    mret\n")
}

func TestBootS_StackPointerInit(t *testing.T) {
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))

	require.Contains(t, bootS, ", 8192")
	require.Contains(t, bootS, "la sp, _stack_top")
	require.Contains(t, bootS, "sub sp, sp, ")
	require.Contains(t, bootS, "mul ")
}

func TestBootS_StackOverflowDetection(t *testing.T) {
	feats := frame.Features{StackOverflowDetection: true}
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), feats))

	require.Contains(t, bootS, "protect_stack:")
	require.Contains(t, bootS, fmt.Sprintf(", %d", sentryValueRv64))
	require.Contains(t, bootS, "la ")
	require.Contains(t, bootS, "handle_stack_overflow")
	require.Contains(t, bootS, "j protect_stack")
}

func TestBootS_NoStackOverflowDetectionByDefault(t *testing.T) {
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))

	require.NotContains(t, bootS, "protect_stack")
	require.NotContains(t, bootS, fmt.Sprintf("%d", sentryValueRv64))
	require.Contains(t, bootS, "j jump_to_rust")
}

func TestBootS_TrapFrameGeometry(t *testing.T) {
	rt := newTestRtConfig(t, testTarget(4), frame.Features{})
	bootS := renderBootS(t, rt)

	require.Contains(t, bootS, fmt.Sprintf("addi sp, sp, -%d", rt.TrapFrameSize()))
	require.Contains(t, bootS, "andi sp, sp, -16")

	// The unwind path compensates with the 16-byte aligned size.
	require.Contains(t, bootS, fmt.Sprintf(", sp, %d", alignedTrapFrameSize(rt.TrapFrameSize())))
}

func TestBootS_CustomReset(t *testing.T) {
	tgt := testTarget(4)
	tgt.CustomReset = true
	bootS := renderBootS(t, newTestRtConfig(t, tgt, frame.Features{}))
	require.Contains(t, bootS, "la ")
	require.Contains(t, bootS, "my_custom_reset")
	require.Contains(t, bootS, "jalr ra, ")

	bootS = renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))
	require.NotContains(t, bootS, "my_custom_reset")
}

func TestBootS_FloatingPoint(t *testing.T) {
	feats := frame.Features{FloatingPoint: true}
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), feats))

	require.Contains(t, bootS, "fmv.d.x f0, zero")
	require.Contains(t, bootS, "fmv.d.x f31, zero")
	require.Contains(t, bootS, "csrw fcsr, zero")
	require.Contains(t, bootS, "fsd ")
	require.Contains(t, bootS, "fld ")

	bootS = renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))
	require.NotContains(t, bootS, "fmv.d.x")
	require.NotContains(t, bootS, "fcsr")
}

func TestBootS_AtomicExtensionClearsReservation(t *testing.T) {
	feats := frame.Features{AtomicExtension: true}
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), feats))
	require.Contains(t, bootS, "sc.d zero, ")

	bootS = renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))
	require.NotContains(t, bootS, "sc.d")
}

func TestBootS_SkipBssClearing(t *testing.T) {
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))
	require.Contains(t, bootS, "la ")
	require.Contains(t, bootS, "_sbss")
	require.Contains(t, bootS, "_ebss")

	tgt := testTarget(1)
	feats := frame.Features{SkipBssClearing: true}
	bootS = renderBootS(t, newTestRtConfig(t, tgt, feats))
	require.NotContains(t, bootS, "_sbss")
}

func TestBootS_EntrypointWiring(t *testing.T) {
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))

	require.Contains(t, bootS, "la ")
	require.Contains(t, bootS, "main")
	require.Contains(t, bootS, "secondary_main")
	require.Contains(t, bootS, "trap_enter")
	require.Contains(t, bootS, "csrrw tp, mscratch, tp")
	require.Contains(t, bootS, "\n    mret\n")
	require.Contains(t, bootS, "wfi")
}

func TestWriteRtFiles(t *testing.T) {
	dir := t.TempDir()
	rt := newTestRtConfig(t, testTarget(4), frame.Features{})

	require.NoError(t, WriteRtFiles(dir, rt, rust.Module))

	readFile := func(name string) string {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(content)
	}

	require.Contains(t, readFile("asm.rs"), `core::arch::global_asm!(include_str!("boot.S"));`)

	tpblock := readFile("tpblock.rs")
	require.Contains(t, tpblock, "pub struct TpBlock {")
	require.Contains(t, tpblock, "    pub current_mode_sp: usize,")
	require.Contains(t, tpblock, "    pub trap_ctx_frame: usize,")
	require.Contains(t, tpblock, "pub fn my_boot_id() -> usize {")
	require.Contains(t, tpblock, "pub fn boot_to_hart_id(id: usize) -> Option<usize> {")
	require.Contains(t, tpblock, "pub fn switch_to(ctx: usize) {")

	trapframe := readFile("trapframe.rs")
	require.Contains(t, trapframe, "pub struct TrapFrame {")
	require.Contains(t, trapframe, "    pub ra: usize,")
	require.Contains(t, trapframe, "    pub mstatus: usize,")
	require.Contains(t, trapframe, "pub fn reset(&mut self) {")
	require.Contains(t, trapframe, "pub fn trapframe() -> &'static mut TrapFrame {")
	require.Contains(t, trapframe, "pub enum RtFlags {")

	root := readFile("mod.rs")
	require.Contains(t, root, "mod asm;")
	require.Contains(t, root, "mod tpblock;")
	require.Contains(t, root, "mod trapframe;")
	require.Contains(t, root, "pub const MAX_BOOT_IDS: usize = 4;")
}

func TestBootS_NumericLabelsUseDirectionSuffixes(t *testing.T) {
	bootS := renderBootS(t, newTestRtConfig(t, testTarget(4), frame.Features{}))

	hasForwardRef := false
	hasBackwardRef := false
	for _, line := range strings.Split(bootS, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, "f") && strings.Contains(trimmed, ", 1") {
			hasForwardRef = true
		}
		if strings.HasSuffix(trimmed, "b") && strings.Contains(trimmed, ", ") {
			hasBackwardRef = true
		}
	}
	require.True(t, hasForwardRef)
	require.True(t, hasBackwardRef)
	require.Contains(t, bootS, "\n1:\n")
}
