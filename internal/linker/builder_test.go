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

package linker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/rvgen/internal/layout"
	"github.com/cloudwego/rvgen/internal/target"
	"github.com/cloudwego/rvgen/internal/writer"
)

func testTarget() target.Config {
	return target.Config{
		Hart: target.HartConfig{
			Mode:         target.MachineMode,
			Xlen:         target.Xlen64,
			MaxHartCount: 4,
		},
		Mem: target.MemConfig{
			PerHartStackSize: 8192,
			HeapSize:         4096,
		},
		CustomReset: true,
	}
}

func testSections() []*layout.Section {
	return []*layout.Section{
		layout.NewSection(layout.Text, 4096, "region_1"),
		layout.NewSection(layout.Rodata, 4096, "region_1"),
		layout.NewSection(layout.Data, 4096, "subregion_1"),
		layout.NewSection(layout.Bss, 4096, "subregion_1"),
		layout.NewSection(layout.Heap, 4096, "subregion_1"),
		layout.NewSection(layout.CustomSection("custom_section", 4096), 4096, "subregion_1"),
	}
}

func newTestConfig(t *testing.T, tgt target.Config, sections []*layout.Section) *layout.LinkerConfig {
	regions := []layout.MemoryRegion{
		layout.NewNapotMemoryRegion("region_1", 0x8000_0000, 128*layout.KiB, layout.AttribsRX()),
		layout.NewNapotMemoryRegion("region_2", 0x8002_0000, 64*layout.KiB, layout.AttribsRW(),
			layout.NewSubRegion("subregion_1", 56*layout.KiB),
			layout.NewNapotSubRegion("subregion_2", 8*layout.KiB),
		),
	}

	cfg, err := layout.NewLinkerConfig(regions, sections, layout.StackInBss(layout.NaturalAlign), tgt)
	require.NoError(t, err)
	return cfg
}

func renderScript(cfg *layout.LinkerConfig) string {
	w := writer.New("unused", writer.Braces)
	b := NewBuilder(cfg)

	b.OutputArch()
	b.Entry()
	b.Memory()
	b.Sections()
	b.Symbols()
	b.Asserts()
	b.Generate(w)
	return w.String()
}

func TestScript_Preamble(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	require.True(t, strings.HasPrefix(script, "# "+writer.Banner))
	require.Contains(t, script, "OUTPUT_ARCH(riscv)")
	require.Contains(t, script, "ENTRY(_start)")
}

func TestScript_MemoryTable(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	require.Contains(t, script, "MEMORY {")
	require.Contains(t, script, "    region_1 (rx) : ORIGIN = 0x80000000, LENGTH = 0x20000")
	require.Contains(t, script, "    region_2 (rw) : ORIGIN = 0x80020000, LENGTH = 0x10000")
	require.Contains(t, script, "    subregion_1 (rw) : ORIGIN = 0x80020000, LENGTH = 0xe000")
	require.Contains(t, script, "    subregion_2 (rw) : ORIGIN = 0x8002e000, LENGTH = 0x2000")
}

func TestScript_TextSectionInputOrder(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	require.Contains(t, script, ".text : ALIGN(4096) {")

	// The reset vector must land at the memory base, with the custom reset
	// entrypoint right behind it, before any ordinary code.
	reset := strings.Index(script, "*(.text.entry .text.entry.*)")
	customReset := strings.Index(script, "*(.text.custom_reset_entry .text.custom_reset_entry.*)")
	text := strings.Index(script, "*(.text .text.*)")
	require.True(t, reset >= 0)
	require.True(t, reset < customReset)
	require.True(t, customReset < text)

	require.Contains(t, script, "} >region_1")
}

func TestScript_NoCustomResetInputSectionWithoutCustomReset(t *testing.T) {
	tgt := testTarget()
	tgt.CustomReset = false

	script := renderScript(newTestConfig(t, tgt, testSections()))
	require.NotContains(t, script, ".text.custom_reset_entry")
}

func TestScript_NonTrailingNapotEndAlignment(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	// rodata is the last section in region_1, so its end is pushed out to the
	// full region length.
	rodata := script[strings.Index(script, ".rodata"):]
	require.Contains(t, rodata[:strings.Index(rodata, "}")], ". = ALIGN(131072);")
}

func TestScript_DataSectionGlobalPointer(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	require.Contains(t, script, "_sdata = .;")
	require.Contains(t, script, "_global_pointer = . + 0x800;")
	require.Contains(t, script, "*(.data .data.*)")
	require.Contains(t, script, "*(.sdata .sdata.*)")
}

func TestScript_StackInBss(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	require.Contains(t, script, ".bss (NOLOAD): ALIGN(4096) {")

	bss := script[strings.Index(script, ".bss"):]
	bss = bss[:strings.Index(bss, "}")]
	require.Contains(t, bss, ". = ALIGN(8192);")
	require.Contains(t, bss, "_sstack = .;")
	require.Contains(t, bss, ". += 0x8000;")
	require.Contains(t, bss, "_stack_top = .;")
	require.Contains(t, bss, "_estack = .;")

	// No standalone stack output section in this mode.
	require.NotContains(t, script, ".stack")
}

func TestScript_SeparateStackSection(t *testing.T) {
	regions := []layout.MemoryRegion{
		layout.NewNapotMemoryRegion("region_1", 0x8000_0000, 128*layout.KiB, layout.AttribsRX()),
		layout.NewNapotMemoryRegion("region_2", 0x8002_0000, 64*layout.KiB, layout.AttribsRW()),
	}
	sections := []*layout.Section{
		layout.NewSection(layout.Text, 4096, "region_1"),
		layout.NewSection(layout.Bss, 4096, "region_2"),
		layout.NewSection(layout.Stack, 4096, "region_2"),
	}
	tgt := testTarget()
	tgt.CustomReset = false

	cfg, err := layout.NewLinkerConfig(regions, sections, layout.StackSeparateSection(), tgt)
	require.NoError(t, err)

	script := renderScript(cfg)
	require.Contains(t, script, ".stack (NOLOAD): ALIGN(4096) {")

	bss := script[strings.Index(script, ".bss"):]
	bss = bss[:strings.Index(bss, "}")]
	require.NotContains(t, bss, "_sstack")
}

func TestScript_HeapSection(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	require.Contains(t, script, ".heap (NOLOAD): ALIGN(4096) {")
	require.Contains(t, script, "_sheap = .;")
	require.Contains(t, script, ". += 0x1000;")
	require.Contains(t, script, "_eheap = .;")
}

func TestScript_HeapOmittedWhenSizeZero(t *testing.T) {
	tgt := testTarget()
	tgt.Mem.HeapSize = 0

	script := renderScript(newTestConfig(t, tgt, testSections()))
	require.NotContains(t, script, ".heap")
}

func TestScript_CustomSectionNoload(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	// No subsections, so the section only reserves address space.
	require.Contains(t, script, ".custom_section (NOLOAD): ALIGN(4096) {")
	require.Contains(t, script, "_scustom_section = .;")
	require.Contains(t, script, "_ecustom_section = .;")
}

func TestScript_CustomSectionWithSubSections(t *testing.T) {
	sections := testSections()
	custom := sections[len(sections)-1]
	custom.AddSubSection(layout.NewSubSection(".my_table", 64, 1024).Keep())

	script := renderScript(newTestConfig(t, testTarget(), sections))

	require.Contains(t, script, ".custom_section : ALIGN(4096) {")
	require.Contains(t, script, "KEEP(*(.my_table .my_table.*))")
	require.Contains(t, script, "_smy_table = .;")
	require.Contains(t, script, "_emy_table = .;")
	require.Contains(t, script, `ASSERT(_emy_table - _smy_table <= 1024, ".my_table overflowed")`)
}

func TestScript_CustomSectionSkippedAtSizeZero(t *testing.T) {
	sections := testSections()
	sections[len(sections)-1] = layout.NewSection(layout.CustomSection("custom_section", 0), 4096, "subregion_1")

	script := renderScript(newTestConfig(t, testTarget(), sections))
	require.NotContains(t, script, ".custom_section")
}

func TestScript_DiscardSection(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	require.Contains(t, script, "/DISCARD/ : {")
	require.Contains(t, script, "*(.eh_frame .eh_frame.*)")
}

func TestScript_ProgramAndMemorySymbols(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	require.Contains(t, script, "_sprogram = _stext;")
	require.Contains(t, script, "_eprogram = _ecustom_section;")

	require.Contains(t, script, "_sregion_1 = 0x80000000;")
	require.Contains(t, script, "_eregion_1 = 0x80020000;")
	require.Contains(t, script, "_ssubregion_2 = 0x8002e000;")
}

func TestScript_UserSymbols(t *testing.T) {
	cfg := newTestConfig(t, testTarget(), testSections())
	cfg.AddSymbol(layout.NewSymbol("_flash_base", "0x80000000"))

	script := renderScript(cfg)
	require.Contains(t, script, "_flash_base = 0x80000000;")
}

func TestScript_MemoryBoundsAsserts(t *testing.T) {
	script := renderScript(newTestConfig(t, testTarget(), testSections()))

	require.Contains(t, script, `ASSERT(_sregion_1 <= _stext, "region_1 underflow")`)
	require.Contains(t, script, `ASSERT(_eregion_1 >= _erodata, "region_1 overflow")`)
	require.Contains(t, script, `ASSERT(_esubregion_1 >= _ecustom_section, "subregion_1 overflow")`)

	// Empty memories get no bounds checks.
	require.NotContains(t, script, `"region_2 underflow"`)
	require.NotContains(t, script, `"subregion_2 overflow"`)
}
