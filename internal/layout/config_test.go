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

package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/rvgen/internal/target"
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
	}
}

func testRegions() []MemoryRegion {
	return []MemoryRegion{
		NewNapotMemoryRegion("region_1", 0x8000_0000, 128*KiB, AttribsRX()),
		NewNapotMemoryRegion("region_2", 0x8002_0000, 64*KiB, AttribsRW(),
			NewSubRegion("subregion_1", 56*KiB),
			NewNapotSubRegion("subregion_2", 8*KiB),
		),
	}
}

func testSections() []*Section {
	return []*Section{
		NewSection(Text, 4096, "region_1"),
		NewSection(Rodata, 4096, "region_1"),
		NewSection(Data, 4096, "subregion_1"),
		NewSection(Bss, 4096, "subregion_1"),
		NewSection(Heap, 4096, "subregion_1"),
	}
}

func TestNewLinkerConfig_SortsMemoriesByBase(t *testing.T) {
	regions := testRegions()
	regions[0], regions[1] = regions[1], regions[0]

	// With region_2 declared first it is no longer trailing, so its terminal
	// sub-region needs a mapped section for the end-alignment propagation.
	sections := append(testSections(),
		NewSection(CustomSection("scratch", 4096), 4096, "subregion_2"))

	cfg, err := NewLinkerConfig(regions, sections, StackInBss(NaturalAlign), testTarget())
	require.NoError(t, err)

	var names []string
	for _, m := range cfg.Memories {
		names = append(names, m.Name())
	}
	require.Equal(t, []string{"region_1", "region_2", "subregion_1", "subregion_2"}, names)
}

func TestNewLinkerConfig_NonTrailingNapotEndAlignment(t *testing.T) {
	sections := testSections()

	cfg, err := NewLinkerConfig(testRegions(), sections, StackInBss(NaturalAlign), testTarget())
	require.NoError(t, err)

	// region_1 is non-trailing NAPOT: its last mapped section ends aligned
	// to the full region length so the image fills up to region_2.
	require.Equal(t, 128*KiB, sections[1].EndAlignment())
	require.Equal(t, 4096, sections[0].EndAlignment())

	// region_2 is trailing, so its sections keep their own alignment.
	require.Equal(t, 4096, sections[4].EndAlignment())
	require.NotNil(t, cfg)
}

func TestNewLinkerConfig_NonTrailingNapotWithoutSections(t *testing.T) {
	sections := []*Section{
		NewSection(Text, 4096, "subregion_1"),
		NewSection(Bss, 4096, "subregion_1"),
	}

	_, err := NewLinkerConfig(testRegions(), sections, StackInBss(NaturalAlign), testTarget())
	require.Error(t, err)
	require.IsType(t, ConfigError{}, err)
	require.Contains(t, err.Error(), "non-trailing NAPOT region")
}

func TestNewLinkerConfig_SeparateStackRequiresStackSection(t *testing.T) {
	_, err := NewLinkerConfig(testRegions(), testSections(), StackSeparateSection(), testTarget())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no stack section")
}

func TestNewLinkerConfig_UnknownTargetMemory(t *testing.T) {
	sections := testSections()
	sections = append(sections, NewSection(CustomSection("scratch", 4096), 4096, "nowhere"))

	_, err := NewLinkerConfig(testRegions(), sections, StackInBss(NaturalAlign), testTarget())
	require.Error(t, err)
	require.Contains(t, err.Error(), `"nowhere"`)
}

func TestNewLinkerConfig_BindsSectionsToMemories(t *testing.T) {
	cfg, err := NewLinkerConfig(testRegions(), testSections(), StackInBss(NaturalAlign), testTarget())
	require.NoError(t, err)

	byName := make(map[string]*Memory)
	for _, m := range cfg.Memories {
		byName[m.Name()] = m
	}

	require.Len(t, byName["region_1"].Sections(), 2)
	require.Len(t, byName["subregion_1"].Sections(), 3)
	require.True(t, byName["region_2"].IsEmpty())
	require.True(t, byName["subregion_2"].IsEmpty())

	require.Equal(t, "_stext", byName["region_1"].FirstSectionStartSymbol())
	require.Equal(t, "_erodata", byName["region_1"].LastSectionEndSymbol())
}

func TestLinkerConfig_SectionTypesIncludesImplicitStack(t *testing.T) {
	cfg, err := NewLinkerConfig(testRegions(), testSections(), StackInBss(NaturalAlign), testTarget())
	require.NoError(t, err)

	types := cfg.SectionTypes()
	require.Equal(t, "stack", types[len(types)-1].Name())
}

func TestLinkerConfig_StackGeometry(t *testing.T) {
	cfg, err := NewLinkerConfig(testRegions(), testSections(), StackInBss(NaturalAlign), testTarget())
	require.NoError(t, err)

	require.Equal(t, 8192, cfg.HartStackSize())
	require.Equal(t, 4*8192, cfg.StackRegionSize())
	require.Equal(t, 8192, cfg.StackInBssAlignment())
}

func TestLinkerConfig_StackInBssDefaultAlignment(t *testing.T) {
	cfg, err := NewLinkerConfig(testRegions(), testSections(), StackInBss(DefaultAlign), testTarget())
	require.NoError(t, err)

	require.Equal(t, 4*KiB, cfg.StackInBssAlignment())
}

func TestLinkerConfig_StackInBssAlignmentPanicsForSeparateStack(t *testing.T) {
	sections := testSections()
	sections = append(sections, NewSection(Stack, 4096, "subregion_1"))

	cfg, err := NewLinkerConfig(testRegions(), sections, StackSeparateSection(), testTarget())
	require.NoError(t, err)
	require.Panics(t, func() { cfg.StackInBssAlignment() })
}
