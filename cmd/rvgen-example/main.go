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

// Generates the runtime scaffolding for a small reference target: four RV64
// M-mode harts booting from two NAPOT flash/RAM regions. Output directories
// default to src/generated and can be moved with RVGEN_RT_DIR and
// RVGEN_LINKER_DIR.
package main

import (
	"fmt"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/cloudwego/rvgen"
)

func buildConfig() (*rvgen.RuntimeConfig, error) {
	const (
		alignment        = 4096
		maxHartCount     = 4
		perHartStackSize = 8192
		heapSize         = 4096
	)

	tgt := rvgen.Config{
		Hart: rvgen.HartConfig{
			Mode:                       rvgen.MachineMode,
			Xlen:                       rvgen.Xlen64,
			MaxHartCount:               maxHartCount,
			AllHartsStartAtResetVector: true,
		},
		Mem: rvgen.MemConfig{
			PerHartStackSize: perHartStackSize,
			HeapSize:         heapSize,
		},
		CustomReset: true,
	}

	linkerConfig, err := rvgen.NewLinkerConfig(
		[]rvgen.MemoryRegion{
			rvgen.NewNapotMemoryRegion("region_1", 0x8000_0000, 128*rvgen.KiB, rvgen.AttribsRX()),
			rvgen.NewNapotMemoryRegion("region_2", 0x8002_0000, 64*rvgen.KiB, rvgen.AttribsRW(),
				rvgen.NewSubRegion("subregion_1", 56*rvgen.KiB),
				rvgen.NewNapotSubRegion("subregion_2", 8*rvgen.KiB),
			),
		},
		[]*rvgen.Section{
			rvgen.NewSection(rvgen.Text, alignment, "region_1"),
			rvgen.NewSection(rvgen.Rodata, alignment, "region_1"),
			rvgen.NewSection(rvgen.Data, alignment, "subregion_1"),
			rvgen.NewSection(rvgen.Bss, alignment, "subregion_1"),
			rvgen.NewSection(rvgen.Heap, alignment, "subregion_1"),
			rvgen.NewSection(rvgen.CustomSection("custom_section", 4096), alignment, "subregion_1"),
		},
		rvgen.StackInBss(rvgen.NaturalAlign),
		tgt,
	)
	if err != nil {
		return nil, err
	}

	rtConfig, err := rvgen.NewRtConfig(
		rvgen.Entrypoints{
			rvgen.BootHartEntry:      "main",
			rvgen.NonBootHartEntry:   "secondary_main",
			rvgen.TrapEntry:          "trap_enter",
			rvgen.CustomResetEntry:   "my_custom_reset",
			rvgen.StackOverflowEntry: "handle_stack_overflow",
		},
		rvgen.DefaultTrapFrame(),
		rvgen.DefaultTpBlock(),
		rvgen.DefaultThreadContext(),
		tgt,
		rvgen.Features{
			AtomicExtension: true,
			FloatingPoint:   true,
		},
	)
	if err != nil {
		return nil, err
	}

	return &rvgen.RuntimeConfig{
		RtDir:        env.Str("RVGEN_RT_DIR", "src/generated/rt"),
		LinkerDir:    env.Str("RVGEN_LINKER_DIR", "src/generated/linker"),
		LinkerConfig: linkerConfig,
		RtConfig:     rtConfig,
	}, nil
}

func main() {
	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "rvgen:", err)
		os.Exit(1)
	}

	for _, dir := range []string{cfg.RtDir, cfg.LinkerDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintln(os.Stderr, "rvgen:", err)
			os.Exit(1)
		}
	}

	if err := rvgen.WriteRuntimeFilesAsModule(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "rvgen:", err)
		os.Exit(1)
	}
}
