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
	"fmt"
	"sort"

	"github.com/cloudwego/rvgen/internal/target"
)

// LinkerConfig is the validated memory layout handed to the script emitter.
type LinkerConfig struct {
	Memories      []*Memory
	Sections      []*Section
	StackLocation StackLocation
	Target        target.Config
	Symbols       []Symbol
}

// NewLinkerConfig flattens regions into MEMORY entries, derives sub-region
// bases, propagates end alignments for non-trailing NAPOT regions, and binds
// every section to its target memory.
func NewLinkerConfig(
	regions []MemoryRegion,
	sections []*Section,
	stackLocation StackLocation,
	tgt target.Config,
) (*LinkerConfig, error) {
	var memories []*Memory

	for i, region := range regions {
		mems, err := memoriesFromRegion(region)
		if err != nil {
			return nil, err
		}
		memories = append(memories, mems...)

		if !region.napot {
			continue
		}
		// Non-trailing NAPOT regions must have their last section end-aligned
		// to the full region length, so the on-storage image fills the hole
		// up to the next region and matches the in-memory layout.
		if i == len(regions)-1 {
			continue
		}

		// Composite regions terminate in their last sub-region, which is
		// where the last section lands.
		regionName := region.name
		if n := len(region.subRegions); n > 0 {
			regionName = region.subRegions[n-1].name
		}

		found := false
		for j := len(sections) - 1; j >= 0; j-- {
			if sections[j].targetMemory == regionName {
				sections[j].endAlignment = region.length
				found = true
				break
			}
		}
		if !found {
			return nil, ConfigError{
				Reason: fmt.Sprintf("non-trailing NAPOT region %q has no sections mapped to it", regionName),
			}
		}
	}

	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].base < memories[j].base
	})

	if !stackLocation.IsInBss() {
		hasStack := false
		for _, s := range sections {
			if s.ty.kind == KindStack {
				hasStack = true
				break
			}
		}
		if !hasStack {
			return nil, ConfigError{Reason: "stack is outside BSS but no stack section was provided"}
		}
	}

	byName := make(map[string]*Memory, len(memories))
	for _, m := range memories {
		byName[m.name] = m
	}
	for _, s := range sections {
		m, ok := byName[s.targetMemory]
		if !ok {
			return nil, ConfigError{
				Reason: fmt.Sprintf("target memory %q not found for section %q", s.targetMemory, s.ty.Name()),
			}
		}
		m.addSection(s)
	}

	return &LinkerConfig{
		Memories:      memories,
		Sections:      sections,
		StackLocation: stackLocation,
		Target:        tgt,
	}, nil
}

// SectionTypes returns the declared section types, plus the implicit stack
// entry when the stack lives inside BSS.
func (self *LinkerConfig) SectionTypes() []SectionType {
	types := make([]SectionType, 0, len(self.Sections)+1)
	for _, s := range self.Sections {
		types = append(types, s.ty)
	}
	if self.IsStackInBss() {
		types = append(types, Stack)
	}
	return types
}

func (self *LinkerConfig) HartStackSize() int {
	return self.Target.PerHartStackSize()
}

func (self *LinkerConfig) StackRegionSize() int {
	return self.HartStackSize() * self.Target.MaxHartCount()
}

func (self *LinkerConfig) HeapSize() int {
	return self.Target.HeapSize()
}

func (self *LinkerConfig) IsStackInBss() bool {
	return self.StackLocation.IsInBss()
}

// StackInBssAlignment is only meaningful when the stack is inlined in BSS.
func (self *LinkerConfig) StackInBssAlignment() int {
	if !self.StackLocation.IsInBss() {
		panic("layout: stack is not in BSS, use the stack section's alignment")
	}
	if self.StackLocation.alignment == NaturalAlign {
		return self.HartStackSize()
	}
	return 4 * KiB
}

// AddSymbol appends a user symbol assignment to the script.
func (self *LinkerConfig) AddSymbol(sym Symbol) {
	self.Symbols = append(self.Symbols, sym)
}
