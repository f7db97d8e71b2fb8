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

// Package layout models physical memory regions and output sections, and
// validates them into a linker configuration.
package layout

import (
	"fmt"
)

const (
	KiB = 1024
	MiB = KiB * 1024
)

// MemoryAttribs is the attribute string of a MEMORY entry.
type MemoryAttribs struct {
	read        bool
	write       bool
	execute     bool
	allocated   bool
	initialized bool
}

func AttribsR() MemoryAttribs   { return MemoryAttribs{read: true} }
func AttribsW() MemoryAttribs   { return MemoryAttribs{write: true} }
func AttribsRW() MemoryAttribs  { return MemoryAttribs{read: true, write: true} }
func AttribsX() MemoryAttribs   { return MemoryAttribs{execute: true} }
func AttribsRX() MemoryAttribs  { return MemoryAttribs{read: true, execute: true} }
func AttribsRWX() MemoryAttribs { return MemoryAttribs{read: true, write: true, execute: true} }

func (self MemoryAttribs) String() string {
	s := ""
	if self.read {
		s += "r"
	}
	if self.write {
		s += "w"
	}
	if self.execute {
		s += "x"
	}
	if self.allocated {
		s += "a"
	}
	if self.initialized {
		s += "i"
	}
	return s
}

func isAligned(val, alignment int) bool {
	return val%alignment == 0
}

func isPowerOfTwo(val int) bool {
	return val != 0 && val&(val-1) == 0
}

func checkNapot(name string, base, length int) error {
	if !isPowerOfTwo(length) {
		return GeometryError{
			Name:   name,
			Reason: fmt.Sprintf("length 0x%x is not a power of two", length),
		}
	}
	if !isAligned(base, length) {
		return GeometryError{
			Name:   name,
			Reason: fmt.Sprintf("base 0x%x is not aligned to length 0x%x", base, length),
		}
	}
	return nil
}

// SubRegion is a named carve-out of a MemoryRegion. Sub-region bases are
// derived, each starts where the previous one ends.
type SubRegion struct {
	name   string
	length int
	napot  bool
}

func NewSubRegion(name string, length int) SubRegion {
	return SubRegion{name: name, length: length}
}

// NewNapotSubRegion is a sub-region whose derived base must be naturally
// aligned to its power-of-two length.
func NewNapotSubRegion(name string, length int) SubRegion {
	return SubRegion{name: name, length: length, napot: true}
}

// MemoryRegion is one physically-addressed region of the target.
type MemoryRegion struct {
	name       string
	base       int
	length     int
	napot      bool
	attribs    MemoryAttribs
	subRegions []SubRegion
}

func NewMemoryRegion(name string, base, length int, attribs MemoryAttribs, subRegions ...SubRegion) MemoryRegion {
	return MemoryRegion{
		name:       name,
		base:       base,
		length:     length,
		attribs:    attribs,
		subRegions: subRegions,
	}
}

func NewNapotMemoryRegion(name string, base, length int, attribs MemoryAttribs, subRegions ...SubRegion) MemoryRegion {
	r := NewMemoryRegion(name, base, length, attribs, subRegions...)
	r.napot = true
	return r
}

func (self MemoryRegion) end() int {
	return self.base + self.length
}

// Memory is a resolved MEMORY entry: a region or sub-region with a concrete
// base, plus the output sections placed into it.
type Memory struct {
	name     string
	base     int
	length   int
	attribs  MemoryAttribs
	sections []*Section
}

func newMemory(name string, base, length int, attribs MemoryAttribs) *Memory {
	return &Memory{name: name, base: base, length: length, attribs: attribs}
}

// memoriesFromRegion flattens a region and its sub-regions into MEMORY
// entries, deriving sub-region bases and enforcing the NAPOT rules.
func memoriesFromRegion(region MemoryRegion) ([]*Memory, error) {
	if region.napot {
		if err := checkNapot(region.name, region.base, region.length); err != nil {
			return nil, err
		}
	}

	memories := []*Memory{
		newMemory(region.name, region.base, region.length, region.attribs),
	}

	base := region.base
	for _, sub := range region.subRegions {
		if sub.napot {
			if !region.napot {
				return nil, GeometryError{
					Name:   sub.name,
					Reason: fmt.Sprintf("NAPOT sub-region inside non-NAPOT region %q", region.name),
				}
			}
			if err := checkNapot(sub.name, base, sub.length); err != nil {
				return nil, err
			}
		}
		if base+sub.length > region.end() {
			return nil, GeometryError{
				Name: sub.name,
				Reason: fmt.Sprintf(
					"base 0x%x length 0x%x overflows region %q (base 0x%x length 0x%x)",
					base, sub.length, region.name, region.base, region.length,
				),
			}
		}
		memories = append(memories, newMemory(sub.name, base, sub.length, region.attribs))
		base += sub.length
	}

	return memories, nil
}

func (self *Memory) Name() string { return self.name }
func (self *Memory) Base() int    { return self.base }
func (self *Memory) End() int     { return self.base + self.length }

func (self *Memory) StartSymbol() string { return "_s" + self.name }
func (self *Memory) EndSymbol() string   { return "_e" + self.name }

func (self *Memory) addSection(s *Section) {
	self.sections = append(self.sections, s)
}

// Sections returns the output sections placed into this memory, in
// declaration order.
func (self *Memory) Sections() []*Section { return self.sections }

func (self *Memory) IsEmpty() bool { return len(self.sections) == 0 }

// FirstSectionStartSymbol is only valid on a non-empty memory.
func (self *Memory) FirstSectionStartSymbol() string {
	return self.sections[0].ty.StartSymbol()
}

func (self *Memory) LastSectionEndSymbol() string {
	return self.sections[len(self.sections)-1].ty.EndSymbol()
}

// String renders the MEMORY table entry.
func (self *Memory) String() string {
	return fmt.Sprintf("%s (%s) : ORIGIN = 0x%x, LENGTH = 0x%x", self.name, self.attribs, self.base, self.length)
}
