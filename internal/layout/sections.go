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

// SectionKind discriminates SectionType values.
type SectionKind int

const (
	KindText SectionKind = iota
	KindData
	KindRodata
	KindBss
	KindHeap
	KindStack
	KindCustom
)

// SectionType identifies an output section. Custom sections carry their own
// name and reserved size.
type SectionType struct {
	kind SectionKind
	name string
	size int
}

var (
	Text   = SectionType{kind: KindText, name: "text"}
	Data   = SectionType{kind: KindData, name: "data"}
	Rodata = SectionType{kind: KindRodata, name: "rodata"}
	Bss    = SectionType{kind: KindBss, name: "bss"}
	Heap   = SectionType{kind: KindHeap, name: "heap"}
	Stack  = SectionType{kind: KindStack, name: "stack"}
)

// CustomSection reserves size bytes under the given name. A size of zero
// suppresses the section entirely.
func CustomSection(name string, size int) SectionType {
	return SectionType{kind: KindCustom, name: name, size: size}
}

func (self SectionType) Kind() SectionKind { return self.kind }
func (self SectionType) Name() string      { return self.name }
func (self SectionType) Size() int         { return self.size }

// DefaultInputSections lists the input sections collected by convention.
func (self SectionType) DefaultInputSections() []string {
	switch self.kind {
	case KindText:
		return []string{".text"}
	case KindData:
		return []string{".data", ".sdata"}
	case KindRodata:
		return []string{".rodata", ".srodata"}
	case KindBss:
		return []string{".bss", ".sbss"}
	default:
		return nil
	}
}

func (self SectionType) EntryName() string   { return "." + self.name }
func (self SectionType) StartSymbol() string { return "_s" + self.name }
func (self SectionType) EndSymbol() string   { return "_e" + self.name }

// SubSection maps one extra input section into its enclosing output section,
// with its own alignment and an optional size cap.
type SubSection struct {
	inputSection string
	alignment    int
	maxSize      int
	markAsKeep   bool
}

// NewSubSection creates a sub-section entry. maxSize of zero means no cap.
func NewSubSection(inputSection string, alignment, maxSize int) SubSection {
	return SubSection{
		inputSection: inputSection,
		alignment:    alignment,
		maxSize:      maxSize,
	}
}

// Keep returns a copy with the input sections wrapped in KEEP(), shielding
// them from linker garbage collection.
func (self SubSection) Keep() SubSection {
	self.markAsKeep = true
	return self
}

func (self SubSection) InputSection() string { return self.inputSection }
func (self SubSection) Alignment() int       { return self.alignment }
func (self SubSection) MaxSize() int         { return self.maxSize }
func (self SubSection) MarkAsKeep() bool     { return self.markAsKeep }

// Section places one SectionType into a target memory.
type Section struct {
	ty             SectionType
	startAlignment int
	endAlignment   int
	targetMemory   string
	subsections    []SubSection
	loadAddress    string
}

func NewSection(ty SectionType, alignment int, targetMemory string) *Section {
	return &Section{
		ty: ty,
		// Start and end alignment coincide until layout validation widens
		// the end alignment for non-trailing NAPOT regions.
		startAlignment: alignment,
		endAlignment:   alignment,
		targetMemory:   targetMemory,
	}
}

func (self *Section) AddSubSection(ss SubSection) {
	self.subsections = append(self.subsections, ss)
}

// WithLoadAddress makes the section load at the given symbol (AT(...)),
// separating load and execution addresses.
func (self *Section) WithLoadAddress(symbol string) *Section {
	self.loadAddress = symbol
	return self
}

func (self *Section) Type() SectionType        { return self.ty }
func (self *Section) StartAlignment() int      { return self.startAlignment }
func (self *Section) EndAlignment() int        { return self.endAlignment }
func (self *Section) TargetMemory() string     { return self.targetMemory }
func (self *Section) SubSections() []SubSection { return self.subsections }
func (self *Section) LoadAddress() string      { return self.loadAddress }

// StackAlignment selects the alignment of an in-BSS stack block.
type StackAlignment int

const (
	// DefaultAlign aligns the stack block to 4 KiB.
	DefaultAlign StackAlignment = iota

	// NaturalAlign aligns the stack block to the per-hart stack size, which
	// overflow detection via address protection relies on.
	NaturalAlign
)

// StackLocation says where the stack block lives.
type StackLocation struct {
	inBss     bool
	alignment StackAlignment
}

// StackInBss inlines the stack block at the tail of .bss.
func StackInBss(alignment StackAlignment) StackLocation {
	return StackLocation{inBss: true, alignment: alignment}
}

// StackSeparateSection places the stack in its own .stack output section,
// which must be present in the section list.
func StackSeparateSection() StackLocation {
	return StackLocation{}
}

func (self StackLocation) IsInBss() bool { return self.inBss }

// Symbol is a user-defined symbol assignment appended to the script.
type Symbol struct {
	Name  string
	Value string
}

func NewSymbol(name, value string) Symbol {
	return Symbol{Name: name, Value: value}
}
