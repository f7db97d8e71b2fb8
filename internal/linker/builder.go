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
	"fmt"
	"strings"

	"github.com/cloudwego/rvgen/internal/layout"
	"github.com/cloudwego/rvgen/internal/writer"
)

// Builder accumulates linker sentences for the script.
type Builder struct {
	cfg       *layout.LinkerConfig
	sentences []Sentence
}

func NewBuilder(cfg *layout.LinkerConfig) *Builder {
	b := &Builder{cfg: cfg}
	b.Comment(writer.Banner)
	return b
}

func (self *Builder) Generate(w *writer.Writer) {
	for _, s := range self.sentences {
		s.render(w)
	}
}

func (self *Builder) add(s Sentence) {
	self.sentences = append(self.sentences, s)
}

func (self *Builder) OutputArch() {
	self.add(outputArch{arch: outputArchRiscv})
}

func (self *Builder) Entry() {
	self.add(entry{symbol: layout.StartSymbol})
}

func (self *Builder) Memory() {
	self.add(memoryTable{memories: self.cfg.Memories})
}

func (self *Builder) memorySymbols() {
	for _, m := range self.cfg.Memories {
		self.add(setToValue{symbol: m.StartSymbol(), value: m.Base()})
		self.add(setToValue{symbol: m.EndSymbol(), value: m.End()})
	}
}

// programSymbols brackets the whole on-storage image: the first section of
// the lowest populated memory through the last section of the highest one.
func (self *Builder) programSymbols() {
	for _, m := range self.cfg.Memories {
		if m.IsEmpty() {
			continue
		}
		self.add(setToSymbol{symbol: layout.ProgramStartSymbol, value: m.FirstSectionStartSymbol()})
		break
	}
	for i := len(self.cfg.Memories) - 1; i >= 0; i-- {
		m := self.cfg.Memories[i]
		if m.IsEmpty() {
			continue
		}
		self.add(setToSymbol{symbol: layout.ProgramEndSymbol, value: m.LastSectionEndSymbol()})
		break
	}
}

func (self *Builder) outputSectionStart(name string, noload bool, alignment int, loadAddress string) {
	self.add(outputSectionStart{
		name:        name,
		noload:      noload,
		alignment:   alignment,
		loadAddress: loadAddress,
	})
}

func (self *Builder) outputSectionEnd(targetMemory string) {
	self.add(outputSectionEnd{targetMemory: targetMemory})
}

func (self *Builder) setSymbolToCurrent(symbol string) {
	self.add(setToCurrent{symbol: symbol})
}

func (self *Builder) setSymbolOffsetFromCurrent(symbol string, offset int) {
	self.add(setRelativeToLocationCounter{symbol: symbol, offset: offset})
}

func (self *Builder) inputSection(section string, keep bool) {
	self.add(inputSections{
		sections: fmt.Sprintf("%s %s.*", section, section),
		keep:     keep,
	})
}

func (self *Builder) align(alignment int) {
	self.add(align{alignment: alignment})
}

func (self *Builder) advanceLocationCounter(size int) {
	self.add(advanceLocationCounter{size: size})
}

func (self *Builder) assert(cond, errorMsg string) {
	self.add(assert{cond: cond, errorMsg: errorMsg})
}

// subSectionSymbolSuffix strips the leading dot of an input section name and
// folds inner dots to underscores, giving the _s/_e symbol stem.
func subSectionSymbolSuffix(inputSection string) string {
	s := strings.TrimPrefix(inputSection, ".")
	return strings.ReplaceAll(s, ".", "_")
}

func (self *Builder) addSubSections(section *layout.Section) {
	for _, ss := range section.SubSections() {
		suffix := subSectionSymbolSuffix(ss.InputSection())

		self.align(ss.Alignment())

		start := "_s" + suffix
		self.setSymbolToCurrent(start)

		self.inputSection(ss.InputSection(), ss.MarkAsKeep())

		self.align(ss.Alignment())

		end := "_e" + suffix
		self.setSymbolToCurrent(end)

		if maxSize := ss.MaxSize(); maxSize > 0 {
			self.assert(
				fmt.Sprintf("%s - %s <= %d", end, start, maxSize),
				fmt.Sprintf("%s overflowed", ss.InputSection()),
			)
		}
	}
}

func (self *Builder) addTextSection(section *layout.Section) {
	ty := section.Type()

	self.outputSectionStart(ty.EntryName(), false, section.StartAlignment(), section.LoadAddress())
	self.setSymbolToCurrent(ty.StartSymbol())

	// The reset vector comes first so it sits at the memory base.
	self.inputSection(layout.ResetSection, false)

	// The user places the custom reset entrypoint in its dedicated section
	// so it stays close to the reset vector.
	if self.cfg.Target.NeedsCustomReset() {
		self.inputSection(layout.CustomResetSection, false)
	}

	for _, input := range ty.DefaultInputSections() {
		self.inputSection(input, false)
	}

	self.addSubSections(section)

	self.align(section.EndAlignment())
	self.setSymbolToCurrent(ty.EndSymbol())
	self.outputSectionEnd(section.TargetMemory())
}

func (self *Builder) addRodataSection(section *layout.Section) {
	ty := section.Type()

	self.outputSectionStart(ty.EntryName(), false, section.StartAlignment(), section.LoadAddress())
	self.setSymbolToCurrent(ty.StartSymbol())

	for _, input := range ty.DefaultInputSections() {
		self.inputSection(input, false)
	}

	self.addSubSections(section)

	self.align(section.EndAlignment())
	self.setSymbolToCurrent(ty.EndSymbol())
	self.outputSectionEnd(section.TargetMemory())
}

func (self *Builder) addDataSection(section *layout.Section) {
	ty := section.Type()

	self.outputSectionStart(ty.EntryName(), false, section.StartAlignment(), section.LoadAddress())
	self.setSymbolToCurrent(ty.StartSymbol())

	// gp points 0x800 past the data start so gp-relative addressing covers
	// the full +-2KiB window.
	self.setSymbolOffsetFromCurrent(layout.GlobalPointerSymbol, 0x800)

	for _, input := range ty.DefaultInputSections() {
		self.inputSection(input, false)
	}

	self.addSubSections(section)

	self.align(section.EndAlignment())
	self.setSymbolToCurrent(ty.EndSymbol())
	self.outputSectionEnd(section.TargetMemory())
}

func (self *Builder) addStackSectionContents() {
	self.setSymbolToCurrent(layout.Stack.StartSymbol())
	self.advanceLocationCounter(self.cfg.StackRegionSize())
	self.setSymbolToCurrent(layout.StackTopSymbol)
	self.setSymbolToCurrent(layout.Stack.EndSymbol())
}

func (self *Builder) addStackSection(section *layout.Section) {
	if self.cfg.IsStackInBss() {
		return
	}

	ty := section.Type()

	self.outputSectionStart(ty.EntryName(), true, section.StartAlignment(), section.LoadAddress())
	self.addStackSectionContents()
	self.align(section.EndAlignment())
	self.outputSectionEnd(section.TargetMemory())
}

func (self *Builder) addBssSection(section *layout.Section) {
	ty := section.Type()

	self.outputSectionStart(ty.EntryName(), true, section.StartAlignment(), section.LoadAddress())
	self.setSymbolToCurrent(ty.StartSymbol())

	for _, input := range ty.DefaultInputSections() {
		self.inputSection(input, false)
	}

	if self.cfg.IsStackInBss() {
		self.align(self.cfg.StackInBssAlignment())
		self.addStackSectionContents()
	}

	self.align(section.EndAlignment())
	self.setSymbolToCurrent(ty.EndSymbol())
	self.outputSectionEnd(section.TargetMemory())
}

func (self *Builder) addHeapSection(section *layout.Section) {
	heapSize := self.cfg.HeapSize()
	if heapSize == 0 {
		return
	}

	ty := section.Type()

	self.outputSectionStart(ty.EntryName(), true, section.StartAlignment(), section.LoadAddress())
	self.setSymbolToCurrent(ty.StartSymbol())
	self.advanceLocationCounter(heapSize)
	self.align(section.EndAlignment())
	self.setSymbolToCurrent(ty.EndSymbol())
	self.outputSectionEnd(section.TargetMemory())
}

func (self *Builder) addCustomSection(section *layout.Section) {
	ty := section.Type()
	size := ty.Size()
	if size == 0 {
		return
	}

	// A custom section with subsections carries real content; a bare one
	// only reserves address space and loads nothing.
	noload := len(section.SubSections()) == 0

	self.outputSectionStart(ty.EntryName(), noload, section.StartAlignment(), section.LoadAddress())
	self.setSymbolToCurrent(ty.StartSymbol())

	if noload {
		self.advanceLocationCounter(size)
	} else {
		self.addSubSections(section)
	}

	self.align(section.EndAlignment())
	self.setSymbolToCurrent(ty.EndSymbol())
	self.outputSectionEnd(section.TargetMemory())
}

func (self *Builder) addDiscardSection() {
	self.add(discardStart{})
	self.inputSection(".eh_frame", false)
	self.add(blockEnd{})
}

// Sections emits the SECTIONS block in declaration order.
func (self *Builder) Sections() {
	self.add(sectionsStart{})

	for _, section := range self.cfg.Sections {
		switch section.Type().Kind() {
		case layout.KindText:
			self.addTextSection(section)
		case layout.KindRodata:
			self.addRodataSection(section)
		case layout.KindData:
			self.addDataSection(section)
		case layout.KindBss:
			self.addBssSection(section)
		case layout.KindStack:
			self.addStackSection(section)
		case layout.KindHeap:
			self.addHeapSection(section)
		case layout.KindCustom:
			self.addCustomSection(section)
		default:
			panic("linker: unhandled section kind")
		}
	}

	self.addDiscardSection()

	self.programSymbols()
	self.memorySymbols()
	self.add(blockEnd{})
}

// Symbols emits the user-defined symbol assignments.
func (self *Builder) Symbols() {
	for _, sym := range self.cfg.Symbols {
		self.add(symbolDef{name: sym.Name, value: sym.Value})
	}
}

// Asserts emits per-memory bounds checks over the populated memories.
func (self *Builder) Asserts() {
	for _, m := range self.cfg.Memories {
		if m.IsEmpty() {
			continue
		}
		self.assert(
			fmt.Sprintf("%s <= %s", m.StartSymbol(), m.FirstSectionStartSymbol()),
			fmt.Sprintf("%s underflow", m.Name()),
		)
		self.assert(
			fmt.Sprintf("%s >= %s", m.EndSymbol(), m.LastSectionEndSymbol()),
			fmt.Sprintf("%s overflow", m.Name()),
		)
	}
}

func (self *Builder) Comment(text string) {
	self.add(comment{text: text})
}
