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

// Package linker emits the linker script and its Rust constants companion
// from a validated layout.
package linker

import (
	"fmt"

	"github.com/cloudwego/rvgen/internal/layout"
	"github.com/cloudwego/rvgen/internal/writer"
)

const outputArchRiscv = "riscv"

// Sentence is one renderable element of the linker script.
type Sentence interface {
	render(w *writer.Writer)
}

type outputArch struct{ arch string }

func (self outputArch) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("OUTPUT_ARCH(%s)", self.arch))
}

type entry struct{ symbol string }

func (self entry) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("ENTRY(%s)", self.symbol))
}

type memoryTable struct{ memories []*layout.Memory }

func (self memoryTable) render(w *writer.Writer) {
	w.NewBlock("MEMORY")
	for _, m := range self.memories {
		w.AddLine(m.String())
	}
	w.EndBlock()
}

type sectionsStart struct{}

func (self sectionsStart) render(w *writer.Writer) {
	w.NewBlock("SECTIONS")
}

type blockEnd struct{}

func (self blockEnd) render(w *writer.Writer) {
	w.EndBlock()
}

type outputSectionStart struct {
	name        string
	noload      bool
	alignment   int
	loadAddress string
}

func (self outputSectionStart) render(w *writer.Writer) {
	noload := ""
	if self.noload {
		noload = "(NOLOAD)"
	}
	loadAddr := ""
	if self.loadAddress != "" {
		loadAddr = fmt.Sprintf("AT(%s) ", self.loadAddress)
	}
	w.NewBlock(fmt.Sprintf("%s %s: %sALIGN(%d)", self.name, noload, loadAddr, self.alignment))
}

type outputSectionEnd struct{ targetMemory string }

func (self outputSectionEnd) render(w *writer.Writer) {
	w.EndBlockWithSuffix(">" + self.targetMemory)
}

type inputSections struct {
	sections string
	keep     bool
}

func (self inputSections) render(w *writer.Writer) {
	if self.keep {
		w.AddLine(fmt.Sprintf("KEEP(*(%s))", self.sections))
	} else {
		w.AddLine(fmt.Sprintf("*(%s)", self.sections))
	}
}

type setRelativeToLocationCounter struct {
	symbol string
	offset int
}

func (self setRelativeToLocationCounter) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("%s = . + 0x%x;", self.symbol, self.offset))
}

type setToCurrent struct{ symbol string }

func (self setToCurrent) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("%s = .;", self.symbol))
}

type setToValue struct {
	symbol string
	value  int
}

func (self setToValue) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("%s = 0x%x;", self.symbol, self.value))
}

type setToSymbol struct{ symbol, value string }

func (self setToSymbol) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("%s = %s;", self.symbol, self.value))
}

type advanceLocationCounter struct{ size int }

func (self advanceLocationCounter) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf(". += 0x%x;", self.size))
}

type align struct{ alignment int }

func (self align) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf(". = ALIGN(%d);", self.alignment))
}

type assert struct{ cond, errorMsg string }

func (self assert) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("ASSERT(%s, %q)", self.cond, self.errorMsg))
}

type discardStart struct{}

func (self discardStart) render(w *writer.Writer) {
	w.NewBlock("/DISCARD/ :")
}

type symbolDef struct{ name, value string }

func (self symbolDef) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("%s = %s;", self.name, self.value))
}

type comment struct{ text string }

func (self comment) render(w *writer.Writer) {
	w.AddLine("# " + self.text)
}
