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

// Package asmgen emits the boot, trap and context-switch assembly plus its
// Rust companions. Sentences carry operands only; the word width and the
// privilege-mode CSR names resolve at render time from the runtime config.
package asmgen

import (
	"fmt"

	"github.com/cloudwego/rvgen/internal/frame"
	"github.com/cloudwego/rvgen/internal/riscv"
	"github.com/cloudwego/rvgen/internal/writer"
)

// Sentence is one renderable element of the assembly file.
type Sentence interface {
	render(w *writer.Writer, rt *frame.RtConfig)
}

type section struct {
	name  string
	flags string
}

func (self section) render(w *writer.Writer, rt *frame.RtConfig) {
	if self.flags != "" {
		w.AddLine(fmt.Sprintf(".section %s, %q", self.name, self.flags))
	} else {
		w.AddLine(".section " + self.name)
	}
}

type endSection struct{}

func (self endSection) render(w *writer.Writer, rt *frame.RtConfig) {
	w.BlankLine()
}

type globalEntrypoint struct{ name string }

func (self globalEntrypoint) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(".global " + self.name)
	w.Label(self.name)
}

type csrw struct {
	csr riscv.Csr
	rs  riscv.Reg
}

func (self csrw) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("csrw %s, %s", self.csr.AddressOrName(rt.Mode()), self.rs))
}

type csrs struct {
	csr riscv.Csr
	rs  riscv.Reg
}

func (self csrs) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("csrs %s, %s", self.csr.AddressOrName(rt.Mode()), self.rs))
}

type csrc struct {
	csr riscv.Csr
	rs  riscv.Reg
}

func (self csrc) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("csrc %s, %s", self.csr.AddressOrName(rt.Mode()), self.rs))
}

type csrr struct {
	rd  riscv.Reg
	csr riscv.Csr
}

func (self csrr) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("csrr %s, %s", self.rd, self.csr.AddressOrName(rt.Mode())))
}

type csrrw struct {
	rd  riscv.Reg
	csr riscv.Csr
	rs  riscv.Reg
}

func (self csrrw) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("csrrw %s, %s, %s", self.rd, self.csr.Name(rt.Mode()), self.rs))
}

type option struct{ name string }

func (self option) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(".option " + self.name)
}

type la struct {
	rd     riscv.Reg
	symbol string
}

func (self la) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("la %s, %s", self.rd, self.symbol))
}

type li struct {
	rd  riscv.Reg
	imm int
}

func (self li) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("li %s, %d", self.rd, self.imm))
}

type branch struct {
	op       string
	rs1, rs2 riscv.Reg
	label    string
}

func (self branch) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("%s %s, %s, %s", self.op, self.rs1, self.rs2, self.label))
}

type branchZero struct {
	op    string
	rs    riscv.Reg
	label string
}

func (self branchZero) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("%s %s, %s", self.op, self.rs, self.label))
}

type label struct{ name string }

func (self label) render(w *writer.Writer, rt *frame.RtConfig) {
	w.Label(self.name)
}

type sfence struct{ rs1, rs2 riscv.Reg }

func (self sfence) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("sfence.vma %s, %s", self.rs1, self.rs2))
}

type store struct {
	rs2, rs1 riscv.Reg
	offset   int
}

func (self store) render(w *writer.Writer, rt *frame.RtConfig) {
	if self.offset == 0 {
		w.AddLine(fmt.Sprintf("s%s %s, (%s)", rt.WordSuffix(), self.rs2, self.rs1))
	} else {
		w.AddLine(fmt.Sprintf("s%s %s, %d(%s)", rt.WordSuffix(), self.rs2, self.offset, self.rs1))
	}
}

type load struct {
	rd, rs riscv.Reg
	offset int
}

func (self load) render(w *writer.Writer, rt *frame.RtConfig) {
	if self.offset == 0 {
		w.AddLine(fmt.Sprintf("l%s %s, (%s)", rt.WordSuffix(), self.rd, self.rs))
	} else {
		w.AddLine(fmt.Sprintf("l%s %s, %d(%s)", rt.WordSuffix(), self.rd, self.offset, self.rs))
	}
}

type immOp struct {
	op     string
	rd, rs riscv.Reg
	imm    int
}

func (self immOp) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("%s %s, %s, %d", self.op, self.rd, self.rs, self.imm))
}

type regOp struct {
	op           string
	rd, rs1, rs2 riscv.Reg
}

func (self regOp) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("%s %s, %s, %s", self.op, self.rd, self.rs1, self.rs2))
}

type fstore struct {
	rs2    riscv.FReg
	rs1    riscv.Reg
	offset int
}

func (self fstore) render(w *writer.Writer, rt *frame.RtConfig) {
	if self.offset == 0 {
		w.AddLine(fmt.Sprintf("fs%s %s, (%s)", rt.WordSuffix(), self.rs2, self.rs1))
	} else {
		w.AddLine(fmt.Sprintf("fs%s %s, %d(%s)", rt.WordSuffix(), self.rs2, self.offset, self.rs1))
	}
}

type fload struct {
	rd     riscv.FReg
	rs     riscv.Reg
	offset int
}

func (self fload) render(w *writer.Writer, rt *frame.RtConfig) {
	if self.offset == 0 {
		w.AddLine(fmt.Sprintf("fl%s %s, (%s)", rt.WordSuffix(), self.rd, self.rs))
	} else {
		w.AddLine(fmt.Sprintf("fl%s %s, %d(%s)", rt.WordSuffix(), self.rd, self.offset, self.rs))
	}
}

type moveToFloat struct {
	fd riscv.FReg
	rs riscv.Reg
}

func (self moveToFloat) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("fmv.d.x %s, %s", self.fd, self.rs))
}

type wfi struct{}

func (self wfi) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine("wfi")
}

type jump struct {
	op    string
	label string
}

func (self jump) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("%s %s", self.op, self.label))
}

type jr struct{ rs riscv.Reg }

func (self jr) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine("jr " + self.rs.String())
}

type jalr struct {
	rd, rs1 riscv.Reg
	offset  int
}

func (self jalr) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("jalr %s, %s, %d", self.rd, self.rs1, self.offset))
}

type comment struct{ text string }

func (self comment) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine("// " + self.text)
}

type dword struct{ val uint64 }

func (self dword) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf(".dword %d", self.val))
}

type word struct{ val uint32 }

func (self word) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf(".word %d", self.val))
}

type amoadd struct{ rd, rs1, rs2 riscv.Reg }

func (self amoadd) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("amoadd.%s %s, %s, (%s)", rt.WordSuffix(), self.rd, self.rs2, self.rs1))
}

type sc struct{ rd, rs2, rs1 riscv.Reg }

func (self sc) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf("sc.%s %s, %s, (%s)", rt.WordSuffix(), self.rd, self.rs2, self.rs1))
}

type ret struct{}

func (self ret) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine("ret")
}

type modeRet struct{}

func (self modeRet) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(rt.Mode().String() + "ret")
}

type rept struct{ count int }

func (self rept) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf(".rept %d", self.count))
}

type endRept struct{}

func (self endRept) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(".endr")
}

type alignBytes struct{ alignment int }

func (self alignBytes) render(w *writer.Writer, rt *frame.RtConfig) {
	w.BlankLine()
	w.AddLine(fmt.Sprintf(".align %d", self.alignment))
}

type attribute struct{ name, value string }

func (self attribute) render(w *writer.Writer, rt *frame.RtConfig) {
	w.AddLine(fmt.Sprintf(".attribute %s, %q", self.name, self.value))
}
