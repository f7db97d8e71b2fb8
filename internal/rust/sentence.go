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

// Package rust emits the companion Rust sources. Emission is two-phase: the
// builder records typed sentences, rendering turns them into lines.
package rust

import (
	"fmt"
	"strings"

	"github.com/cloudwego/rvgen/internal/writer"
)

// Sentence is one renderable element of a Rust source file.
type Sentence interface {
	render(w *writer.Writer)
}

type structStart struct{ name string }

func (self structStart) render(w *writer.Writer) {
	w.AddLine("#[repr(C)]")
	w.AddLine("#[derive(Debug, Copy, Clone)]")
	w.NewBlock("pub struct " + self.name)
}

type blockEnd struct{}

func (self blockEnd) render(w *writer.Writer) {
	w.EndBlock()
}

type structField struct{ name, ty string }

func (self structField) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("pub %s: %s,", self.name, self.ty))
}

type methodStart struct {
	name    string
	mutSelf bool
	arg     string
	ret     string
}

func (self methodStart) render(w *writer.Writer) {
	w.AddLine("#[allow(dead_code, non_snake_case)]")
	recv := "&self"
	if self.mutSelf {
		recv = "&mut self"
	}
	arg := ""
	if self.arg != "" {
		arg = ", " + self.arg
	}
	ret := ""
	if self.ret != "" {
		ret = " -> " + self.ret
	}
	w.NewBlock(fmt.Sprintf("pub fn %s(%s%s)%s", self.name, recv, arg, ret))
}

type funcStart struct {
	name string
	arg  string
	ret  string
}

func (self funcStart) render(w *writer.Writer) {
	w.AddLine("#[allow(dead_code, non_snake_case)]")
	ret := ""
	if self.ret != "" {
		ret = " -> " + self.ret
	}
	w.NewBlock(fmt.Sprintf("pub fn %s(%s)%s", self.name, self.arg, ret))
}

type implStart struct{ name string }

func (self implStart) render(w *writer.Writer) {
	w.NewBlock("impl " + self.name)
}

type getSelfMember struct{ name string }

func (self getSelfMember) render(w *writer.Writer) {
	w.AddLine("self." + self.name)
}

type setSelfMember struct{ name, param string }

func (self setSelfMember) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("self.%s = %s;", self.name, self.param))
}

type externStart struct{ abi string }

func (self externStart) render(w *writer.Writer) {
	w.NewBlock(fmt.Sprintf("extern %q", self.abi))
}

type staticDef struct{ name, ty string }

func (self staticDef) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("static %s: %s;", self.name, self.ty))
}

type addrOf struct{ symbol string }

func (self addrOf) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("(addr_of!(%s)) as usize", self.symbol))
}

type useDecl struct{ path string }

func (self useDecl) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("use %s;", self.path))
}

type sub struct{ left, right string }

func (self sub) render(w *writer.Writer) {
	w.AddLine(self.left + " - " + self.right)
}

type funcPrototype struct {
	name string
	args []string
	ret  string
}

func (self funcPrototype) render(w *writer.Writer) {
	ret := ""
	if self.ret != "" {
		ret = " -> " + self.ret
	}
	w.AddLine(fmt.Sprintf("fn %s(%s)%s;", self.name, strings.Join(self.args, ","), ret))
}

type unsafeStart struct{}

func (self unsafeStart) render(w *writer.Writer) {
	w.NewBlock("unsafe")
}

type call struct {
	name      string
	args      []string
	discarded bool
}

func (self call) render(w *writer.Writer) {
	line := fmt.Sprintf("%s(%s)", self.name, strings.Join(self.args, ","))
	if self.discarded {
		line += ";"
	}
	w.AddLine(line)
}

type implicitRet struct{ value string }

func (self implicitRet) render(w *writer.Writer) {
	w.AddLine(self.value)
}

type explicitRet struct{ value string }

func (self explicitRet) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("return %s;", self.value))
}

type forIter struct{ elem, iter string }

func (self forIter) render(w *writer.Writer) {
	w.NewBlock(fmt.Sprintf("for %s in %s", self.elem, self.iter))
}

type ifEq struct{ left, right string }

func (self ifEq) render(w *writer.Writer) {
	w.NewBlock(fmt.Sprintf("if %s == %s", self.left, self.right))
}

type comment struct{ text string }

func (self comment) render(w *writer.Writer) {
	w.AddLine("// " + self.text)
}

type enumStart struct {
	name    string
	derives []string
	repr    string
}

func (self enumStart) render(w *writer.Writer) {
	if self.repr != "" {
		w.AddLine(fmt.Sprintf("#[repr(%s)]", self.repr))
	}
	extra := ""
	if len(self.derives) > 0 {
		extra = ", " + strings.Join(self.derives, ", ")
	}
	w.AddLine(fmt.Sprintf("#[derive(Debug, Copy, Clone%s)]", extra))
	w.AddLine("#[allow(dead_code, non_snake_case)]")
	w.NewBlock("pub enum " + self.name)
}

type enumCaseValue struct {
	name  string
	value int
}

func (self enumCaseValue) render(w *writer.Writer) {
	w.AddLine(fmt.Sprintf("%s = 0x%x,", self.name, self.value))
}
