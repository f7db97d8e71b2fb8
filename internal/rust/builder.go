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

package rust

import (
	"github.com/cloudwego/rvgen/internal/writer"
)

// Builder accumulates Rust sentences for one output file.
type Builder struct {
	sentences []Sentence
}

func NewBuilder() *Builder {
	b := new(Builder)
	b.Comment(writer.Banner)
	return b
}

// Generate renders all recorded sentences into the writer.
func (self *Builder) Generate(w *writer.Writer) {
	for _, s := range self.sentences {
		s.render(w)
	}
}

func (self *Builder) add(s Sentence) {
	self.sentences = append(self.sentences, s)
}

func (self *Builder) NewStruct(name string) {
	self.add(structStart{name: name})
}

func (self *Builder) NewStructField(name, ty string) {
	self.add(structField{name: name, ty: ty})
}

func (self *Builder) EndStruct() {
	self.add(blockEnd{})
}

func (self *Builder) NewMethodWithRet(name, ret string) {
	self.add(methodStart{name: name, ret: ret})
}

func (self *Builder) NewMethodSelfMutWithArg(name, arg string) {
	self.add(methodStart{name: name, mutSelf: true, arg: arg})
}

func (self *Builder) NewMethodSelfMut(name string) {
	self.add(methodStart{name: name, mutSelf: true})
}

func (self *Builder) EndMethod() {
	self.add(blockEnd{})
}

func (self *Builder) NewFuncWithRet(name, ret string) {
	self.add(funcStart{name: name, ret: ret})
}

func (self *Builder) NewFuncWithArgAndRet(name, arg, ret string) {
	self.add(funcStart{name: name, arg: arg, ret: ret})
}

func (self *Builder) NewFuncWithArg(name, arg string) {
	self.add(funcStart{name: name, arg: arg})
}

func (self *Builder) EndFunc() {
	self.add(blockEnd{})
}

func (self *Builder) NewImpl(name string) {
	self.add(implStart{name: name})
}

func (self *Builder) EndImpl() {
	self.add(blockEnd{})
}

func (self *Builder) GetSelfMember(name string) {
	self.add(getSelfMember{name: name})
}

func (self *Builder) SetSelfMember(name, param string) {
	self.add(setSelfMember{name: name, param: param})
}

func (self *Builder) NewCExtern() {
	self.add(externStart{abi: "C"})
}

func (self *Builder) EndExtern() {
	self.add(blockEnd{})
}

func (self *Builder) StaticDef(name, ty string) {
	self.add(staticDef{name: name, ty: ty})
}

func (self *Builder) FuncPrototype(name string, args []string, ret string) {
	self.add(funcPrototype{name: name, args: args, ret: ret})
}

func (self *Builder) AddrOf(symbol string) {
	self.add(addrOf{symbol: symbol})
}

func (self *Builder) NewUse(path string) {
	self.add(useDecl{path: path})
}

func (self *Builder) Sub(left, right string) {
	self.add(sub{left: left, right: right})
}

func (self *Builder) NewUnsafeBlock() {
	self.add(unsafeStart{})
}

func (self *Builder) EndUnsafeBlock() {
	self.add(blockEnd{})
}

// CallWithRet emits a call whose value is the enclosing expression.
func (self *Builder) CallWithRet(name string, args ...string) {
	self.add(call{name: name, args: args})
}

// CallWithoutRet emits a call as a statement.
func (self *Builder) CallWithoutRet(name string, args ...string) {
	self.add(call{name: name, args: args, discarded: true})
}

func (self *Builder) ImplicitRet(value string) {
	self.add(implicitRet{value: value})
}

func (self *Builder) ExplicitRet(value string) {
	self.add(explicitRet{value: value})
}

func (self *Builder) ForIter(elem, iter string) {
	self.add(forIter{elem: elem, iter: iter})
}

func (self *Builder) EndFor() {
	self.add(blockEnd{})
}

func (self *Builder) IfEq(left, right string) {
	self.add(ifEq{left: left, right: right})
}

func (self *Builder) EndIf() {
	self.add(blockEnd{})
}

func (self *Builder) Comment(text string) {
	self.add(comment{text: text})
}

func (self *Builder) NewEnum(name, repr string) {
	self.add(enumStart{name: name, repr: repr})
}

func (self *Builder) EndEnum() {
	self.add(blockEnd{})
}

func (self *Builder) EnumCaseValue(name string, value int) {
	self.add(enumCaseValue{name: name, value: value})
}
