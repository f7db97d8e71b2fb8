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

// Package writer implements the block-structured line writer shared by all
// emitters. It buffers everything in memory and only touches the disk on
// Flush, so a generation failure never leaves a partial artifact behind.
package writer

import (
	"os"
	"strings"

	"github.com/oleiade/lane"
)

// Banner is prepended (as a comment) to every generated file.
const Banner = "Code generated by rvgen. DO NOT EDIT."

const indentUnit = "    "

// BlockDelimiter selects how opened blocks are rendered.
type BlockDelimiter int

const (
	// Braces renders blocks as "header {" ... "}". Used for linker scripts
	// and Rust sources.
	Braces BlockDelimiter = iota

	// None tracks block nesting without emitting delimiters. Used for
	// assembly, where sections have no closing token.
	None
)

// Writer accumulates indented lines for a single output file.
type Writer struct {
	path   string
	delim  BlockDelimiter
	lines  []string
	blocks *lane.Stack
}

func New(path string, delim BlockDelimiter) *Writer {
	return &Writer{
		path:   path,
		delim:  delim,
		blocks: lane.NewStack(),
	}
}

func (self *Writer) indent() string {
	if self.delim == None {
		// Assembly files use one fixed level so instructions line up under
		// their labels regardless of section nesting.
		return indentUnit
	}
	return strings.Repeat(indentUnit, self.blocks.Size())
}

// AddLine appends one line at the current indentation.
func (self *Writer) AddLine(s string) {
	if s == "" {
		self.BlankLine()
		return
	}
	self.lines = append(self.lines, self.indent()+s)
}

// BlankLine appends an empty separator line.
func (self *Writer) BlankLine() {
	self.lines = append(self.lines, "")
}

// Label emits "name:" flush against the left margin.
func (self *Writer) Label(name string) {
	self.lines = append(self.lines, name+":")
}

// NewBlock opens a block headed by the given text.
func (self *Writer) NewBlock(header string) {
	if self.delim == Braces {
		self.AddLine(header + " {")
	} else if header != "" {
		self.AddLine(header)
	}
	self.blocks.Push(header)
}

// EndBlock closes the innermost open block.
func (self *Writer) EndBlock() {
	self.EndBlockWithSuffix("")
}

// EndBlockWithSuffix closes the innermost open block, appending a trailing
// suffix to the closing delimiter (e.g. the ">ram" memory assignment of a
// linker output section).
func (self *Writer) EndBlockWithSuffix(suffix string) {
	if self.blocks.Empty() {
		panic("writer: unbalanced block close")
	}
	self.blocks.Pop()
	if self.delim == Braces {
		if suffix != "" {
			self.AddLine("} " + suffix)
		} else {
			self.AddLine("}")
		}
	} else {
		self.BlankLine()
	}
}

// String returns the buffered content without writing it anywhere.
func (self *Writer) String() string {
	return strings.Join(self.lines, "\n") + "\n"
}

// Flush writes the buffered content to the writer's path.
func (self *Writer) Flush() error {
	if !self.blocks.Empty() {
		panic("writer: flush with unclosed blocks")
	}
	return os.WriteFile(self.path, []byte(self.String()), 0644)
}
