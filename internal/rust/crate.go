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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudwego/rvgen/internal/writer"
)

// CrateType says whether an output directory is consumed as a module of a
// larger crate or as a crate root of its own.
type CrateType int

const (
	Module CrateType = iota
	Library
)

func (self CrateType) filename() string {
	switch self {
	case Module:
		return "mod.rs"
	case Library:
		return "lib.rs"
	default:
		panic("rust: invalid crate type")
	}
}

func (self CrateType) isLibrary() bool {
	return self == Library
}

// NewRootWriter opens the root source file (mod.rs or lib.rs) of an output
// directory. Library roots declare no_std; module roots inherit it from the
// real crate root.
func NewRootWriter(dir string, crateType CrateType) *writer.Writer {
	w := writer.New(filepath.Join(dir, crateType.filename()), writer.Braces)
	w.AddLine("// " + writer.Banner)
	if crateType.isLibrary() {
		w.AddLine("#![no_std]")
		w.AddLine("#![allow(unused_imports)]")
	}
	return w
}

// AddModule declares and re-exports a sibling source file in the root.
func AddModule(root *writer.Writer, path string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	root.AddLine(fmt.Sprintf("mod %s;", name))
	root.AddLine(fmt.Sprintf("pub use %s::*;", name))
}
