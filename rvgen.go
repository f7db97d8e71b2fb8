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

// Package rvgen generates the bare-metal runtime scaffolding of a RISC-V
// program at build time: a linker script, the boot/trap/context-switch
// assembly and Rust companion sources with typed accessors, all derived from
// a declarative target description.
package rvgen

import (
	"github.com/cloudwego/rvgen/internal/asmgen"
	"github.com/cloudwego/rvgen/internal/frame"
	"github.com/cloudwego/rvgen/internal/layout"
	"github.com/cloudwego/rvgen/internal/linker"
	"github.com/cloudwego/rvgen/internal/rust"
)

// RuntimeConfig bundles everything needed to generate one runtime: the two
// output directories plus the linker and runtime configurations. Both
// directories must exist before writing.
type RuntimeConfig struct {
	RtDir        string
	LinkerDir    string
	LinkerConfig *layout.LinkerConfig
	RtConfig     *frame.RtConfig
}

// WriteRuntimeFiles emits the linker script, consts.rs, boot.S and its Rust
// companions into the configured directories.
func WriteRuntimeFiles(cfg *RuntimeConfig, crateType rust.CrateType) error {
	if err := linker.WriteLinkerFiles(cfg.LinkerDir, cfg.LinkerConfig, crateType); err != nil {
		return err
	}
	return asmgen.WriteRtFiles(cfg.RtDir, cfg.RtConfig, crateType)
}

// WriteRuntimeFilesAsModule emits mod.rs roots, for output embedded as a
// module of an existing crate.
func WriteRuntimeFilesAsModule(cfg *RuntimeConfig) error {
	return WriteRuntimeFiles(cfg, rust.Module)
}

// WriteRuntimeFilesAsLibrary emits lib.rs roots, for output forming a crate
// of its own.
func WriteRuntimeFilesAsLibrary(cfg *RuntimeConfig) error {
	return WriteRuntimeFiles(cfg, rust.Library)
}
