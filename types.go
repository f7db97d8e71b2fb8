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

package rvgen

import (
	"github.com/cloudwego/rvgen/internal/frame"
	"github.com/cloudwego/rvgen/internal/layout"
	"github.com/cloudwego/rvgen/internal/rust"
	"github.com/cloudwego/rvgen/internal/target"
)

// Memory sizes.
const (
	KiB = layout.KiB
	MiB = layout.MiB
)

// Target description.
type (
	Mode       = target.Mode
	Xlen       = target.Xlen
	HartConfig = target.HartConfig
	MemConfig  = target.MemConfig
	Config     = target.Config
)

const (
	MachineMode    = target.MachineMode
	SupervisorMode = target.SupervisorMode

	Xlen32 = target.Xlen32
	Xlen64 = target.Xlen64
)

// Memory map.
type (
	MemoryAttribs = layout.MemoryAttribs
	SubRegion     = layout.SubRegion
	MemoryRegion  = layout.MemoryRegion
)

var (
	AttribsR   = layout.AttribsR
	AttribsW   = layout.AttribsW
	AttribsRW  = layout.AttribsRW
	AttribsX   = layout.AttribsX
	AttribsRX  = layout.AttribsRX
	AttribsRWX = layout.AttribsRWX

	NewSubRegion      = layout.NewSubRegion
	NewNapotSubRegion = layout.NewNapotSubRegion

	NewMemoryRegion      = layout.NewMemoryRegion
	NewNapotMemoryRegion = layout.NewNapotMemoryRegion
)

// Program layout.
type (
	SectionType    = layout.SectionType
	Section        = layout.Section
	SubSection     = layout.SubSection
	StackAlignment = layout.StackAlignment
	StackLocation  = layout.StackLocation
	Symbol         = layout.Symbol
	LinkerConfig   = layout.LinkerConfig
)

var (
	Text   = layout.Text
	Data   = layout.Data
	Rodata = layout.Rodata
	Bss    = layout.Bss
	Heap   = layout.Heap
	Stack  = layout.Stack

	CustomSection = layout.CustomSection
	NewSection    = layout.NewSection
	NewSubSection = layout.NewSubSection
	NewSymbol     = layout.NewSymbol

	StackInBss           = layout.StackInBss
	StackSeparateSection = layout.StackSeparateSection

	NewLinkerConfig = layout.NewLinkerConfig
)

const (
	DefaultAlign = layout.DefaultAlign
	NaturalAlign = layout.NaturalAlign
)

// Runtime description.
type (
	EntrypointType = frame.EntrypointType
	Entrypoints    = frame.Entrypoints
	Features       = frame.Features
	TrapFrame      = frame.TrapFrame
	TpBlock        = frame.TpBlock
	ThreadContext  = frame.ThreadContext
	RtConfig       = frame.RtConfig
)

const (
	BootHartEntry      = frame.BootHartEntry
	NonBootHartEntry   = frame.NonBootHartEntry
	TrapEntry          = frame.TrapEntry
	CustomResetEntry   = frame.CustomResetEntry
	StackOverflowEntry = frame.StackOverflowEntry
)

var (
	DefaultTrapFrame     = frame.DefaultTrapFrame
	DefaultTpBlock       = frame.DefaultTpBlock
	DefaultThreadContext = frame.DefaultThreadContext
	NewRtConfig          = frame.NewRtConfig
)

// Construction errors, for callers that want to discriminate.
type (
	GeometryError     = layout.GeometryError
	LayoutConfigError = layout.ConfigError
	RtConfigError     = frame.ConfigError
)

// Output flavor.
type CrateType = rust.CrateType

const (
	Module  = rust.Module
	Library = rust.Library
)
