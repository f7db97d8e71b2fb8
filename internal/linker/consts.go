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

	"github.com/cloudwego/rvgen/internal/frame"
	"github.com/cloudwego/rvgen/internal/layout"
	"github.com/cloudwego/rvgen/internal/rust"
)

func regionStartFnName(region string) string {
	return region + "_region_start"
}

func regionEndFnName(region string) string {
	return region + "_region_end"
}

func regionSizeFnName(region string) string {
	return region + "_region_size"
}

func defineGetAddrOf(b *rust.Builder, fnName, symbol string) {
	b.NewFuncWithRet(fnName, "usize")
	b.AddrOf(symbol)
	b.EndFunc()
}

func defineSizeOf(b *rust.Builder, region string) {
	b.NewFuncWithRet(regionSizeFnName(region), "usize")
	b.Sub(regionEndFnName(region)+"()", regionStartFnName(region)+"()")
	b.EndFunc()
}

// defineStackForHart emits my_stack(), returning the calling hart's stack
// base and size.
func defineStackForHart(b *rust.Builder, cfg *layout.LinkerConfig) {
	asmFnBootId := frame.FnBootId.AsmFn()

	b.NewCExtern()
	b.FuncPrototype(asmFnBootId, nil, "usize")
	b.EndExtern()

	b.NewFuncWithRet("my_stack", "(usize, usize)")
	b.NewUnsafeBlock()
	b.ImplicitRet(fmt.Sprintf(
		"(%s() - 0x%x * (%s() + 1), 0x%x)",
		regionEndFnName(layout.Stack.Name()),
		cfg.HartStackSize(),
		asmFnBootId,
		cfg.HartStackSize(),
	))
	b.EndUnsafeBlock()
	b.EndFunc()
}

// buildConstsRs assembles the typed accessors for every section, memory and
// the program image.
func buildConstsRs(cfg *layout.LinkerConfig) *rust.Builder {
	b := rust.NewBuilder()

	b.NewUse("core::ptr::addr_of")

	sectionTypes := cfg.SectionTypes()

	b.NewCExtern()
	for _, sty := range sectionTypes {
		b.StaticDef(sty.StartSymbol(), "usize")
		b.StaticDef(sty.EndSymbol(), "usize")
	}
	for _, m := range cfg.Memories {
		b.StaticDef(m.StartSymbol(), "usize")
		b.StaticDef(m.EndSymbol(), "usize")
	}
	b.StaticDef(layout.ProgramStartSymbol, "usize")
	b.StaticDef(layout.ProgramEndSymbol, "usize")
	b.EndExtern()

	for _, sty := range sectionTypes {
		defineGetAddrOf(b, regionStartFnName(sty.Name()), sty.StartSymbol())
		defineGetAddrOf(b, regionEndFnName(sty.Name()), sty.EndSymbol())
		defineSizeOf(b, sty.Name())
	}

	for _, m := range cfg.Memories {
		defineGetAddrOf(b, regionStartFnName(m.Name()), m.StartSymbol())
		defineGetAddrOf(b, regionEndFnName(m.Name()), m.EndSymbol())
		defineSizeOf(b, m.Name())
	}

	const program = "program"
	defineGetAddrOf(b, regionStartFnName(program), layout.ProgramStartSymbol)
	defineGetAddrOf(b, regionEndFnName(program), layout.ProgramEndSymbol)
	defineSizeOf(b, program)

	defineStackForHart(b, cfg)

	return b
}
