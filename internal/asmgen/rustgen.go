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

package asmgen

import (
	"fmt"

	"github.com/cloudwego/rvgen/internal/frame"
	"github.com/cloudwego/rvgen/internal/rust"
)

func generateRustId(b *rust.Builder, rustFnName, asmFnName string) {
	b.NewCExtern()
	b.FuncPrototype(asmFnName, nil, "usize")
	b.EndExtern()

	b.NewFuncWithRet(rustFnName, "usize")
	b.NewUnsafeBlock()
	b.CallWithRet(asmFnName)
	b.EndUnsafeBlock()
	b.EndFunc()
}

func rustMyIds(b *rust.Builder) {
	generateRustId(b, frame.FnBootId.RustFn(), frame.FnBootId.AsmFn())
	generateRustId(b, frame.FnHartId.RustFn(), frame.FnHartId.AsmFn())
}

func rustMyTrapFrameAddr(b *rust.Builder) {
	generateRustId(b, frame.FnTrapFrameAddr.RustFn(), frame.FnTrapFrameAddr.AsmFn())
}

func rustMyTpBlockAddr(b *rust.Builder) {
	generateRustId(b, frame.FnTpBlockAddr.RustFn(), frame.FnTpBlockAddr.AsmFn())
}

func rustGetRestTfLabel(b *rust.Builder) {
	generateRustId(b, frame.FnRestoreTrapFrame.RustFn(), frame.FnRestoreTrapFrame.AsmFn())
}

func rustTpBlockMut(b *rust.Builder, rt *frame.RtConfig) {
	structName := rt.TpBlock().StructName()

	b.NewFuncWithRet(frame.FnTpBlock.RustFn(), "&'static mut "+structName)
	b.NewUnsafeBlock()
	b.ImplicitRet(fmt.Sprintf("&mut *(%s() as *mut %s)", frame.FnTpBlockAddr.AsmFn(), structName))
	b.EndUnsafeBlock()
	b.EndFunc()
}

func rustTpBlockSlice(b *rust.Builder, rt *frame.RtConfig) {
	asmFn := frame.FnTpBlockBase.AsmFn()

	b.NewCExtern()
	b.FuncPrototype(asmFn, nil, "usize")
	b.EndExtern()

	b.NewFuncWithRet(frame.FnTpBlockSlice.RustFn(), fmt.Sprintf("&'static [%s]", rt.TpBlock().StructName()))
	b.NewUnsafeBlock()
	b.ImplicitRet(fmt.Sprintf("core::slice::from_raw_parts(%s() as *const _,%d)", asmFn, rt.MaxHartCount()))
	b.EndUnsafeBlock()
	b.EndFunc()
}

func rustSwitchTo(b *rust.Builder, argName string) {
	protArg := argName + ": usize"

	b.NewCExtern()
	b.FuncPrototype(frame.FnSwitchTo.AsmFn(), []string{protArg}, "")
	b.EndExtern()

	b.NewFuncWithArg(frame.FnSwitchTo.RustFn(), protArg)
	b.NewUnsafeBlock()
	b.CallWithoutRet(frame.FnSwitchTo.AsmFn(), argName)
	b.EndUnsafeBlock()
	b.EndFunc()
}

// rustHartidMap emits a linear lookup over the tp block slice translating
// one id namespace into the other.
func rustHartidMap(b *rust.Builder, fnName string, src, dst frame.TpBlockMember) {
	const idArg = "id"
	const tpElem = "tp"

	b.NewFuncWithArgAndRet(fnName, idArg+": usize", "Option<usize>")

	b.ForIter(tpElem, frame.FnTpBlockSlice.RustFn()+"()")
	b.IfEq(fmt.Sprintf("%s.%s()", tpElem, getterFuncName(src.String())), idArg)

	b.ExplicitRet(fmt.Sprintf("Some(%s.%s())", tpElem, getterFuncName(dst.String())))

	b.EndIf()
	b.EndFor()

	b.ImplicitRet("None")
	b.EndFunc()
}

func rustBootToHartId(b *rust.Builder) {
	rustHartidMap(b, "boot_to_hart_id", frame.BootId, frame.HartId)
}

func rustHartToBootId(b *rust.Builder) {
	rustHartidMap(b, "hart_to_boot_id", frame.HartId, frame.BootId)
}

func getterFuncName(memberName string) string {
	return "get_" + memberName
}

func setterFuncName(memberName string) string {
	return "set_" + memberName
}

func defineGetter(b *rust.Builder, memberName string) {
	b.NewMethodWithRet(getterFuncName(memberName), "usize")
	b.GetSelfMember(memberName)
	b.EndMethod()
}

func defineSetter(b *rust.Builder, memberName string) {
	b.NewMethodSelfMutWithArg(setterFuncName(memberName), "val: usize")
	b.SetSelfMember(memberName, "val")
	b.EndMethod()
}

func defineStruct(b *rust.Builder, name string, members []string, defineResetFunc bool) {
	b.NewStruct(name)
	for _, member := range members {
		b.NewStructField(member, "usize")
	}
	b.EndStruct()

	b.NewImpl(name)
	for _, member := range members {
		defineGetter(b, member)
		defineSetter(b, member)
	}

	if defineResetFunc {
		// Helper for zeroing the whole struct.
		b.NewMethodSelfMut("reset")

		for _, member := range members {
			b.CallWithoutRet("self."+setterFuncName(member), "0")
		}

		b.EndMethod()
	}

	b.EndImpl()
}

func defineTrapframeHelper(b *rust.Builder, rt *frame.RtConfig) {
	structName := rt.TrapFrame().StructName()

	b.NewFuncWithRet("trapframe", "&'static mut "+structName)
	b.NewUnsafeBlock()
	b.ImplicitRet(fmt.Sprintf("&mut *(super::%s() as *mut %s)", frame.FnTrapFrameAddr.RustFn(), structName))
	b.EndUnsafeBlock()
	b.EndFunc()
}

func generateRtFlagsEnum(b *rust.Builder) {
	b.NewEnum("RtFlags", "u32")
	b.EnumCaseValue("RestoreTrapFrameInTpBlock", frame.RestoreTrapFrameInTpBlock.Mask())
	b.EnumCaseValue("FsStateWasDirty", frame.FsStateWasDirty.Mask())
	b.EnumCaseValue("TranslationRegChanged", frame.TranslationRegChanged.Mask())
	b.EndEnum()
}

func writeTpblockRustHelpers(b *rust.Builder, rt *frame.RtConfig) {
	rustMyIds(b)
	rustMyTrapFrameAddr(b)
	rustMyTpBlockAddr(b)
	rustGetRestTfLabel(b)
	rustTpBlockMut(b, rt)
	rustTpBlockSlice(b, rt)
	rustBootToHartId(b)
	rustHartToBootId(b)
	rustSwitchTo(b, "ctx")
}
