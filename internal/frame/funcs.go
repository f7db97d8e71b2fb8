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

package frame

// GeneratedFunc identifies one function the generator emits an assembly
// implementation and a Rust wrapper for. The wrapper carries the plain
// name; the assembly symbol gets a double-underscore prefix.
type GeneratedFunc int

const (
	FnBootId GeneratedFunc = iota
	FnHartId
	FnTpBlockAddr
	FnTrapFrameAddr
	FnTpBlockBase
	FnTpBlockSlice
	FnTpBlock
	FnSwitchTo
	FnRestoreTrapFrame
)

var generatedFuncNames = map[GeneratedFunc]string{
	FnBootId:           "my_boot_id",
	FnHartId:           "my_hart_id",
	FnTpBlockAddr:      "my_tpblock_addr",
	FnTrapFrameAddr:    "my_trap_frame_addr",
	FnTpBlockBase:      "tpblock_base",
	FnTpBlockSlice:     "tp_block_slice",
	FnTpBlock:          "my_tpblock_mut",
	FnSwitchTo:         "switch_to",
	FnRestoreTrapFrame: "get_restore_tf_label",
}

// AsmFn returns the assembly-level symbol of the function.
func (self GeneratedFunc) AsmFn() string {
	return "__" + self.RustFn()
}

// RustFn returns the Rust-level name of the function.
func (self GeneratedFunc) RustFn() string {
	name, ok := generatedFuncNames[self]
	if !ok {
		panic("frame: unknown generated function")
	}
	return name
}
