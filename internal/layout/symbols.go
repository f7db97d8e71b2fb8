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

package layout

// Well-known symbols and sections shared between the linker script and the
// generated assembly.
const (
	StartSymbol         = "_start"
	ProgramStartSymbol  = "_sprogram"
	ProgramEndSymbol    = "_eprogram"
	StackTopSymbol      = "_stack_top"
	GlobalPointerSymbol = "_global_pointer"

	ResetSection       = ".text.entry"
	CustomResetSection = ".text.custom_reset_entry"
)

// TextDefaultSection is the first conventional text input section; the
// generated assembly places ordinary code there.
func TextDefaultSection() string {
	return Text.DefaultInputSections()[0]
}

func DataDefaultSection() string {
	return Data.DefaultInputSections()[0]
}
