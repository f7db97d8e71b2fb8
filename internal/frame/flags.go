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

// Package frame defines the saved-state records the generated runtime keeps
// per hart: the trap frame, the per-hart tp block and the thread context,
// with offsets resolved from declared member order.
package frame

// RtFlag is one bit position in the rt_flags word. The word is 32 bits wide
// so the same layout serves RV32 and RV64.
type RtFlag uint8

const (
	// RestoreTrapFrameInTpBlock marks a frame whose pop must write the
	// previous frame address back into the tp block. Set on recursive trap
	// entry and on context switch, where the current-frame pointer in the
	// tp block would otherwise go stale on the return path.
	RestoreTrapFrameInTpBlock RtFlag = 0

	// FsStateWasDirty records that the FP unit held unsaved state when the
	// trap was taken, so the restore path must reload the FP registers.
	FsStateWasDirty RtFlag = 1

	// TranslationRegChanged marks a frame whose restore changes address
	// translation or protection registers, requiring an sfence.vma.
	TranslationRegChanged RtFlag = 2

	maxRtFlag RtFlag = 31
)

// Mask returns the flag as a single-bit mask.
func (self RtFlag) Mask() int {
	if self > maxRtFlag {
		panic("frame: rt flag bit out of range")
	}
	return 1 << self
}
