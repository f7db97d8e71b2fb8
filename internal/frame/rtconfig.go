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

import (
	"fmt"

	"github.com/cloudwego/rvgen/internal/riscv"
	"github.com/cloudwego/rvgen/internal/target"
)

// EntrypointType names a Rust function the generated runtime hands control
// to.
type EntrypointType int

const (
	BootHartEntry EntrypointType = iota
	NonBootHartEntry
	TrapEntry
	CustomResetEntry
	StackOverflowEntry
)

func (self EntrypointType) String() string {
	switch self {
	case BootHartEntry:
		return "boot hart"
	case NonBootHartEntry:
		return "non-boot hart"
	case TrapEntry:
		return "trap"
	case CustomResetEntry:
		return "custom reset"
	case StackOverflowEntry:
		return "stack overflow"
	default:
		panic("frame: invalid entrypoint type")
	}
}

// Entrypoints maps entrypoint types to user-provided Rust symbol names.
type Entrypoints map[EntrypointType]string

// Features toggles optional behavior of the generated runtime.
type Features struct {
	// SkipBssClearing omits BSS zeroing for environments where the loader
	// already guarantees zeroed memory. Incompatible with multi-hart
	// targets: non-boot harts gate their boot on the BSS-ready flag, which
	// only the clearing path publishes.
	SkipBssClearing bool

	// StackOverflowDetection plants a sentry word below each hart's stack
	// and checks it before every trap frame restore.
	StackOverflowDetection bool

	// AtomicExtension clears outstanding load reservations (sc to a dead
	// address) while restoring a trap frame. Multi-hart targets assume
	// amoadd support for boot-id arbitration regardless of this flag.
	AtomicExtension bool

	// FloatingPoint saves and lazily restores the FP register file across
	// traps and context switches.
	FloatingPoint bool

	// SfenceOnRestore emits sfence.vma when a restored frame flags a
	// translation register change.
	SfenceOnRestore bool
}

// ConfigError reports an inconsistent runtime configuration.
type ConfigError struct {
	Reason string
}

func (self ConfigError) Error() string {
	return "frame: " + self.Reason
}

// RtConfig is the validated runtime description driving assembly and Rust
// generation.
type RtConfig struct {
	entrypoints Entrypoints
	trapFrame   TrapFrame
	tpBlock     TpBlock
	threadCtx   ThreadContext
	tgt         target.Config
	features    Features
}

// NewRtConfig validates the runtime description. Enabling floating point
// extends the trap frame with the full FP register file and fcsr, skipping
// entries already declared.
func NewRtConfig(
	eps Entrypoints,
	tf TrapFrame,
	tpb TpBlock,
	tc ThreadContext,
	tgt target.Config,
	feats Features,
) (*RtConfig, error) {
	required := []EntrypointType{BootHartEntry, TrapEntry}
	if tgt.IsMultiHart() {
		required = append(required, NonBootHartEntry)
	}
	if tgt.NeedsCustomReset() {
		required = append(required, CustomResetEntry)
	}
	if feats.StackOverflowDetection {
		required = append(required, StackOverflowEntry)
	}
	for _, ty := range required {
		if eps[ty] == "" {
			return nil, ConfigError{Reason: fmt.Sprintf("missing %s entrypoint", ty)}
		}
	}

	if feats.SkipBssClearing && tgt.IsMultiHart() {
		return nil, ConfigError{
			Reason: "skip_bss_clearing is not supported on multi-hart targets: " +
				"non-boot harts wait on the BSS-ready flag published by the clearing path",
		}
	}

	if feats.FloatingPoint {
		for _, fr := range riscv.AllFRegs() {
			if !containsFReg(tf.FloatRegs, fr) {
				tf.FloatRegs = append(tf.FloatRegs, fr)
			}
		}
		if !containsCsr(tf.Csrs, riscv.CsrFcsr) {
			tf.Csrs = append(tf.Csrs, riscv.CsrFcsr)
		}
	}

	return &RtConfig{
		entrypoints: eps,
		trapFrame:   tf,
		tpBlock:     tpb,
		threadCtx:   tc,
		tgt:         tgt,
		features:    feats,
	}, nil
}

func containsFReg(regs []riscv.FReg, r riscv.FReg) bool {
	for _, fr := range regs {
		if fr == r {
			return true
		}
	}
	return false
}

func containsCsr(csrs []riscv.Csr, c riscv.Csr) bool {
	for _, csr := range csrs {
		if csr == c {
			return true
		}
	}
	return false
}

func (self *RtConfig) TrapFrame() *TrapFrame         { return &self.trapFrame }
func (self *RtConfig) TpBlock() *TpBlock             { return &self.tpBlock }
func (self *RtConfig) ThreadContext() *ThreadContext { return &self.threadCtx }
func (self *RtConfig) Target() target.Config         { return self.tgt }
func (self *RtConfig) Features() Features            { return self.features }

func (self *RtConfig) XlenBytes() int          { return self.tgt.XlenBytes() }
func (self *RtConfig) WordSuffix() string      { return self.tgt.WordSuffix() }
func (self *RtConfig) Mode() target.Mode       { return self.tgt.Mode() }
func (self *RtConfig) Xlen() target.Xlen       { return self.tgt.Xlen() }
func (self *RtConfig) MaxHartCount() int       { return self.tgt.MaxHartCount() }
func (self *RtConfig) HartStackSize() int      { return self.tgt.PerHartStackSize() }
func (self *RtConfig) IsMultiHart() bool       { return self.tgt.IsMultiHart() }
func (self *RtConfig) NeedsCustomReset() bool  { return self.tgt.NeedsCustomReset() }

func (self *RtConfig) MultihartResetHandlingRequired() bool {
	return self.tgt.MultihartResetHandlingRequired()
}

func (self *RtConfig) SkipBssClearing() bool        { return self.features.SkipBssClearing }
func (self *RtConfig) StackOverflowDetection() bool { return self.features.StackOverflowDetection }
func (self *RtConfig) AtomicExtension() bool        { return self.features.AtomicExtension }
func (self *RtConfig) FloatingPoint() bool          { return self.features.FloatingPoint }
func (self *RtConfig) SfenceOnRestore() bool        { return self.features.SfenceOnRestore }

// Entrypoint returns the Rust symbol registered for the given type. Asking
// for an entrypoint validation did not require is a generation defect.
func (self *RtConfig) Entrypoint(ty EntrypointType) string {
	name, ok := self.entrypoints[ty]
	if !ok {
		panic("frame: no entrypoint registered for " + ty.String())
	}
	return name
}

// Trap frame offsets, in bytes from the frame base.

func (self *RtConfig) TrapFrameSize() int {
	return self.trapFrame.ElementCount() * self.XlenBytes()
}

func (self *RtConfig) StatusRegOffset() int {
	return self.trapFrame.StatusRegIdx() * self.XlenBytes()
}

func (self *RtConfig) SpRegOffset() int {
	return self.trapFrame.SpRegIdx() * self.XlenBytes()
}

func (self *RtConfig) RaRegOffset() int {
	return self.trapFrame.RaRegIdx() * self.XlenBytes()
}

func (self *RtConfig) TpRegOffset() int {
	return self.trapFrame.TpRegIdx() * self.XlenBytes()
}

func (self *RtConfig) InterruptedFrameAddrOffset() int {
	return self.trapFrame.InterruptedFrameIdx() * self.XlenBytes()
}

func (self *RtConfig) RtFlagsOffset() int {
	return self.trapFrame.RtFlagsIdx() * self.XlenBytes()
}

// Tp block offsets, in bytes from the block base.

func (self *RtConfig) TpBlockSize() int {
	return self.tpBlock.Count() * self.XlenBytes()
}

func (self *RtConfig) CurrentModeStackOffset() int {
	return self.tpBlock.MemberIdx(CurrentModeStack) * self.XlenBytes()
}

func (self *RtConfig) InterruptedModeStackOffset() int {
	return self.tpBlock.MemberIdx(InterruptedModeStack) * self.XlenBytes()
}

func (self *RtConfig) InterruptedModeTpOffset() int {
	return self.tpBlock.MemberIdx(InterruptedModeTp) * self.XlenBytes()
}

func (self *RtConfig) RustEntrypointOffset() int {
	return self.tpBlock.MemberIdx(RustEntrypoint) * self.XlenBytes()
}

func (self *RtConfig) BootIdOffset() int {
	return self.tpBlock.MemberIdx(BootId) * self.XlenBytes()
}

func (self *RtConfig) HartIdOffset() int {
	return self.tpBlock.MemberIdx(HartId) * self.XlenBytes()
}

func (self *RtConfig) ContextAddrOffset() int {
	return self.tpBlock.MemberIdx(CurrContext) * self.XlenBytes()
}

func (self *RtConfig) ReturnAddrOffset() int {
	return self.tpBlock.MemberIdx(ReturnAddr) * self.XlenBytes()
}

func (self *RtConfig) TpBlockRtFlagsOffset() int {
	return self.tpBlock.MemberIdx(TpRtFlags) * self.XlenBytes()
}

func (self *RtConfig) TpBlockTrapFrameOffset() int {
	return self.tpBlock.MemberIdx(TrapCtx) * self.XlenBytes()
}

func (self *RtConfig) PrivCtxOffset() int {
	return self.threadCtx.PrivCtxIdx() * self.XlenBytes()
}
