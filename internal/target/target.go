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

// Package target describes the RISC-V target a runtime is generated for:
// privilege mode, register width, hart topology and memory sizing.
package target

// Mode is the privilege mode the generated runtime executes in.
type Mode int

const (
	MachineMode Mode = iota
	SupervisorMode
)

// String returns the single-letter CSR prefix for the mode.
func (self Mode) String() string {
	switch self {
	case MachineMode:
		return "m"
	case SupervisorMode:
		return "s"
	default:
		panic("target: invalid privilege mode")
	}
}

// PPBits returns the xPP field of the status register with the mode's value
// shifted into place: MPP = M-mode, or SPP = S-mode.
func (self Mode) PPBits() int {
	switch self {
	case MachineMode:
		return 3 << 11
	case SupervisorMode:
		return 1 << 8
	default:
		panic("target: invalid privilege mode")
	}
}

// PPMask returns the mask covering the xPP field. The values coincide with
// PPBits for both supported modes.
func (self Mode) PPMask() int {
	return self.PPBits()
}

// Xlen is the native register width of the target.
type Xlen int

const (
	Xlen32 Xlen = 32
	Xlen64 Xlen = 64
)

// Bytes returns the register width in bytes.
func (self Xlen) Bytes() int {
	switch self {
	case Xlen32:
		return 4
	case Xlen64:
		return 8
	default:
		panic("target: invalid xlen")
	}
}

// WordSuffix returns the load/store mnemonic suffix for a full register:
// "w" on RV32, "d" on RV64.
func (self Xlen) WordSuffix() string {
	switch self {
	case Xlen32:
		return "w"
	case Xlen64:
		return "d"
	default:
		panic("target: invalid xlen")
	}
}

// HartConfig describes the hart topology of the target.
type HartConfig struct {
	Mode         Mode
	Xlen         Xlen
	MaxHartCount int

	// AllHartsStartAtResetVector is set when every hart enters the image at
	// the shared reset vector, requiring boot-id arbitration there.
	AllHartsStartAtResetVector bool
}

// MultihartResetHandlingRequired reports whether the reset path itself must
// arbitrate between harts.
func (self HartConfig) MultihartResetHandlingRequired() bool {
	return self.AllHartsStartAtResetVector && self.MaxHartCount > 1
}

// MemConfig carries the per-hart stack size and the heap size in bytes.
type MemConfig struct {
	PerHartStackSize int
	HeapSize         int
}

// Config aggregates everything the generator needs to know about the target.
type Config struct {
	Mem         MemConfig
	Hart        HartConfig
	CustomReset bool
}

func (self Config) MaxHartCount() int     { return self.Hart.MaxHartCount }
func (self Config) PerHartStackSize() int { return self.Mem.PerHartStackSize }
func (self Config) HeapSize() int         { return self.Mem.HeapSize }
func (self Config) Mode() Mode            { return self.Hart.Mode }
func (self Config) Xlen() Xlen            { return self.Hart.Xlen }
func (self Config) XlenBytes() int        { return self.Hart.Xlen.Bytes() }
func (self Config) WordSuffix() string    { return self.Hart.Xlen.WordSuffix() }
func (self Config) IsMultiHart() bool     { return self.Hart.MaxHartCount > 1 }
func (self Config) NeedsCustomReset() bool { return self.CustomReset }

func (self Config) MultihartResetHandlingRequired() bool {
	return self.Hart.MultihartResetHandlingRequired()
}
