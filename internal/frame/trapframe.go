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
	"github.com/cloudwego/rvgen/internal/riscv"
	"github.com/cloudwego/rvgen/internal/target"
)

// StateValue is a runtime-state slot kept in the trap frame alongside the
// register file.
type StateValue int

const (
	StateRtFlags StateValue = iota
	StateInterruptedTrapFrameAddr
)

func (self StateValue) String() string {
	switch self {
	case StateRtFlags:
		return "rt_flags"
	case StateInterruptedTrapFrameAddr:
		return "int_frame"
	default:
		panic("frame: invalid state value")
	}
}

// TrapFrame declares the saved-state layout: general registers first, then
// floating-point registers, then CSRs, then runtime-state slots. Slot
// indices follow declaration order within each group.
type TrapFrame struct {
	GeneralRegs []riscv.Reg
	FloatRegs   []riscv.FReg
	Csrs        []riscv.Csr
	StateValues []StateValue
}

// DefaultTrapFrame saves every general register except zero, no FP state,
// and the four trap CSRs.
func DefaultTrapFrame() TrapFrame {
	return TrapFrame{
		GeneralRegs: []riscv.Reg{
			riscv.Ra, riscv.Sp, riscv.Gp, riscv.Tp,
			riscv.T0, riscv.T1, riscv.T2,
			riscv.S0, riscv.S1,
			riscv.A0, riscv.A1, riscv.A2, riscv.A3,
			riscv.A4, riscv.A5, riscv.A6, riscv.A7,
			riscv.S2, riscv.S3, riscv.S4, riscv.S5,
			riscv.S6, riscv.S7, riscv.S8, riscv.S9,
			riscv.S10, riscv.S11,
			riscv.T3, riscv.T4, riscv.T5, riscv.T6,
		},
		Csrs: []riscv.Csr{
			riscv.CsrStatus, riscv.CsrEpc, riscv.CsrTval, riscv.CsrCause,
		},
		StateValues: []StateValue{
			StateRtFlags, StateInterruptedTrapFrameAddr,
		},
	}
}

func (self *TrapFrame) ElementCount() int {
	return len(self.GeneralRegs) + len(self.FloatRegs) + len(self.Csrs) + len(self.StateValues)
}

func (self *TrapFrame) grStartIdx() int {
	return 0
}

func (self *TrapFrame) FrStartIdx() int {
	return len(self.GeneralRegs)
}

func (self *TrapFrame) CsrStartIdx() int {
	return len(self.GeneralRegs) + len(self.FloatRegs)
}

func (self *TrapFrame) stateStartIdx() int {
	return len(self.GeneralRegs) + len(self.FloatRegs) + len(self.Csrs)
}

// GrIdx returns the slot of a general register. Asking for a register the
// frame does not save is a generation defect.
func (self *TrapFrame) GrIdx(reg riscv.Reg) int {
	for i, gr := range self.GeneralRegs {
		if gr == reg {
			return i + self.grStartIdx()
		}
	}
	panic("frame: general register not present in trap frame: " + reg.String())
}

func (self *TrapFrame) CsrIdx(csr riscv.Csr) int {
	for i, c := range self.Csrs {
		if c == csr {
			return i + self.CsrStartIdx()
		}
	}
	panic("frame: CSR not present in trap frame")
}

func (self *TrapFrame) StateIdx(sv StateValue) int {
	for i, s := range self.StateValues {
		if s == sv {
			return i + self.stateStartIdx()
		}
	}
	panic("frame: state value not present in trap frame: " + sv.String())
}

func (self *TrapFrame) StatusRegIdx() int { return self.CsrIdx(riscv.CsrStatus) }
func (self *TrapFrame) SpRegIdx() int     { return self.GrIdx(riscv.Sp) }
func (self *TrapFrame) RaRegIdx() int     { return self.GrIdx(riscv.Ra) }
func (self *TrapFrame) TpRegIdx() int     { return self.GrIdx(riscv.Tp) }

func (self *TrapFrame) RtFlagsIdx() int {
	return self.StateIdx(StateRtFlags)
}

func (self *TrapFrame) InterruptedFrameIdx() int {
	return self.StateIdx(StateInterruptedTrapFrameAddr)
}

// Members returns the member names of the companion Rust struct, in slot
// order. CSR members resolve their mode prefix here.
func (self *TrapFrame) Members(mode target.Mode) []string {
	members := make([]string, 0, self.ElementCount())
	for _, gr := range self.GeneralRegs {
		members = append(members, gr.String())
	}
	for _, fr := range self.FloatRegs {
		members = append(members, fr.String())
	}
	for _, csr := range self.Csrs {
		members = append(members, csr.Name(mode))
	}
	for _, sv := range self.StateValues {
		members = append(members, sv.String())
	}
	return members
}

func (self *TrapFrame) StructName() string {
	return "TrapFrame"
}
