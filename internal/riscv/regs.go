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

// Package riscv models the architectural register and CSR names the
// generator emits.
package riscv

// Reg is a general-purpose register, identified by its ABI name.
type Reg uint8

const (
	Zero Reg = iota
	Ra
	Sp
	Gp
	Tp
	T0
	T1
	T2
	S0
	S1
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	T3
	T4
	T5
	T6
)

var regNames = [...]string{
	Zero: "zero",
	Ra:   "ra",
	Sp:   "sp",
	Gp:   "gp",
	Tp:   "tp",
	T0:   "t0",
	T1:   "t1",
	T2:   "t2",
	S0:   "s0",
	S1:   "s1",
	A0:   "a0",
	A1:   "a1",
	A2:   "a2",
	A3:   "a3",
	A4:   "a4",
	A5:   "a5",
	A6:   "a6",
	A7:   "a7",
	S2:   "s2",
	S3:   "s3",
	S4:   "s4",
	S5:   "s5",
	S6:   "s6",
	S7:   "s7",
	S8:   "s8",
	S9:   "s9",
	S10:  "s10",
	S11:  "s11",
	T3:   "t3",
	T4:   "t4",
	T5:   "t5",
	T6:   "t6",
}

func (self Reg) String() string {
	if int(self) >= len(regNames) {
		panic("riscv: invalid general register")
	}
	return regNames[self]
}

// FReg is a floating-point register.
type FReg uint8

const (
	F0 FReg = iota
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	F13
	F14
	F15
	F16
	F17
	F18
	F19
	F20
	F21
	F22
	F23
	F24
	F25
	F26
	F27
	F28
	F29
	F30
	F31
)

var fregNames = [...]string{
	F0: "f0", F1: "f1", F2: "f2", F3: "f3",
	F4: "f4", F5: "f5", F6: "f6", F7: "f7",
	F8: "f8", F9: "f9", F10: "f10", F11: "f11",
	F12: "f12", F13: "f13", F14: "f14", F15: "f15",
	F16: "f16", F17: "f17", F18: "f18", F19: "f19",
	F20: "f20", F21: "f21", F22: "f22", F23: "f23",
	F24: "f24", F25: "f25", F26: "f26", F27: "f27",
	F28: "f28", F29: "f29", F30: "f30", F31: "f31",
}

func (self FReg) String() string {
	if int(self) >= len(fregNames) {
		panic("riscv: invalid floating-point register")
	}
	return fregNames[self]
}

// AllFRegs returns f0..f31 in architectural order.
func AllFRegs() []FReg {
	r := make([]FReg, 0, 32)
	for i := F0; i <= F31; i++ {
		r = append(r, i)
	}
	return r
}
