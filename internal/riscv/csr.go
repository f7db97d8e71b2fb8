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

package riscv

import (
	"fmt"

	"github.com/cloudwego/rvgen/internal/target"
)

// Csr is a control and status register. Mode-dependent CSRs resolve their
// full name by prefixing the target privilege mode (mstatus vs. sstatus);
// the rest carry a fixed name. Custom CSRs are addressed numerically so the
// assembler does not need to know them by name.
type Csr struct {
	name     string
	addr     int
	custom   bool
	modal    bool
	volatile bool
}

var (
	CsrIe         = Csr{name: "ie", modal: true}
	CsrMcounteren = Csr{name: "mcounteren"}
	CsrMenvcfg    = Csr{name: "menvcfg"}
	CsrMideleg    = Csr{name: "mideleg"}
	CsrMedeleg    = Csr{name: "medeleg"}
	CsrMhartid    = Csr{name: "mhartid"}
	CsrStatus     = Csr{name: "status", modal: true}
	CsrEpc        = Csr{name: "epc", modal: true}
	CsrScratch    = Csr{name: "scratch", modal: true}
	CsrTval       = Csr{name: "tval", modal: true, volatile: true}
	CsrCause      = Csr{name: "cause", modal: true, volatile: true}
	CsrTvec       = Csr{name: "tvec", modal: true}
	CsrSatp       = Csr{name: "satp"}
	CsrFcsr       = Csr{name: "fcsr"}
)

// CustomCsr describes a non-standard CSR by address. The name only shows up
// in generated struct members and comments, never in instructions.
func CustomCsr(addr int, name string) Csr {
	return Csr{name: name, addr: addr, custom: true}
}

// Name returns the member-level name of the CSR, mode-prefixed when the CSR
// exists per privilege mode.
func (self Csr) Name(mode target.Mode) string {
	if self.modal {
		return mode.String() + self.name
	}
	return self.name
}

// AddressOrName returns the operand to use in csrr/csrw and friends: the
// hex address for custom CSRs, the resolved name otherwise.
func (self Csr) AddressOrName(mode target.Mode) string {
	if self.custom {
		return fmt.Sprintf("0x%x", self.addr)
	}
	return self.Name(mode)
}

// RestoreFromTrapFrame reports whether the CSR's saved value is written back
// on trap return. Cause and tval are set by hardware on every trap entry, so
// restoring them buys nothing.
func (self Csr) RestoreFromTrapFrame() bool {
	return !self.volatile
}
