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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/rvgen/internal/target"
)

func TestCsr_ModalNaming(t *testing.T) {
	require.Equal(t, "mstatus", CsrStatus.Name(target.MachineMode))
	require.Equal(t, "sstatus", CsrStatus.Name(target.SupervisorMode))
	require.Equal(t, "mepc", CsrEpc.Name(target.MachineMode))
	require.Equal(t, "sscratch", CsrScratch.Name(target.SupervisorMode))

	// Non-modal CSRs keep their name in either mode.
	require.Equal(t, "mhartid", CsrMhartid.Name(target.SupervisorMode))
	require.Equal(t, "fcsr", CsrFcsr.Name(target.MachineMode))
}

func TestCsr_AddressOrName(t *testing.T) {
	require.Equal(t, "mtvec", CsrTvec.AddressOrName(target.MachineMode))

	custom := CustomCsr(0x7c0, "vendorctl")
	require.Equal(t, "0x7c0", custom.AddressOrName(target.MachineMode))
	require.Equal(t, "vendorctl", custom.Name(target.MachineMode))
}

func TestCsr_RestoreFromTrapFrame(t *testing.T) {
	require.True(t, CsrStatus.RestoreFromTrapFrame())
	require.True(t, CsrEpc.RestoreFromTrapFrame())

	// Hardware rewrites cause and tval on every trap entry.
	require.False(t, CsrCause.RestoreFromTrapFrame())
	require.False(t, CsrTval.RestoreFromTrapFrame())
}

func TestReg_String(t *testing.T) {
	require.Equal(t, "zero", Zero.String())
	require.Equal(t, "sp", Sp.String())
	require.Equal(t, "t6", T6.String())
	require.Panics(t, func() { _ = Reg(32).String() })
}

func TestAllFRegs(t *testing.T) {
	fregs := AllFRegs()
	require.Len(t, fregs, 32)
	require.Equal(t, "f0", fregs[0].String())
	require.Equal(t, "f31", fregs[31].String())
}
