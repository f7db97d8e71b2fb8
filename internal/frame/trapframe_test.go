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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwego/rvgen/internal/riscv"
	"github.com/cloudwego/rvgen/internal/target"
)

func TestDefaultTrapFrame_Layout(t *testing.T) {
	tf := DefaultTrapFrame()

	require.Len(t, tf.GeneralRegs, 31)
	require.Empty(t, tf.FloatRegs)
	require.Len(t, tf.Csrs, 4)
	require.Equal(t, 37, tf.ElementCount())

	require.Equal(t, 0, tf.RaRegIdx())
	require.Equal(t, 1, tf.SpRegIdx())
	require.Equal(t, 3, tf.TpRegIdx())
	require.Equal(t, 31, tf.CsrStartIdx())
	require.Equal(t, 31, tf.StatusRegIdx())
	require.Equal(t, 35, tf.RtFlagsIdx())
	require.Equal(t, 36, tf.InterruptedFrameIdx())
}

func TestTrapFrame_GrIdxPanicsOnUnsavedRegister(t *testing.T) {
	tf := DefaultTrapFrame()
	require.Panics(t, func() { tf.GrIdx(riscv.Zero) })
}

func TestTrapFrame_Members(t *testing.T) {
	tf := DefaultTrapFrame()
	members := tf.Members(target.MachineMode)

	require.Len(t, members, tf.ElementCount())
	require.Equal(t, "ra", members[0])
	require.Equal(t, "sp", members[1])
	require.Equal(t, "mstatus", members[31])
	require.Equal(t, "rt_flags", members[35])
	require.Equal(t, "int_frame", members[36])

	supervisor := tf.Members(target.SupervisorMode)
	require.Equal(t, "sstatus", supervisor[31])
}

func TestDefaultTpBlock_MemberOrder(t *testing.T) {
	tpb := DefaultTpBlock()

	require.Equal(t, 10, tpb.Count())
	require.Equal(t, 0, tpb.MemberIdx(CurrentModeStack))
	require.Equal(t, 4, tpb.MemberIdx(BootId))
	require.Equal(t, 5, tpb.MemberIdx(HartId))
	require.Equal(t, 9, tpb.MemberIdx(TrapCtx))

	names := tpb.MemberNames()
	require.Equal(t, "current_mode_sp", names[0])
	require.Equal(t, "trap_ctx_frame", names[9])
}

func TestTpBlock_MemberIdxPanicsOnAbsent(t *testing.T) {
	tpb := TpBlock{Members: []TpBlockMember{CurrentModeStack}}
	require.Panics(t, func() { tpb.MemberIdx(HartId) })
}

func TestDefaultThreadContext(t *testing.T) {
	tc := DefaultThreadContext()
	require.Equal(t, 0, tc.PrivCtxIdx())
}
