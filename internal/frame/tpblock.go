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

// TpBlockMember is one word-sized slot of the per-hart block anchored in tp.
type TpBlockMember int

const (
	CurrentModeStack TpBlockMember = iota
	InterruptedModeStack
	InterruptedModeTp
	RustEntrypoint
	BootId
	HartId
	CurrContext
	ReturnAddr
	TpRtFlags
	TrapCtx
)

func (self TpBlockMember) String() string {
	switch self {
	case CurrentModeStack:
		return "current_mode_sp"
	case InterruptedModeStack:
		return "interrupted_mode_sp"
	case InterruptedModeTp:
		return "interrupted_mode_tp"
	case RustEntrypoint:
		return "rust_entrypoint"
	case BootId:
		return "boot_id"
	case HartId:
		return "hart_id"
	case CurrContext:
		return "curr_context"
	case ReturnAddr:
		return "return_addr"
	case TpRtFlags:
		return "rt_flags"
	case TrapCtx:
		return "trap_ctx_frame"
	default:
		panic("frame: invalid tp block member")
	}
}

// TpBlock declares the per-hart block layout. Member order determines
// offsets.
type TpBlock struct {
	Members []TpBlockMember
}

func DefaultTpBlock() TpBlock {
	return TpBlock{
		Members: []TpBlockMember{
			CurrentModeStack,
			InterruptedModeStack,
			InterruptedModeTp,
			RustEntrypoint,
			BootId,
			HartId,
			CurrContext,
			ReturnAddr,
			TpRtFlags,
			TrapCtx,
		},
	}
}

func (self *TpBlock) MemberIdx(m TpBlockMember) int {
	for i, member := range self.Members {
		if member == m {
			return i
		}
	}
	panic("frame: member not present in tp block: " + m.String())
}

func (self *TpBlock) Count() int {
	return len(self.Members)
}

func (self *TpBlock) MemberNames() []string {
	names := make([]string, 0, len(self.Members))
	for _, m := range self.Members {
		names = append(names, m.String())
	}
	return names
}

func (self *TpBlock) StructName() string {
	return "TpBlock"
}

// ThreadContextMember is one word-sized slot of the per-thread context a
// scheduler hands to the context switch path.
type ThreadContextMember int

const (
	PrivCtx ThreadContextMember = iota
)

func (self ThreadContextMember) String() string {
	switch self {
	case PrivCtx:
		return "priv_ctx"
	default:
		panic("frame: invalid thread context member")
	}
}

// ThreadContext declares the thread context layout.
type ThreadContext struct {
	Members []ThreadContextMember
}

func DefaultThreadContext() ThreadContext {
	return ThreadContext{
		Members: []ThreadContextMember{PrivCtx},
	}
}

func (self *ThreadContext) MemberIdx(m ThreadContextMember) int {
	for i, member := range self.Members {
		if member == m {
			return i
		}
	}
	panic("frame: member not present in thread context: " + m.String())
}

func (self *ThreadContext) PrivCtxIdx() int {
	return self.MemberIdx(PrivCtx)
}
