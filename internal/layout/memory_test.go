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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryAttribs_String(t *testing.T) {
	require.Equal(t, "rx", AttribsRX().String())
	require.Equal(t, "rw", AttribsRW().String())
	require.Equal(t, "rwx", AttribsRWX().String())
	require.Equal(t, "w", AttribsW().String())
}

func TestMemoriesFromRegion_DerivesSubRegionBases(t *testing.T) {
	region := NewNapotMemoryRegion("ram", 0x8002_0000, 64*KiB, AttribsRW(),
		NewSubRegion("low", 56*KiB),
		NewNapotSubRegion("high", 8*KiB),
	)

	mems, err := memoriesFromRegion(region)
	require.NoError(t, err)
	require.Len(t, mems, 3)

	require.Equal(t, "ram", mems[0].Name())
	require.Equal(t, 0x8002_0000, mems[0].Base())

	require.Equal(t, "low", mems[1].Name())
	require.Equal(t, 0x8002_0000, mems[1].Base())
	require.Equal(t, 0x8002_0000+56*KiB, mems[1].End())

	require.Equal(t, "high", mems[2].Name())
	require.Equal(t, 0x8002_0000+56*KiB, mems[2].Base())
}

func TestMemoriesFromRegion_NapotLengthNotPowerOfTwo(t *testing.T) {
	region := NewNapotMemoryRegion("flash", 0x8000_0000, 96*KiB, AttribsRX())

	_, err := memoriesFromRegion(region)
	require.Error(t, err)
	require.IsType(t, GeometryError{}, err)
	require.Contains(t, err.Error(), "not a power of two")
}

func TestMemoriesFromRegion_NapotZeroLength(t *testing.T) {
	region := NewNapotMemoryRegion("flash", 0x8000_0000, 0, AttribsRX())

	_, err := memoriesFromRegion(region)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a power of two")
}

func TestMemoriesFromRegion_NapotBaseMisaligned(t *testing.T) {
	region := NewNapotMemoryRegion("flash", 0x8000_1000, 128*KiB, AttribsRX())

	_, err := memoriesFromRegion(region)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not aligned")
}

func TestMemoriesFromRegion_NapotSubRegionDerivedBaseMisaligned(t *testing.T) {
	// The second sub-region's derived base (0x8002_0000 + 4KiB) is not
	// aligned to its 8KiB length.
	region := NewNapotMemoryRegion("ram", 0x8002_0000, 64*KiB, AttribsRW(),
		NewSubRegion("low", 4*KiB),
		NewNapotSubRegion("high", 8*KiB),
	)

	_, err := memoriesFromRegion(region)
	require.Error(t, err)
	require.Contains(t, err.Error(), "high")
}

func TestMemoriesFromRegion_SubRegionOverflow(t *testing.T) {
	region := NewNapotMemoryRegion("ram", 0x8002_0000, 64*KiB, AttribsRW(),
		NewSubRegion("low", 56*KiB),
		NewSubRegion("high", 16*KiB),
	)

	_, err := memoriesFromRegion(region)
	require.Error(t, err)
	require.Contains(t, err.Error(), "overflows region")
}

func TestMemoriesFromRegion_NapotSubInPlainRegion(t *testing.T) {
	region := NewMemoryRegion("ram", 0x8002_0000, 64*KiB, AttribsRW(),
		NewNapotSubRegion("high", 8*KiB),
	)

	_, err := memoriesFromRegion(region)
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-NAPOT region")
}

func TestMemory_String(t *testing.T) {
	m := newMemory("flash", 0x8000_0000, 128*KiB, AttribsRX())
	require.Equal(t, "flash (rx) : ORIGIN = 0x80000000, LENGTH = 0x20000", m.String())
}
