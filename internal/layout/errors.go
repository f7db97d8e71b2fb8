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
	"fmt"
)

// GeometryError reports a memory description that cannot be realized:
// misaligned NAPOT bases, non-power-of-two NAPOT lengths, or sub-regions
// spilling past their parent.
type GeometryError struct {
	Name   string
	Reason string
}

func (self GeometryError) Error() string {
	return fmt.Sprintf("layout: memory %q: %s", self.Name, self.Reason)
}

// ConfigError reports an inconsistent linker configuration, such as a
// section naming a memory that does not exist.
type ConfigError struct {
	Reason string
}

func (self ConfigError) Error() string {
	return "layout: " + self.Reason
}
