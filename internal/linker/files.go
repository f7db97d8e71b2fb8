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

package linker

import (
	"path/filepath"

	"github.com/cloudwego/rvgen/internal/layout"
	"github.com/cloudwego/rvgen/internal/rust"
	"github.com/cloudwego/rvgen/internal/writer"
)

func writeLinkerLdFile(dir string, cfg *layout.LinkerConfig) error {
	w := writer.New(filepath.Join(dir, "program.ld"), writer.Braces)
	b := NewBuilder(cfg)

	b.OutputArch()
	b.Entry()
	b.Memory()
	b.Sections()
	b.Symbols()
	b.Asserts()
	b.Generate(w)
	return w.Flush()
}

func writeConstsRsFile(dir string, cfg *layout.LinkerConfig, root *writer.Writer) error {
	path := filepath.Join(dir, "consts.rs")
	w := writer.New(path, writer.Braces)

	buildConstsRs(cfg).Generate(w)

	rust.AddModule(root, path)
	return w.Flush()
}

// WriteLinkerFiles emits program.ld, consts.rs and the root source of the
// linker output directory. The directory must already exist.
func WriteLinkerFiles(dir string, cfg *layout.LinkerConfig, crateType rust.CrateType) error {
	root := rust.NewRootWriter(dir, crateType)

	if err := writeLinkerLdFile(dir, cfg); err != nil {
		return err
	}
	if err := writeConstsRsFile(dir, cfg, root); err != nil {
		return err
	}

	return root.Flush()
}
