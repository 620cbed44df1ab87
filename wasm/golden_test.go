// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build !wasmsel_nowasm

package wasm

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-wasmsel/codegen"
	"github.com/ajroetker/go-wasmsel/internal/casefile"
)

var update = flag.Bool("update", false, "rewrite the want sections of testdata cases")

func TestGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			c, err := casefile.Load(path)
			require.NoError(t, err)
			tgt, err := c.ParseTarget()
			require.NoError(t, err)
			exprs, err := c.ParseExprs()
			require.NoError(t, err)

			var opts []Option
			if c.Toolchain != "" {
				opts = append(opts, WithToolchainVersion(c.Toolchain))
			}
			b := newBackend(t, tgt, opts...)

			got := make([]string, len(exprs))
			for i, e := range exprs {
				got[i] = casefile.NoSelection
				if s, ok := b.Select(e); ok {
					got[i] = s.String()
				}
				// Every case must also lower end to end.
				if _, err := codegen.NewBuilder(b).Function("f", e); err != nil {
					t.Errorf("%s: %v", c.Exprs[i], err)
				}
			}

			if *update {
				c.Want = got
				require.NoError(t, os.WriteFile(path, c.Format(), 0o644))
				return
			}
			if diff := cmp.Diff(c.Want, got); diff != "" {
				t.Errorf("selections mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
