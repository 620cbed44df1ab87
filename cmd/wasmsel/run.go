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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-wasmsel/codegen"
	"github.com/ajroetker/go-wasmsel/internal/casefile"
)

var errCasesFailed = errors.New("cases failed")

type runOptions struct {
	jobs   int
	update bool
	watch  bool
}

func newRunCmd(a *app) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run PATH...",
		Short: "Check txtar case files, or directories of them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandPaths(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			err = a.runAll(cmd.Context(), out, paths, o)
			if !o.watch {
				return err
			}
			if err != nil {
				a.logger.Warn("initial run failed", "err", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.watch(ctx, dirsOf(paths), func(path string) {
				if err := a.runAll(ctx, out, []string{path}, o); err != nil {
					a.logger.Warn("rerun failed", "path", path, "err", err)
				}
			})
		},
	}
	f := cmd.Flags()
	f.IntVarP(&o.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of case files checked in parallel")
	f.BoolVar(&o.update, "update", false, "rewrite the want sections with the current selections")
	f.BoolVar(&o.watch, "watch", false, "rerun case files when they change")
	cmd.MarkFlagsMutuallyExclusive("update", "watch")
	return cmd
}

// expandPaths replaces directories by the case files they contain.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.txtar"))
		if err != nil {
			return nil, err
		}
		slices.Sort(matches)
		paths = append(paths, matches...)
	}
	paths = lo.Uniq(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no case files in %s", strings.Join(args, ", "))
	}
	return paths, nil
}

func dirsOf(paths []string) []string {
	return lo.Uniq(lo.Map(paths, func(p string, _ int) string { return filepath.Dir(p) }))
}

type caseResult struct {
	name  string
	exprs []string
	got   []string
	want  []string
}

func (r caseResult) ok() bool {
	return len(r.want) == 0 || slices.Equal(r.got, r.want)
}

func (r caseResult) report(w io.Writer) {
	switch {
	case len(r.want) == 0:
		fmt.Fprintf(w, "?    %s (no want section)\n", r.name)
		for i, g := range r.got {
			fmt.Fprintf(w, "       %s => %s\n", r.exprs[i], g)
		}
	case r.ok():
		fmt.Fprintf(w, "ok   %s (%d)\n", r.name, len(r.got))
	default:
		fmt.Fprintf(w, "FAIL %s\n", r.name)
		for i := range r.got {
			if r.got[i] != r.want[i] {
				fmt.Fprintf(w, "       %s\n         got:  %s\n         want: %s\n", r.exprs[i], r.got[i], r.want[i])
			}
		}
	}
}

// runAll checks paths concurrently, at most o.jobs at a time, and reports
// the results in path order.
func (a *app) runAll(ctx context.Context, w io.Writer, paths []string, o runOptions) error {
	results := make([]caseResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.jobs, 1))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := a.runCase(path, o.update)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		r.report(w)
	}
	failed := lo.Filter(results, func(r caseResult, _ int) bool { return !r.ok() })
	total := lo.SumBy(results, func(r caseResult) int { return len(r.got) })
	fmt.Fprintf(w, "%d files, %d expressions, %d failed\n", len(results), total, len(failed))
	if len(failed) > 0 {
		names := lo.Map(failed, func(r caseResult, _ int) string { return r.name })
		return fmt.Errorf("%w: %s", errCasesFailed, strings.Join(names, ", "))
	}
	return nil
}

func (a *app) runCase(path string, update bool) (caseResult, error) {
	c, err := casefile.Load(path)
	if err != nil {
		return caseResult{}, err
	}
	t, err := c.ParseTarget()
	if err != nil {
		return caseResult{}, err
	}
	exprs, err := c.ParseExprs()
	if err != nil {
		return caseResult{}, err
	}
	b, err := a.backend(t, c.Toolchain)
	if err != nil {
		return caseResult{}, err
	}

	r := caseResult{name: c.Name, exprs: c.Exprs, want: c.Want}
	for i, e := range exprs {
		r.got = append(r.got, selectionString(b, e))
		if _, err := codegen.NewBuilder(b).Function("f", e); err != nil {
			return caseResult{}, fmt.Errorf("expr %d: %w", i+1, err)
		}
	}
	a.logger.Debug("case checked", "name", c.Name, "target", t.String(), "exprs", len(exprs))

	if update {
		c.Want = r.got
		if err := os.WriteFile(path, c.Format(), 0o644); err != nil {
			return caseResult{}, err
		}
		r.want = r.got
	}
	return r, nil
}

// watch calls onChange for every case file written or created in dirs
// until ctx is done.
func (a *app) watch(ctx context.Context, dirs []string, onChange func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	a.logger.Info("watching for changes", "dirs", dirs)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".txtar" || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			a.logger.Debug("case changed", "path", ev.Name, "op", ev.Op.String())
			onChange(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}
