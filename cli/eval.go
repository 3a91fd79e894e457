// Fusion
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cliUtil "github.com/fusionlang/fusion/cli/util"
	"github.com/fusionlang/fusion/lang"
	"github.com/fusionlang/fusion/lang/layers"
	"github.com/fusionlang/fusion/lang/loader"
	"github.com/fusionlang/fusion/lang/types"
	"github.com/fusionlang/fusion/prometheus"
	"github.com/fusionlang/fusion/util/errwrap"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// EvalArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `eval` subcommand.
type EvalArgs struct {
	cliUtil.InputArgs // embedded, so the input is the first positional

	Paths []string `arg:"positional" help:"paths to evaluate, the main path of the metadata by default"`

	Type     string   `arg:"--type" help:"cast the results to this type: str, int, float, bool, list, map or any"`
	Vars     []string `arg:"--var,separate" help:"bind a context variable, as name=value"`
	Parallel int      `arg:"--parallel" default:"4" help:"max number of paths evaluated at once"`
	Yaml     bool     `arg:"--yaml" help:"print the results as a yaml document"`
	Watch    bool     `arg:"--watch" help:"evaluate again whenever a declaration file changes"`

	Prometheus       bool   `arg:"--prometheus" help:"serve the runtime metrics while running"`
	PrometheusListen string `arg:"--prometheus-listen" help:"listen address for the metrics, implies --prometheus"`

	fs     afero.Fs  // defaults to the os fs
	output io.Writer // defaults to stdout
}

// result is the outcome of the evaluation of one path.
type result struct {
	path  string
	value interface{}
	err   error
}

// Run executes the `eval` subcommand. It returns true since it always
// activates.
func (obj *EvalArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	Logf := func(format string, v ...interface{}) {
		data.Flags.Logf("eval: "+format, v...)
	}
	cliUtil.Hello(data.Program, data.Version, data.Flags) // say hello!
	defer Logf("goodbye!")

	if obj.fs == nil {
		obj.fs = afero.NewOsFs()
	}
	if obj.output == nil {
		obj.output = os.Stdout
	}
	if obj.Parallel < 1 {
		obj.Parallel = 1
	}

	var typ *types.Type
	if obj.Type != "" {
		if typ = types.NewType(obj.Type); typ == nil {
			return false, cliUtil.CliParseError(fmt.Errorf("unknown type `%s`", obj.Type))
		}
	}
	layer, err := cliUtil.ParseVars("vars", obj.Vars)
	if err != nil {
		return false, err
	}
	vars := layers.Empty().Push(layer)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	wg, ctx := errgroup.WithContext(ctx)

	var metrics *prometheus.Metrics
	if obj.Prometheus || obj.PrometheusListen != "" {
		registry := prom.NewRegistry()
		metrics = &prometheus.Metrics{}
		if err := metrics.Init(registry); err != nil {
			return false, errwrap.Wrapf(err, "could not init the metrics")
		}
		listen := obj.PrometheusListen
		if listen == "" {
			listen = prometheus.DefaultPrometheusListen
		}
		wg.Go(func() error {
			Logf("serving metrics on %s", listen)
			return prometheus.Serve(ctx, listen, registry)
		})
	}

	run := func() error {
		return obj.evaluate(ctx, data, metrics, vars, typ)
	}
	wg.Go(func() error {
		defer cancel() // stops the metrics server
		if !obj.Watch {
			return run()
		}
		return obj.watch(ctx, run, Logf)
	})

	if err := wg.Wait(); err != nil {
		return false, err
	}
	return true, nil
}

// evaluate loads the input from scratch and evaluates every path.
func (obj *EvalArgs) evaluate(ctx context.Context, data *cliUtil.Data, metrics *prometheus.Metrics, vars *layers.Context, typ *types.Type) error {
	l := &lang.Lang{
		Fs:      obj.fs,
		Input:   obj.Input,
		Metrics: metrics,
		Debug:   data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("lang: "+format, v...)
		},
	}
	if err := l.Init(); err != nil {
		return err
	}

	paths := obj.Paths
	if len(paths) == 0 {
		paths = []string{l.Metadata().Main}
	}
	results := make([]result, len(paths))

	// the model is immutable, so the requests can run at the same time
	wg, ctx := errgroup.WithContext(ctx)
	wg.SetLimit(obj.Parallel)
	for i, p := range paths {
		i, p := i, p
		wg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			value, err := l.Evaluate(p, vars, typ)
			results[i] = result{path: p, value: value, err: err}
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return err
	}

	if obj.Yaml {
		return obj.printYaml(results)
	}
	return obj.print(results)
}

// print writes one line per result, with a coloured marker for the outcome.
func (obj *EvalArgs) print(results []result) error {
	var reterr error
	for _, r := range results {
		switch {
		case r.err != nil:
			fmt.Fprintf(obj.output, "%s %s: %v\n", color.RedString("✗"), r.path, r.err)
			reterr = cliUtil.EvaluationFailed
		case r.value == nil:
			fmt.Fprintf(obj.output, "%s %s: null\n", color.YellowString("-"), r.path)
		default:
			fmt.Fprintf(obj.output, "%s %s: %v\n", color.GreenString("✓"), r.path, r.value)
		}
	}
	return reterr
}

// printYaml writes the values as a yaml mapping from path to value. Errors go
// to the log instead.
func (obj *EvalArgs) printYaml(results []result) error {
	var reterr error
	values := make(map[string]interface{})
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.path, r.err)
			reterr = cliUtil.EvaluationFailed
			continue
		}
		values[r.path] = r.value
	}
	b, err := yaml.Marshal(values)
	if err != nil {
		return errwrap.Wrapf(err, "could not encode the results")
	}
	if _, err := obj.output.Write(b); err != nil {
		return err
	}
	return reterr
}

// watch runs once, and then again whenever a declaration file changes, until
// the context is done. Failed runs are logged and don't stop the watch.
func (obj *EvalArgs) watch(ctx context.Context, run func() error, Logf func(format string, v ...interface{})) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errwrap.Wrapf(err, "could not start the watcher")
	}
	defer watcher.Close()

	dirs, err := watchDirs(obj.fs, obj.Input)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return errwrap.Wrapf(err, "could not watch %s", dir)
		}
	}

	if err := run(); err != nil {
		Logf("error: %+v", err)
	}
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, loader.DotFileNameExtension) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			Logf("%s changed", event.Name)
			if err := run(); err != nil {
				Logf("error: %+v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errwrap.Wrapf(err, "watcher failed")

		case <-ctx.Done():
			return nil
		}
	}
}

// watchDirs returns the directory of the input and every directory below it.
func watchDirs(fs afero.Fs, input string) ([]string, error) {
	fi, err := fs.Stat(input)
	if err != nil {
		return nil, err
	}
	root := input
	if !fi.IsDir() {
		root = filepath.Dir(input)
	}
	dirs := []string{}
	err = afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			dirs = append(dirs, p)
		}
		return nil
	})
	return dirs, err
}
