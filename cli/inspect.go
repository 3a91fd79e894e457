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
	"strings"
	"text/tabwriter"

	cliUtil "github.com/fusionlang/fusion/cli/util"
	"github.com/fusionlang/fusion/lang"
	"github.com/fusionlang/fusion/lang/pathname"

	"github.com/fatih/color"
	"github.com/spf13/afero"
)

// PathsArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `paths` subcommand.
type PathsArgs struct {
	cliUtil.InputArgs

	Prefix string `arg:"--prefix" help:"only list this path and the paths below it"`

	fs     afero.Fs
	output io.Writer
}

// Run executes the `paths` subcommand. It lists every declared path with the
// kind and the position of the declaration which wins.
func (obj *PathsArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	var prefix *pathname.AbsolutePath
	if obj.Prefix != "" {
		p, err := pathname.ParseAbsolute(obj.Prefix)
		if err != nil {
			return false, cliUtil.CliParseError(err)
		}
		prefix = &p
	}
	l, err := load(obj.fs, obj.Input, data)
	if err != nil {
		return false, err
	}
	if obj.output == nil {
		obj.output = os.Stdout
	}

	idx := l.Index()
	w := tabwriter.NewWriter(obj.output, 0, 8, 2, ' ', 0)
	for _, p := range idx.Paths() {
		if prefix != nil && !p.Equal(*prefix) && !p.IsAnyChildOf(*prefix) {
			continue
		}
		decls := idx.Declarations(p)
		entry := idx.Effective(p)
		if entry == nil { // only configurations
			entry = decls[len(decls)-1]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t(%d)\n", p, entry.Decl.Kind(), entry.Decl.Position(), len(decls))
	}
	return true, w.Flush()
}

// PrototypesArgs is the CLI parsing structure and type of the parsed result.
// This particular one contains all the flags for the `prototypes` subcommand.
type PrototypesArgs struct {
	cliUtil.InputArgs

	Extensions bool `arg:"--extensions" help:"also list the extension scopes of each prototype"`

	fs     afero.Fs
	output io.Writer
}

// Run executes the `prototypes` subcommand. It lists every prototype with its
// inheritance chain.
func (obj *PrototypesArgs) Run(ctx context.Context, data *cliUtil.Data) (bool, error) {
	l, err := load(obj.fs, obj.Input, data)
	if err != nil {
		return false, err
	}
	if obj.output == nil {
		obj.output = os.Stdout
	}

	model := l.Model()
	for _, name := range model.Prototypes() {
		chain := []string{}
		for _, ancestor := range model.Chain(name)[1:] {
			chain = append(chain, ancestor.String())
		}
		line := color.CyanString(name.String())
		if len(chain) > 0 {
			line += " < " + strings.Join(chain, " < ")
		}
		fmt.Fprintln(obj.output, line)

		if !obj.Extensions {
			continue
		}
		for _, scope := range model.Extensions(name) {
			fmt.Fprintf(obj.output, "  %s\n", scope.Path())
		}
	}
	return true, nil
}

// load builds the language for the inspection subcommands.
func load(fs afero.Fs, input string, data *cliUtil.Data) (*lang.Lang, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	l := &lang.Lang{
		Fs:    fs,
		Input: input,
		Debug: data.Flags.Debug,
		Logf: func(format string, v ...interface{}) {
			data.Flags.Logf("lang: "+format, v...)
		},
	}
	if err := l.Init(); err != nil {
		return nil, err
	}
	return l, nil
}
