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

//go:build !root

package semantic

import (
	"fmt"
	"testing"

	"github.com/fusionlang/fusion/lang/ast"
	"github.com/fusionlang/fusion/lang/index"
	"github.com/fusionlang/fusion/lang/loader"
	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/util"
	"github.com/fusionlang/fusion/util/errwrap"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
)

func buildIndex(t *testing.T, code string) (*index.Index, error) {
	file, err := loader.Parse("test.yaml", []byte(util.Code(code)))
	if err != nil {
		t.Fatalf("parse failed: %+v", err)
	}
	return index.Build(file)
}

func buildModel(t *testing.T, code string, config *Config) (*Model, error) {
	idx, err := buildIndex(t, code)
	if err != nil {
		t.Fatalf("index failed: %+v", err)
	}
	if config == nil {
		config = &Config{}
	}
	config.Logf = func(format string, v ...interface{}) {
		t.Logf("model: "+format, v...)
	}
	return NewModel(idx, config)
}

// primitive returns the literal value of an attribute.
func primitive(t *testing.T, attr *Attribute) interface{} {
	if attr == nil || attr.Entry == nil {
		t.Errorf("attribute has no value: %v", attr)
		return nil
	}
	a, ok := attr.Entry.Decl.(*ast.Assignment)
	if !ok {
		t.Errorf("attribute is not an assignment: %s", attr.Entry)
		return nil
	}
	p, ok := a.Value.(*ast.Primitive)
	if !ok {
		t.Errorf("attribute is not a primitive: %s", a.Value)
		return nil
	}
	return p.V
}

func names(xs []pathname.QualifiedPrototypeName) []string {
	out := []string{}
	for _, x := range xs {
		out = append(out, x.String())
	}
	return out
}

func TestChain0(t *testing.T) {
	model, err := buildModel(t, `
	- configure: prototype(A:Base)
	- copy: prototype(A:Tag)
	  from: prototype(A:Base)
	- copy: prototype(A:Special)
	  from: prototype(A:Tag)
	`, nil)
	if !assert.NoError(t, err) {
		return
	}
	special := pathname.MustParseQualifiedPrototypeName("A:Special")
	exp := []string{"A:Special", "A:Tag", "A:Base"}
	if diff := pretty.Compare(exp, names(model.Chain(special))); diff != "" {
		t.Errorf("chain differs: (-want +got)\n%s", diff)
	}
	assert.Equal(t, []string{"A:Base", "A:Special", "A:Tag"}, names(model.Prototypes()))
	assert.True(t, model.Inheritance().IsA(special, pathname.MustParseQualifiedPrototypeName("A:Base")))

	p, exists := model.Prototype(special)
	if assert.True(t, exists) {
		parent, ok := p.Parent()
		assert.True(t, ok)
		assert.Equal(t, "A:Tag", parent.String())
	}
}

func TestModelErrors0(t *testing.T) {
	type test struct { // an individual test
		name   string
		code   string
		strict bool
		count  int // number of errors
	}
	testCases := []test{}

	{
		testCases = append(testCases, test{
			name: "inheritance cycle",
			code: `
			- copy: prototype(A:X)
			  from: prototype(A:Y)
			- copy: prototype(A:Y)
			  from: prototype(A:X)
			`,
			count: 1,
		})
	}
	{
		testCases = append(testCases, test{
			name: "undeclared parent",
			code: `
			- copy: prototype(A:X)
			  from: prototype(A:Missing)
			`,
			count: 1,
		})
	}
	{
		testCases = append(testCases, test{
			name: "ambiguous inheritance",
			code: `
			- configure: prototype(A:One)
			- configure: prototype(A:Two)
			- copy: prototype(A:X)
			  from: prototype(A:One)
			- copy: prototype(A:X)
			  from: prototype(A:Two)
			`,
			strict: true,
			count:  1,
		})
	}
	{
		testCases = append(testCases, test{
			name: "unknown object prototypes",
			code: `
			- assign: page
			  object: A:Missing
			- assign: other
			  object: A:AlsoMissing
			`,
			count: 2,
		})
	}

	names := []string{}
	for i, tc := range testCases { // run all the tests
		if tc.name == "" {
			t.Errorf("test #%d: not named", i)
			continue
		}
		if util.StrInList(tc.name, names) {
			t.Errorf("test #%d: duplicate sub test name of: %s", i, tc.name)
			continue
		}
		names = append(names, tc.name)

		t.Run(fmt.Sprintf("test #%d (%s)", i, tc.name), func(t *testing.T) {
			_, err := buildModel(t, tc.code, &Config{StrictInheritance: tc.strict})
			if err == nil {
				t.Errorf("test #%d: expected an error", i)
				return
			}
			errs := errwrap.Errors(err)
			if len(errs) != tc.count {
				t.Errorf("test #%d: expected %d errors, got: %d", i, tc.count, len(errs))
			}
			for _, e := range errs {
				if _, ok := e.(*index.Error); !ok {
					t.Errorf("test #%d: unexpected error type %T: %+v", i, e, e)
				}
			}
			t.Logf("test #%d: error: %s", i, errwrap.String(err))
		})
	}
}

func TestAmbiguousNotStrict0(t *testing.T) {
	model, err := buildModel(t, `
	- configure: prototype(A:One)
	- configure: prototype(A:Two)
	- copy: prototype(A:X)
	  from: prototype(A:One)
	- copy: prototype(A:X)
	  from: prototype(A:Two)
	`, nil)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"A:X", "A:Two"}, names(model.Chain(pathname.MustParseQualifiedPrototypeName("A:X"))))
}

const attributesCode = `
- configure: prototype(A:Tag)
  body:
    - assign: tagName
      value: div
    - assign: content
      value: x
    - assign: title
      value: untitled
- copy: prototype(A:Special)
  from: prototype(A:Tag)
  body:
    - assign: tagName
      value: section
- assign: defaults.title
  value: hello
- assign: page
  object: A:Special
  body:
    - assign: content
      value: y
    - assign: extra
      value: 42
- erase: page.extra
- copy: page.title
  from: /defaults.title
`

func instance(t *testing.T, model *Model, path, prototype string, applied map[string]interface{}) *Instance {
	p := pathname.MustParseAbsolute(path)
	name := pathname.MustParseQualifiedPrototypeName(prototype)
	own := model.Resolve(p)
	inst, err := model.Instantiate(p.Append(pathname.PrototypeCall(name)), name, own.Bases, applied)
	if err != nil {
		t.Fatalf("instantiate failed: %+v", err)
	}
	return inst
}

func TestAttributes0(t *testing.T) {
	model, err := buildModel(t, attributesCode, nil)
	if !assert.NoError(t, err) {
		return
	}
	page := instance(t, model, "/page", "A:Special", nil)

	assert.Equal(t, "section", primitive(t, page.Attribute(pathname.Property("tagName"))))
	assert.Equal(t, "y", primitive(t, page.Attribute(pathname.Property("content"))))
	assert.Nil(t, page.Attribute(pathname.Property("extra")), "erased")

	title := page.Attribute(pathname.Property("title"))
	assert.Equal(t, "hello", primitive(t, title), "copied")
	if assert.NotNil(t, title.Copy) {
		assert.Equal(t, "/page.title", title.Copy.Decl.Path().String())
	}

	assert.Equal(t, []string{"tagName", "content", "title"}, page.PropertyKeys())
	assert.Equal(t, 3, len(page.PropertyAttributes()))
	assert.Equal(t, "A:Special@/page.prototype(A:Special)", page.String())
}

func TestApplied0(t *testing.T) {
	model, err := buildModel(t, attributesCode, nil)
	if !assert.NoError(t, err) {
		return
	}
	page := instance(t, model, "/page", "A:Special", map[string]interface{}{
		"content": "applied",
		"new":     int64(7),
	})
	content := page.Attribute(pathname.Property("content"))
	if assert.NotNil(t, content) {
		assert.True(t, content.Applied)
		assert.Equal(t, "applied", content.Value)
	}
	assert.Equal(t, []string{"tagName", "content", "title", "new"}, page.PropertyKeys())
}

func TestExtensionBases0(t *testing.T) {
	model, err := buildModel(t, `
	- configure: prototype(A:Tag)
	  body:
	    - assign: tagName
	      value: div
	- configure: prototype(A:Page)
	  body:
	    - assign: body
	      object: A:Tag
	- assign: prototype(A:Page).body.prototype(A:Tag).tagName
	  value: main
	- assign: other.prototype(A:Tag).tagName
	  value: unused
	- assign: page
	  object: A:Page
	`, nil)
	if !assert.NoError(t, err) {
		return
	}
	page := instance(t, model, "/page", "A:Page", nil)
	body := page.Attribute(pathname.Property("body"))
	if !assert.NotNil(t, body) {
		return
	}

	tag := pathname.MustParseQualifiedPrototypeName("A:Tag")
	eval := page.EvaluationPath.Append(pathname.Property("body"), pathname.PrototypeCall(tag))
	inst, err := model.Instantiate(eval, tag, body.Bases, nil)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "main", primitive(t, inst.Attribute(pathname.Property("tagName"))))

	bases := []string{}
	for _, b := range inst.Bases {
		bases = append(bases, b.String())
	}
	exp := []string{
		"/prototype(A:Tag)",
		"/prototype(A:Page).body.prototype(A:Tag)",
		"/prototype(A:Page).body",
	}
	if diff := pretty.Compare(exp, bases); diff != "" {
		t.Errorf("bases differ: (-want +got)\n%s", diff)
	}
	assert.Equal(t, 2, len(model.Extensions(tag)))
}

func TestErasureThenAssign0(t *testing.T) {
	model, err := buildModel(t, `
	- assign: a.b
	  value: old
	- assign: a.c
	  value: kept
	- erase: a
	- assign: a.c
	  value: new
	`, nil)
	if !assert.NoError(t, err) {
		return
	}
	a := model.Resolve(pathname.MustParseAbsolute("/a"))
	keys := []string{}
	for _, k := range model.Keys(a.Bases) {
		keys = append(keys, k.String())
	}
	assert.Equal(t, []string{"c"}, keys)
	assert.Equal(t, "new", primitive(t, model.Attribute(a.Bases, pathname.Property("c"))))
	assert.False(t, model.Attribute(a.Bases, pathname.Property("b")).Exists())
}

func TestCopyCycle0(t *testing.T) {
	model, err := buildModel(t, `
	- copy: a
	  from: b
	- copy: b
	  from: a
	`, nil)
	if !assert.NoError(t, err) {
		return
	}
	attr := model.Resolve(pathname.MustParseAbsolute("/a"))
	assert.False(t, attr.HasValue())
}
