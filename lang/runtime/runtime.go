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

// Package runtime evaluates paths of a semantic model. Every attribute goes
// through the same chain: the @if conditions, the value itself, the @process
// processors and finally the cast to the requested type.
package runtime

import (
	"fmt"
	"time"

	"github.com/fusionlang/fusion/lang/ast"
	"github.com/fusionlang/fusion/lang/expr"
	"github.com/fusionlang/fusion/lang/interfaces"
	"github.com/fusionlang/fusion/lang/layers"
	"github.com/fusionlang/fusion/lang/lazy"
	"github.com/fusionlang/fusion/lang/pathname"
	"github.com/fusionlang/fusion/lang/position"
	"github.com/fusionlang/fusion/lang/semantic"
	"github.com/fusionlang/fusion/lang/types"
	"github.com/fusionlang/fusion/prometheus"
	"github.com/fusionlang/fusion/util/errwrap"

	"github.com/google/uuid"
)

// Runtime evaluates paths. Once Init has run, it can serve any number of
// requests concurrently. Each request is single threaded.
type Runtime struct {
	Model *semantic.Model

	// Evaluator evaluates expressions. If it is nil, the hil evaluator is
	// used.
	Evaluator interfaces.ExpressionEvaluator

	// Implementations maps implementation names to their code.
	Implementations map[string]interfaces.ObjectImplementation

	// Aliases maps prototype names to implementation names, for the
	// prototypes which don't name their implementation with @class. Without
	// an alias, the implementation has the name of the prototype.
	Aliases map[string]string

	// Dsl evaluates embedded dsl snippets. Snippets are an error without
	// it.
	Dsl interfaces.DslHandler

	// Cache is looked up before every object evaluation. It defaults to
	// NoCache.
	Cache interfaces.Cache

	// Metrics is optional.
	Metrics *prometheus.Metrics

	// SortMetaAttributes orders the @if and @process children by their
	// @position. By default they run in declaration order.
	SortMetaAttributes bool

	Debug bool
	Logf  func(format string, v ...interface{})
}

// Init validates the runtime and fills in the defaults.
func (obj *Runtime) Init() error {
	if obj.Model == nil {
		return fmt.Errorf("the Model is nil")
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	if obj.Evaluator == nil {
		obj.Evaluator = &expr.Evaluator{
			Debug: obj.Debug,
			Logf: func(format string, v ...interface{}) {
				obj.Logf("expr: "+format, v...)
			},
		}
	}
	if obj.Implementations == nil {
		obj.Implementations = make(map[string]interfaces.ObjectImplementation)
	}
	if obj.Cache == nil {
		obj.Cache = &NoCache{}
	}
	return nil
}

// Evaluate evaluates the attribute at a path in a context, and casts it to a
// type if it is not nil. A cancelled or missing attribute results in nil. Any
// error aborts the whole request and is returned as an *Error.
func (obj *Runtime) Evaluate(path pathname.AbsolutePath, ctx *layers.Context, typ *types.Type) (interface{}, error) {
	start := time.Now()
	req := &request{
		runtime: obj,
		id:      uuid.New().String(),
		active:  make(map[string]struct{}),
	}
	if obj.Debug {
		obj.Logf("request %s: evaluating %s", req.id, path)
	}

	value, cancelled, err := req.evaluate(path, ctx, typ)
	switch {
	case err != nil:
		obj.Metrics.UpdateEvaluationsTotal(prometheus.OutcomeError, time.Since(start))
		return nil, req.wrap(path, "evaluation failed", err)
	case cancelled:
		obj.Metrics.UpdateEvaluationsTotal(prometheus.OutcomeCancelled, time.Since(start))
		if obj.Debug {
			obj.Logf("request %s: %s was cancelled", req.id, path)
		}
		return nil, nil
	}
	obj.Metrics.UpdateEvaluationsTotal(prometheus.OutcomeValue, time.Since(start))
	return value, nil
}

// request is the state of a single evaluation request.
type request struct {
	runtime *Runtime
	id      string

	stack  []Frame
	active map[string]struct{} // keys of the paths on the stack
}

// evaluate walks a path from the root. Whenever the walk goes through an
// attribute which is an object, it continues into the attributes of that
// object. The @context of every attribute on the way is pushed.
func (obj *request) evaluate(path pathname.AbsolutePath, ctx *layers.Context, typ *types.Type) (interface{}, bool, error) {
	m := obj.runtime.Model
	attr := &semantic.Attribute{Bases: m.Root()}
	evaluationPath := pathname.Root()
	var owner *object

	for _, segment := range path.Segments() {
		if segment.IsPrototypeCall() {
			continue // implied by the values
		}
		if !evaluationPath.IsRoot() {
			var err error
			if ctx, err = obj.pushContext(attr, evaluationPath, ctx, owner); err != nil {
				return nil, false, err
			}
		}

		if entry := attr.Entry; entry != nil && !attr.Applied {
			if a, ok := entry.Decl.(*ast.Assignment); ok {
				if o, ok := a.Value.(*ast.Object); ok {
					instancePath := evaluationPath.Append(pathname.PrototypeCall(o.Prototype))
					instance, err := m.Instantiate(instancePath, o.Prototype, attr.Bases, nil)
					if err != nil {
						return nil, false, err
					}
					owner = &object{request: obj, instance: instance, ctx: ctx}
					evaluationPath = instancePath
					attr = instance.Attribute(segment)
					if attr == nil {
						return nil, false, nil
					}
					evaluationPath = evaluationPath.Append(segment)
					continue
				}
			}
		}
		attr = m.Attribute(attr.Bases, segment)
		evaluationPath = evaluationPath.Append(segment)
	}
	if !attr.Exists() {
		return nil, false, nil
	}

	node, err := obj.chain(attr, evaluationPath, ctx, typ, owner)
	if err != nil {
		return nil, false, err
	}
	if node.Cancelled() {
		return nil, true, nil
	}
	value, err := node.Value()
	return value, false, err
}

// chain builds the evaluation chain of an attribute. The conditions are
// checked right away, so the result is cancelled before anything reads it.
func (obj *request) chain(attr *semantic.Attribute, path pathname.AbsolutePath, ctx *layers.Context, typ *types.Type, owner *object) (*lazy.Node, error) {
	ctx, err := obj.pushContext(attr, path, ctx, owner)
	if err != nil {
		return nil, err
	}

	pending := lazy.New(path, "value", func() (interface{}, error) {
		return obj.value(attr, path, ctx, owner)
	})

	conditions, err := obj.metaChildren(attr, path, interfaces.MetaIf, ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(conditions) > 0 {
		pendingCtx := ctx.Push(layers.LayerOf(interfaces.MetaIf, map[string]interface{}{
			interfaces.ValueName: pending,
		}))
		for _, c := range conditions {
			node, err := obj.chain(c.attr, c.path, pendingCtx, types.TypeBool, owner)
			if err != nil {
				return nil, err
			}
			if node.Cancelled() {
				return obj.cancel(pending, c.path, "condition was cancelled"), nil
			}
			v, err := node.Value()
			if err != nil {
				return nil, err
			}
			if v == nil {
				obj.runtime.Logf("warning: condition %s is null, which is false", c.path)
				return obj.cancel(pending, c.path, "condition is null"), nil
			}
			if b, ok := v.(bool); ok && !b {
				return obj.cancel(pending, c.path, "condition is false"), nil
			}
		}
	}

	node := pending
	processors, err := obj.metaChildren(attr, path, interfaces.MetaProcess, ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, p := range processors {
		p := p
		node = node.MapResult("process", func(v interface{}) (interface{}, error) {
			processorCtx := ctx.Push(layers.LayerOf(interfaces.MetaProcess, map[string]interface{}{
				interfaces.ValueName: v,
			}))
			processed, err := obj.chain(p.attr, p.path, processorCtx, nil, owner)
			if err != nil {
				return nil, err
			}
			if processed.Cancelled() {
				return v, nil // pass through
			}
			return processed.Value()
		})
	}

	obj.runtime.Metrics.UpdateAttributesTotal(false)
	if typ == nil {
		return node, nil
	}
	return node.MapResult("cast", func(v interface{}) (interface{}, error) {
		result, err := types.Cast(v, typ)
		if err != nil {
			return nil, obj.error(path, fmt.Sprintf("can't cast %s", path), err)
		}
		return result, nil
	}), nil
}

func (obj *request) cancel(pending *lazy.Node, condition pathname.AbsolutePath, reason string) *lazy.Node {
	if obj.runtime.Debug {
		obj.runtime.Logf("request %s: %s cancelled by %s: %s", obj.id, pending.Path(), condition, reason)
	}
	obj.runtime.Metrics.UpdateAttributesTotal(true)
	return pending.CancelEvaluation()
}

// value evaluates the value of an attribute. It keeps the call stack.
func (obj *request) value(attr *semantic.Attribute, path pathname.AbsolutePath, ctx *layers.Context, owner *object) (interface{}, error) {
	k := path.Key()
	if _, exists := obj.active[k]; exists {
		return nil, obj.error(path, "recursive evaluation", nil)
	}
	obj.stack = append(obj.stack, Frame{Path: path, Entry: attr.Entry})
	obj.active[k] = struct{}{}
	defer func() {
		obj.stack = obj.stack[:len(obj.stack)-1]
		delete(obj.active, k)
	}()

	if attr.Applied {
		return attr.Value, nil
	}
	if attr.Entry == nil {
		return nil, nil
	}
	a, ok := attr.Entry.Decl.(*ast.Assignment)
	if !ok {
		return nil, nil // erased
	}

	switch v := a.Value.(type) {
	case *ast.Primitive:
		return v.V, nil

	case *ast.Expression:
		if owner != nil {
			ctx = ctx.Push(layers.LayerOf(interfaces.ThisName, map[string]interface{}{
				interfaces.ThisName: owner,
			}))
		}
		result, err := obj.runtime.Evaluator.Evaluate(v.Code, ctx)
		if err != nil {
			return nil, obj.wrap(path, "expression failed", err)
		}
		return result, nil

	case *ast.Object:
		return obj.object(attr, path, v.Prototype, ctx)

	case *ast.Dsl:
		if obj.runtime.Dsl == nil {
			return nil, obj.error(path, fmt.Sprintf("no handler for dsl %s", v.Identifier), nil)
		}
		result, err := obj.runtime.Dsl(v.Identifier, v.Code, ctx)
		if err != nil {
			return nil, obj.wrap(path, fmt.Sprintf("dsl %s failed", v.Identifier), err)
		}
		return result, nil
	}
	return nil, obj.error(path, fmt.Sprintf("unknown value %T", a.Value), nil)
}

// object evaluates an object through its implementation.
func (obj *request) object(attr *semantic.Attribute, path pathname.AbsolutePath, prototype pathname.QualifiedPrototypeName, ctx *layers.Context) (interface{}, error) {
	instancePath := path.Append(pathname.PrototypeCall(prototype))

	if value, hit := obj.runtime.Cache.Lookup(instancePath); hit {
		obj.runtime.Metrics.UpdateCacheLookupsTotal(true)
		if obj.runtime.Debug {
			obj.runtime.Logf("request %s: cache hit for %s", obj.id, instancePath)
		}
		return value, nil
	}
	obj.runtime.Metrics.UpdateCacheLookupsTotal(false)

	instance, err := obj.runtime.Model.Instantiate(instancePath, prototype, attr.Bases, nil)
	if err != nil {
		return nil, obj.wrap(path, "can't instantiate", err)
	}
	o := &object{request: obj, instance: instance, ctx: ctx}

	applies, err := obj.metaChildren(attr, path, interfaces.MetaApply, ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(applies) > 0 {
		applied := make(map[string]interface{})
		for _, a := range applies {
			node, err := obj.chain(a.attr, a.path, ctx, types.TypeMap, nil)
			if err != nil {
				return nil, err
			}
			if node.Cancelled() {
				continue
			}
			v, err := node.Value()
			if err != nil {
				return nil, err
			}
			bindings, ok := v.(map[string]interface{})
			if !ok && v != nil {
				return nil, obj.error(a.path, fmt.Sprintf("can't apply a value of type %T", v), nil)
			}
			for name, value := range bindings {
				applied[name] = value
			}
		}
		if instance, err = obj.runtime.Model.Instantiate(instancePath, prototype, attr.Bases, applied); err != nil {
			return nil, obj.wrap(path, "can't instantiate", err)
		}
		o.instance = instance
	}

	name, err := obj.implementation(o)
	if err != nil {
		return nil, err
	}
	impl, exists := obj.runtime.Implementations[name]
	if !exists {
		return nil, obj.error(path, fmt.Sprintf("no implementation %s for prototype %s", name, prototype), nil)
	}
	if obj.runtime.Debug {
		obj.runtime.Logf("request %s: evaluating %s with %s", obj.id, instance, name)
	}
	result, err := impl.Evaluate(o)
	if err != nil {
		return nil, obj.wrap(path, fmt.Sprintf("%s failed", name), err)
	}
	return result, nil
}

// implementation returns the name of the implementation of an object. It is
// the value of @class if there is one. Otherwise the chain is walked, nearest
// prototype first, for an alias or a registered implementation of the same
// name.
func (obj *request) implementation(o *object) (string, error) {
	key := pathname.Meta(interfaces.MetaClass)
	if attr := o.instance.Attribute(key); attr != nil && attr.HasValue() {
		node, err := obj.chain(attr, o.Path().Append(key), o.ctx, types.TypeStr, o)
		if err != nil {
			return "", err
		}
		if !node.Cancelled() {
			v, err := node.Value()
			if err != nil {
				return "", err
			}
			if s, ok := v.(string); ok && s != "" {
				return s, nil
			}
		}
	}
	for _, p := range o.instance.Chain {
		prototype := p.String()
		if name, exists := obj.runtime.Aliases[prototype]; exists {
			return name, nil
		}
		if _, exists := obj.runtime.Implementations[prototype]; exists {
			return prototype, nil
		}
	}
	return o.instance.Prototype.String(), nil
}

// pushContext pushes the @context children of an attribute. They are lazy, and
// are evaluated in the context they are declared in.
func (obj *request) pushContext(attr *semantic.Attribute, path pathname.AbsolutePath, ctx *layers.Context, owner *object) (*layers.Context, error) {
	children, err := obj.metaChildren(attr, path, interfaces.MetaContext, ctx, owner)
	if err != nil {
		return nil, err
	}
	bindings := make(map[string]interface{})
	for _, c := range children {
		if c.attr.Key.IsMeta() {
			continue // @context itself
		}
		c := c
		bindings[c.attr.Name()] = lazy.New(c.path, "context", func() (interface{}, error) {
			node, err := obj.chain(c.attr, c.path, ctx, nil, owner)
			if err != nil {
				return nil, err
			}
			if node.Cancelled() {
				return nil, nil
			}
			return node.Value()
		})
	}
	if len(bindings) == 0 {
		return ctx, nil
	}
	return ctx.Push(layers.LayerOf(interfaces.ContextLayerName, bindings)), nil
}

// child is a meta attribute child, such as one condition of @if.
type child struct {
	attr *semantic.Attribute
	path pathname.AbsolutePath
}

// metaChildren returns the meta attribute itself if it has a value, followed
// by its children. The children are in declaration order, unless they have to
// be sorted by their @position.
func (obj *request) metaChildren(attr *semantic.Attribute, path pathname.AbsolutePath, name string, ctx *layers.Context, owner *object) ([]child, error) {
	if len(attr.Bases) == 0 {
		return nil, nil
	}
	m := obj.runtime.Model
	meta := m.Meta(attr.Bases, name)
	metaPath := path.Append(meta.Key)
	out := []child{}
	if meta.HasValue() {
		out = append(out, child{attr: meta, path: metaPath})
	}

	children := []child{}
	for _, c := range m.Attributes(meta.Bases) {
		if !c.HasValue() || !c.Key.IsProperty() {
			continue
		}
		children = append(children, child{attr: c, path: metaPath.Append(c.Key)})
	}
	if obj.runtime.SortMetaAttributes && len(children) > 1 {
		sorted, err := obj.sortChildren(children, ctx, owner)
		if err != nil {
			return nil, err
		}
		children = sorted
	}
	return append(out, children...), nil
}

func (obj *request) sortChildren(children []child, ctx *layers.Context, owner *object) ([]child, error) {
	byName := make(map[string]child)
	attrs := make(map[string]*semantic.Attribute)
	keys := []string{}
	for _, c := range children {
		byName[c.attr.Name()] = c
		attrs[c.attr.Name()] = c.attr
		keys = append(keys, c.attr.Name())
	}
	sorted, err := obj.sort(keys, attrs, func(name string) pathname.AbsolutePath {
		return byName[name].path
	}, ctx, owner)
	if err != nil {
		return nil, err
	}
	out := []child{}
	for _, name := range sorted {
		out = append(out, byName[name])
	}
	return out, nil
}

// sort orders some attributes by their @position.
func (obj *request) sort(keys []string, attrs map[string]*semantic.Attribute, pathOf func(string) pathname.AbsolutePath, ctx *layers.Context, owner *object) ([]string, error) {
	if len(keys) == 0 {
		return []string{}, nil
	}
	positions := make(map[string]*position.KeyPosition)
	for _, k := range keys {
		attr := attrs[k]
		if attr == nil || len(attr.Bases) == 0 {
			continue
		}
		meta := obj.runtime.Model.Meta(attr.Bases, interfaces.MetaPosition)
		if !meta.HasValue() {
			continue
		}
		path := pathOf(k).Append(meta.Key)
		node, err := obj.chain(meta, path, ctx, types.TypeStr, owner)
		if err != nil {
			return nil, err
		}
		if node.Cancelled() {
			continue
		}
		v, err := node.Value()
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		p, err := position.Parse(types.ToString(v))
		if err != nil {
			return nil, obj.error(path, "invalid position", err)
		}
		positions[k] = p
	}
	sorter := &position.Sorter{
		Keys:      keys,
		Positions: positions,
	}
	sorted, err := sorter.Sort()
	if err != nil {
		return nil, obj.error(pathOf(keys[0]).Parent(), "can't sort", err)
	}
	return sorted, nil
}

// error builds a runtime error with the current call stack.
func (obj *request) error(path pathname.AbsolutePath, message string, cause error) error {
	return &Error{
		Request: obj.id,
		Message: message,
		Path:    path,
		Frames:  append([]Frame{}, obj.stack...),
		Cause:   cause,
	}
}

// wrap passes runtime errors on unchanged, and turns anything else into one.
func (obj *request) wrap(path pathname.AbsolutePath, message string, err error) error {
	if e, ok := errwrap.Cause(err).(*Error); ok {
		return e
	}
	return obj.error(path, message, err)
}
