package scope

import (
	"log/slog"
	"maps"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/vango-dev/dnd/internal/errors"
)

// maxDigestPasses bounds how often Digest re-runs watchers that keep changing.
const maxDigestPasses = 10

// ErrDigestLimit is returned when watchers do not settle.
var ErrDigestLimit = errors.New("E002")

// Locals are variables visible to a single evaluation only.
type Locals map[string]any

// Evaluator evaluates bound expressions.
type Evaluator interface {
	// Eval returns the value of expr.
	Eval(expr string, locals Locals) (any, error)

	// Invoke runs expr for its side effects.
	Invoke(expr string, locals Locals) error
}

// Func is a closure standing in for an expression.
type Func func(sc *Scope, locals Locals) any

type watcher struct {
	expr        string
	fn          func(value, old any)
	last        any
	initialized bool
	removed     bool
}

// Scope is a variable store with an expression evaluator and watchers.
type Scope struct {
	mu       sync.RWMutex
	vars     map[string]any
	funcs    map[string]Func
	programs map[string]*vm.Program

	watchers []*watcher
	logger   *slog.Logger
}

// New creates an empty scope.
func New() *Scope {
	return &Scope{
		vars:     make(map[string]any),
		funcs:    make(map[string]Func),
		programs: make(map[string]*vm.Program),
		logger:   slog.Default().With("component", "scope"),
	}
}

// Set assigns a scope variable.
func (s *Scope) Set(name string, value any) {
	s.mu.Lock()
	s.vars[name] = value
	s.mu.Unlock()
}

// Get returns a scope variable.
func (s *Scope) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Values returns a snapshot of all scope variables.
func (s *Scope) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.vars)
}

// Func registers fn as the implementation of the exact expression text.
func (s *Scope) Func(exprText string, fn Func) {
	s.mu.Lock()
	s.funcs[strings.TrimSpace(exprText)] = fn
	s.mu.Unlock()
}

// Eval implements Evaluator. Empty expressions evaluate to nil.
func (s *Scope) Eval(exprText string, locals Locals) (any, error) {
	exprText = strings.TrimSpace(exprText)
	if exprText == "" {
		return nil, nil
	}
	if fn, ok := s.lookupFunc(exprText); ok {
		return fn(s, locals), nil
	}
	return s.run(exprText, locals)
}

// Invoke implements Evaluator. Statements may be separated by ';'.
func (s *Scope) Invoke(exprText string, locals Locals) error {
	exprText = strings.TrimSpace(exprText)
	if exprText == "" {
		return nil
	}
	if fn, ok := s.lookupFunc(exprText); ok {
		fn(s, locals)
		return nil
	}
	for _, stmt := range splitStatements(exprText) {
		if name, rhs, ok := splitAssignment(stmt); ok {
			v, err := s.Eval(rhs, locals)
			if err != nil {
				return err
			}
			s.Set(name, v)
			continue
		}
		if _, err := s.Eval(stmt, locals); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scope) lookupFunc(exprText string) (Func, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.funcs[exprText]
	return fn, ok
}

func (s *Scope) run(exprText string, locals Locals) (any, error) {
	program, err := s.compile(exprText)
	if err != nil {
		return nil, err
	}

	env := s.Values()
	for k, v := range locals {
		env[k] = v
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, errors.New("E001").WithDetail(exprText).Wrap(err)
	}
	return out, nil
}

func (s *Scope) compile(exprText string) (*vm.Program, error) {
	s.mu.RLock()
	program, ok := s.programs[exprText]
	s.mu.RUnlock()
	if ok {
		return program, nil
	}

	// Scope variables such as count or len must not resolve to builtins.
	program, err := expr.Compile(exprText, expr.AllowUndefinedVariables(), expr.DisableAllBuiltins())
	if err != nil {
		return nil, errors.New("E001").WithDetail(exprText).Wrap(err)
	}

	s.mu.Lock()
	s.programs[exprText] = program
	s.mu.Unlock()
	return program, nil
}

// Watch calls fn whenever a Digest finds that expr changed value. The first
// Digest after Watch always calls fn. The returned function removes the watch.
func (s *Scope) Watch(exprText string, fn func(value, old any)) func() {
	w := &watcher{expr: exprText, fn: fn}
	s.watchers = append(s.watchers, w)
	return func() {
		w.removed = true
	}
}

// Digest re-evaluates watchers until no value changes.
func (s *Scope) Digest() error {
	for pass := 0; pass < maxDigestPasses; pass++ {
		dirty := false
		for _, w := range s.live() {
			v, err := s.Eval(w.expr, nil)
			if err != nil {
				s.logger.Warn("watch expression failed", "expr", w.expr, "error", err)
				continue
			}
			if w.initialized && reflect.DeepEqual(v, w.last) {
				continue
			}
			old := w.last
			w.last = v
			w.initialized = true
			w.fn(v, old)
			dirty = true
		}
		if !dirty {
			return nil
		}
	}
	return ErrDigestLimit
}

func (s *Scope) live() []*watcher {
	kept := s.watchers[:0]
	for _, w := range s.watchers {
		if !w.removed {
			kept = append(kept, w)
		}
	}
	s.watchers = kept
	return append([]*watcher(nil), kept...)
}

// Truthy reports whether v counts as true in a bound expression.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}
