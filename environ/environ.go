// Package environ provides lexically scoped symbol tables.
package environ

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var ErrUndefined = errors.New("undefined identifier")

type Environ[T any] interface {
	Resolve(string) (T, error)
	Define(string, T)
	Exists(string) bool
	Names() []string
	Len() int
}

type Env[T any] struct {
	values map[string]T
	parent Environ[T]
}

func Empty[T any]() Environ[T] {
	return Enclosed[T](nil)
}

func Enclosed[T any](parent Environ[T]) Environ[T] {
	e := Env[T]{
		values: make(map[string]T),
		parent: parent,
	}
	return &e
}

// Len counts the bindings of the innermost scope only.
func (e *Env[T]) Len() int {
	return len(e.values)
}

// Names lists every visible identifier, shadowed ones once.
func (e *Env[T]) Names() []string {
	names := slices.Collect(maps.Keys(e.values))
	if e.parent == nil {
		return names
	}
	for _, n := range e.parent.Names() {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	return names
}

// Define binds ident in the innermost scope, shadowing any outer
// binding of the same name.
func (e *Env[T]) Define(ident string, value T) {
	e.values[ident] = value
}

func (e *Env[T]) Exists(ident string) bool {
	if _, ok := e.values[ident]; ok {
		return true
	}
	return e.parent != nil && e.parent.Exists(ident)
}

func (e *Env[T]) Resolve(ident string) (T, error) {
	value, ok := e.values[ident]
	if ok {
		return value, nil
	}
	if e.parent != nil {
		return e.parent.Resolve(ident)
	}
	var zero T
	return zero, fmt.Errorf("%s: %w", ident, ErrUndefined)
}
