package object

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is one frame in the scope chain. Frames are shared by
// reference: every closure capturing a frame sees later mutations to it,
// and a frame lives exactly as long as something still points at it.
type Environment struct {
	ID       uint64
	Bindings map[string]Object
	Outer    *Environment

	mu sync.RWMutex
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:       nextEnvID(),
		Bindings: make(map[string]Object),
	}
}

// NewEnclosedEnvironment initializes a frame parented to outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	return env
}

// Get walks the chain inward to outward.
func (e *Environment) Get(name string) (Object, bool) {
	e.mu.RLock()
	val, ok := e.Bindings[name]
	e.mu.RUnlock()

	if ok {
		return val, true
	}
	if e.Outer != nil {
		return e.Outer.Get(name)
	}
	return nil, false
}

// Has reports whether name is bound anywhere in the chain.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Define binds name in this frame, shadowing any outer binding.
func (e *Environment) Define(name string, val Object) Object {
	e.mu.Lock()
	e.Bindings[name] = val
	e.mu.Unlock()

	slog.Debug("binding value",
		slog.Any("type", val.Type()),
		slog.String("name", name),
		slog.Uint64("env", e.ID))
	return val
}

// Set updates the binding in the frame where name is already bound. If the
// name is unbound everywhere it is defined in this frame instead; plain
// assignment never fails.
func (e *Environment) Set(name string, val Object) Object {
	if e.setExisting(name, val) {
		return val
	}
	return e.Define(name, val)
}

func (e *Environment) setExisting(name string, val Object) bool {
	e.mu.Lock()
	if _, ok := e.Bindings[name]; ok {
		e.Bindings[name] = val
		e.mu.Unlock()
		return true
	}
	e.mu.Unlock()

	if e.Outer != nil {
		return e.Outer.setExisting(name, val)
	}
	return false
}

// GetLocal returns a binding from this frame only, without walking outers.
func (e *Environment) GetLocal(name string) (Object, bool) {
	e.mu.RLock()
	val, ok := e.Bindings[name]
	e.mu.RUnlock()
	return val, ok
}

// DefineLocal is Define without the debug log, for hot paths like
// parameter binding.
func (e *Environment) DefineLocal(name string, val Object) {
	e.mu.Lock()
	e.Bindings[name] = val
	e.mu.Unlock()
}

// RemoveLocal drops a binding from this frame only. Used to restore
// transient bindings such as loop variables.
func (e *Environment) RemoveLocal(name string) {
	e.mu.Lock()
	delete(e.Bindings, name)
	e.mu.Unlock()
}
