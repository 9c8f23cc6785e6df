package shader

import (
	"fmt"
	"sort"
	"sync"
)

// Factory rebuilds a State from its description and optional texture.
type Factory func(desc Desc, tex *Texture) *State

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

func init() {
	Register("solid", func(d Desc, _ *Texture) *State { return Solid(d.Color) })
	Register("interpolated", func(Desc, *Texture) *State { return Interpolated() })
	Register("blit-rgba", func(_ Desc, tex *Texture) *State { return Blit(tex, KindBlitRGBA) })
	Register("blit-rgb1", func(_ Desc, tex *Texture) *State { return Blit(tex, KindBlitRGB1) })
}

// Register makes a fragment routine available by name, following the
// database/sql driver pattern:
//
//	func init() {
//	    shader.Register("checker", newChecker)
//	}
//
// Register panics if factory is nil or the name is already registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("shader: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("shader: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes a routine from the registry.
// This is primarily useful for testing to clean up between tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// New rebuilds a State from desc. The returned State carries desc
// (including its Opaque hint) even if the factory set a different one.
func New(desc Desc, tex *Texture) (*State, error) {
	registryMu.RLock()
	factory, ok := factories[desc.Name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("shader: unknown routine %q (forgotten import?)", desc.Name)
	}
	s := factory(desc, tex)
	if s == nil {
		return nil, fmt.Errorf("shader: factory %q returned nil", desc.Name)
	}
	s.Desc = desc
	return s, nil
}

// Names returns the registered routine names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registered reports whether a routine named name is registered.
func Registered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}
