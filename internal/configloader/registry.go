// Package configloader locates config files and keeps a process-wide,
// type-keyed registry of loaded config values, so packages such as logging
// can read their block without importing the daemon or client config.
//
//	configloader.StoreConfig(&cfg.Logger)
//	logCfg := configloader.MustGetConfig[*logging.Config]()
package configloader

import (
	"fmt"
	"reflect"
	"sync"
)

var registry sync.Map // reflect.Type -> value

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterConfig registers cfg as the value of type T. It panics if T is
// already registered.
func RegisterConfig[T any](cfg T) {
	t := typeKey[T]()
	if _, loaded := registry.LoadOrStore(t, cfg); loaded {
		panic(fmt.Sprintf("config already registered for type %v", t))
	}
}

// StoreConfig registers cfg as the value of type T, replacing any earlier value.
func StoreConfig[T any](cfg T) {
	registry.Store(typeKey[T](), cfg)
}

// MustGetConfig returns the value registered for T and panics if there is none.
func MustGetConfig[T any]() T {
	cfg, ok := TryGetConfig[T]()
	if !ok {
		panic(fmt.Sprintf("no config registered for type %v", typeKey[T]()))
	}
	return cfg
}

// TryGetConfig returns the value registered for T.
func TryGetConfig[T any]() (T, bool) {
	if val, ok := registry.Load(typeKey[T]()); ok {
		return val.(T), true
	}
	var zero T
	return zero, false
}

// unregisterConfig removes T; used by tests.
func unregisterConfig[T any]() {
	registry.Delete(typeKey[T]())
}
