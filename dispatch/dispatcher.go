// Package dispatch routes control requests to the handler registered for
// their command type, running them through a chain of middlewares first.
package dispatch

import (
	"sort"
	"sync"

	"github.com/mfulz/launchgeist/protocol"
)

// HandlerFunc defines the signature of a command handler.
type HandlerFunc func(req *protocol.Request) *protocol.Response

// Middleware wraps the handler of a command.
type Middleware func(command string, next HandlerFunc) HandlerFunc

// Dispatcher maps command strings to their handlers.
type Dispatcher struct {
	mu          sync.RWMutex
	handlers    map[string]HandlerFunc
	middlewares []Middleware
}

// New creates a new Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
	}
}

// Register binds a command string to a handler.
func (d *Dispatcher) Register(command string, handler HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[command] = handler
}

// Use appends a middleware. The first middleware added runs outermost.
func (d *Dispatcher) Use(mw Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middlewares = append(d.middlewares, mw)
}

// Commands lists the registered commands.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.handlers))
	for c := range d.handlers {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Dispatch executes the handler for a given request.
func (d *Dispatcher) Dispatch(req *protocol.Request) *protocol.Response {
	d.mu.RLock()
	handler, ok := d.handlers[req.Type]
	mws := d.middlewares
	d.mu.RUnlock()

	if !ok {
		return Error("unknown command: " + req.Type)
	}

	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](req.Type, handler)
	}
	return handler(req)
}

// OK builds a successful response.
func OK(data interface{}) *protocol.Response {
	return &protocol.Response{Status: protocol.StatusOK, Data: data}
}

// Error builds a failed response.
func Error(msg string) *protocol.Response {
	return &protocol.Response{Status: protocol.StatusError, Error: msg}
}
