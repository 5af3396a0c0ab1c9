// Package deliver hands a finished value to whatever asked for it.
package deliver

import (
	"fmt"
	"io"
	"sync"
)

// Consumer accepts delivered text.
type Consumer interface {
	Paste(text string) error
}

// Resolver finds the consumer behind an id.
type Resolver interface {
	Lookup(id string) (Consumer, bool)
}

// Deliver pastes text into the consumer named id. A consumer that no longer
// exists is not an error; the text is dropped.
func Deliver(r Resolver, id, text string) error {
	c, ok := r.Lookup(id)
	if !ok {
		return nil
	}
	if err := c.Paste(text); err != nil {
		return fmt.Errorf("deliver to %s: %w", id, err)
	}
	return nil
}

// Writer is a Consumer that writes text as-is.
type Writer struct {
	W io.Writer
}

func (w Writer) Paste(text string) error {
	_, err := io.WriteString(w.W, text)
	return err
}

// Registry resolves ids registered in process.
type Registry struct {
	mu        sync.Mutex
	consumers map[string]Consumer
}

func NewRegistry() *Registry {
	return &Registry{consumers: map[string]Consumer{}}
}

func (r *Registry) Register(id string, c Consumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumers[id] = c
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.consumers, id)
}

func (r *Registry) Lookup(id string) (Consumer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.consumers[id]
	return c, ok
}
