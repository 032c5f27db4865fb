// Package tools exposes a fixed set of query commands the model can invoke
// by name. The command set is an explicit registry of typed handlers, so the
// available operations are statically enumerable and testable.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kyn-317/qna/internal/store"
)

// ErrUnknownCommand is returned when no handler is registered for a name.
var ErrUnknownCommand = errors.New("unknown command")

// Handler executes one command with a single string parameter.
type Handler func(ctx context.Context, parameter string) (any, error)

// Registry maps stable command names to handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under name, replacing any previous one.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Commands lists registered command names in sorted order.
func (r *Registry) Commands() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches a command by name.
func (r *Registry) Call(ctx context.Context, name, parameter string) (any, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return h(ctx, parameter)
}

// NewStoreRegistry wires the standard question-store query commands.
func NewStoreRegistry(s store.Repository) *Registry {
	r := NewRegistry()
	r.Register("getAllQuestions", func(ctx context.Context, _ string) (any, error) {
		return s.ListQuestions(ctx)
	})
	r.Register("getQuestionById", func(ctx context.Context, p string) (any, error) {
		return s.GetQuestion(ctx, p)
	})
	r.Register("getQuestionsByCategory", func(ctx context.Context, p string) (any, error) {
		return s.ListQuestionsByCategory(ctx, p)
	})
	r.Register("getQuestionCountByCategory", func(ctx context.Context, p string) (any, error) {
		return s.CountQuestionsByCategory(ctx, p)
	})
	r.Register("getSimplifiedQuestionsByCategory", func(ctx context.Context, p string) (any, error) {
		return s.ListSimplifiedByCategory(ctx, p)
	})
	r.Register("getAllCategories", func(ctx context.Context, _ string) (any, error) {
		return s.ListCategories(ctx)
	})
	r.Register("getCategoryByName", func(ctx context.Context, p string) (any, error) {
		return s.GetCategoryByName(ctx, p)
	})
	return r
}
