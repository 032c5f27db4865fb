// Package category holds the technology-category entity: a named technology
// with a short curated description, maintained by hand or by the model.
package category

import (
	"time"

	"github.com/kyn-317/qna/internal/id"
)

// Category names a technology area questions are filed under. Names are
// unique; only the description is ever rewritten after creation.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// New creates a category with a fresh ID and creation timestamps.
func New(name, description string) *Category {
	now := time.Now()
	return &Category{
		ID:          id.GenerateID(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithDescription returns a copy with the description replaced and
// UpdatedAt refreshed.
func (c Category) WithDescription(description string) Category {
	c.Description = description
	c.UpdatedAt = time.Now()
	return c
}
