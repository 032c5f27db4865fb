package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kyn-317/qna/internal/domain/category"
	"github.com/kyn-317/qna/internal/genai"
	"github.com/kyn-317/qna/internal/llmtext"
	"github.com/kyn-317/qna/internal/store"
	"github.com/kyn-317/qna/prompts"
)

// CategoryWorkflow maintains the technology categories questions are filed
// under: plain CRUD plus a model-assisted pass that reviews descriptions and
// rewrites the ones the model flags. Reviewing a single category degrades on
// parse failure; reviewing all categories does not, since a silent partial
// pass over the whole catalogue would be indistinguishable from a clean one.
type CategoryWorkflow struct {
	store  store.Repository
	gen    genai.Generator
	logger *slog.Logger
}

// NewCategoryWorkflow creates the workflow.
func NewCategoryWorkflow(s store.Repository, gen genai.Generator, logger *slog.Logger) *CategoryWorkflow {
	return &CategoryWorkflow{store: s, gen: gen, logger: logger}
}

type categoryResult struct {
	ShouldUpdate bool   `json:"shouldUpdate"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

// Save registers a category. Names are unique: saving an existing name
// returns the stored record unchanged instead of erroring.
func (w *CategoryWorkflow) Save(ctx context.Context, name, description string) (*category.Category, error) {
	existing, err := w.store.GetCategoryByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	c := category.New(name, description)
	if err := w.store.SaveCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("save category %s: %w", name, err)
	}
	w.logger.Info("category created", "category", name)
	return c, nil
}

// Update rewrites the description of an existing category, looked up by name.
func (w *CategoryWorkflow) Update(ctx context.Context, name, description string) (*category.Category, error) {
	c, err := w.store.GetCategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}

	updated := c.WithDescription(description)
	if err := w.store.UpdateCategory(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update category %s: %w", name, err)
	}
	return &updated, nil
}

// ManageOne asks the model to review one category's description. If the
// response is unparsable or the model declines the update, the stored record
// is returned unchanged.
func (w *CategoryWorkflow) ManageOne(ctx context.Context, name string) (*category.Category, error) {
	c, err := w.store.GetCategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}

	prompt := prompts.Render(prompts.CategorySingle, map[string]string{
		"name":        c.Name,
		"description": c.Description,
	})

	text, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("manage category %s: %w", name, err)
	}

	parsed, perr := llmtext.ParseObject[categoryResult](text)
	if perr != nil {
		w.logger.Warn("category payload unparsable, keeping stored record", "category", name, "error", perr)
		return c, nil
	}
	if !parsed.ShouldUpdate {
		return c, nil
	}
	return w.Update(ctx, c.Name, parsed.Description)
}

// ManageAll runs one review over the whole catalogue: every category is
// rendered into a single prompt and the model answers with an array of
// per-category verdicts. Entries flagged shouldUpdate are rewritten; names
// the model invented are skipped. An unparsable response fails the call.
func (w *CategoryWorkflow) ManageAll(ctx context.Context) ([]*category.Category, error) {
	categories, err := w.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return []*category.Category{}, nil
	}

	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return nil, err
	}
	prompt := prompts.Render(prompts.CategoryAll, map[string]string{
		"categories": string(data),
	})

	text, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("manage categories: %w", err)
	}

	results, perr := llmtext.ParseObject[[]categoryResult](text)
	if perr != nil {
		return nil, fmt.Errorf("manage categories: %w", perr)
	}

	out := make([]*category.Category, 0, len(results))
	for _, res := range results {
		c, err := w.store.GetCategoryByName(ctx, res.Name)
		if errors.Is(err, store.ErrNotFound) {
			w.logger.Warn("model verdict names unknown category, skipping", "category", res.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		if res.ShouldUpdate {
			updated := c.WithDescription(res.Description)
			if err := w.store.UpdateCategory(ctx, &updated); err != nil {
				return nil, fmt.Errorf("update category %s: %w", res.Name, err)
			}
			c = &updated
			w.logger.Info("category description rewritten", "category", res.Name)
		}
		out = append(out, c)
	}
	return out, nil
}
