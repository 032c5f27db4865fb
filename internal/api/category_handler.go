// internal/api/category_handler.go
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kyn-317/qna/internal/llmtext"
)

// ── Request / Response types ────────────────────────────────────────────────

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *CategoryRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /api/categories
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if h.handleStoreError(w, err, "category") {
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// GET /api/categories/{name}
func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	c, err := h.store.GetCategoryByName(r.Context(), name)
	if h.handleStoreError(w, err, "category") {
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// POST /api/categories
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.categories.Save(r.Context(), req.Name, req.Description)
	if h.handleStoreError(w, err, "category") {
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

// PUT /api/categories
func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.categories.Update(r.Context(), req.Name, req.Description)
	if h.handleStoreError(w, err, "category") {
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// DELETE /api/categories/{categoryID}
func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	err := h.store.DeleteCategory(r.Context(), categoryID)
	if h.handleStoreError(w, err, "category") {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/categories/manage/{name}
func (h *Handler) manageCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	c, err := h.categories.ManageOne(r.Context(), name)
	if h.handleGenerateError(w, err) {
		return
	}
	if h.handleStoreError(w, err, "category") {
		return
	}

	respondJSON(w, http.StatusOK, c)
}

// POST /api/categories/manage
func (h *Handler) manageCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ManageAll(r.Context())
	if h.handleGenerateError(w, err) {
		return
	}
	if errors.Is(err, llmtext.ErrUnparsable) {
		respondError(w, http.StatusBadGateway, "model returned an unusable category verdict")
		return
	}
	if h.handleStoreError(w, err, "category") {
		return
	}

	respondJSON(w, http.StatusOK, categories)
}
