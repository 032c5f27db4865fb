// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Routes builds the full router for the QnA API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(Logging(h.logger))
	r.Use(CORS)

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		// Session-driven workflow: facts in, questions and evaluations out.
		r.Route("/qna/sessions", func(r chi.Router) {
			r.Post("/", h.startSession)
			r.Post("/{sessionID}/questions", h.generateSessionQuestion)
			r.Post("/{sessionID}/answers", h.submitSessionAnswer)
			r.Post("/{sessionID}/accept", h.acceptAnswer)
		})

		// Direct question lifecycle: create, grade, expand.
		r.Route("/questions", func(r chi.Router) {
			r.Post("/", h.createQuestion)
			r.Get("/", h.listQuestions)
			r.Get("/simplified", h.listSimplifiedQuestions)
			r.Get("/{questionID}", h.getQuestion)
			r.Post("/{questionID}/grade", h.gradeQuestion)
			r.Post("/{questionID}/expand", h.expandQuestion)
		})

		// Category catalogue with a model-assisted description review.
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.createCategory)
			r.Put("/", h.updateCategory)
			r.Post("/manage", h.manageCategories)
			r.Post("/manage/{name}", h.manageCategory)
			r.Get("/{name}", h.getCategory)
			r.Delete("/{categoryID}", h.deleteCategory)
		})

		r.Post("/tools/query", h.queryTool)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
