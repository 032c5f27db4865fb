// internal/api/tools_handler.go
package api

import (
	"errors"
	"net/http"

	"github.com/kyn-317/qna/internal/tools"
)

type QueryToolRequest struct {
	Command   string `json:"command"`
	Parameter string `json:"parameter"`
}

func (r *QueryToolRequest) Validate() error {
	if r.Command == "" {
		return errors.New("command is required")
	}
	return nil
}

type QueryToolResponse struct {
	Command string `json:"command"`
	Result  any    `json:"result"`
}

// POST /api/tools/query
func (h *Handler) queryTool(w http.ResponseWriter, r *http.Request) {
	var req QueryToolRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.tools.Call(r.Context(), req.Command, req.Parameter)
	if errors.Is(err, tools.ErrUnknownCommand) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.handleStoreError(w, err, "record") {
		return
	}

	respondJSON(w, http.StatusOK, QueryToolResponse{
		Command: req.Command,
		Result:  result,
	})
}
