package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/radha-ai/radha/internal/assistant"
	"github.com/radha-ai/radha/internal/llm/provider"
	"github.com/radha-ai/radha/internal/llm/selector"
)

// errorBody is the wire shape for every failure.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decode reads a JSON body, answering 400 on malformed input.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Kind:   "invalid_request",
			Detail: "malformed JSON body: " + err.Error(),
		}})
		return false
	}
	return true
}

// writeError translates the assistant error taxonomy to HTTP. Caller
// mistakes are 400, unavailable backends 503, and backend faults 502; the
// detail string is all a client ever sees of a provider failure.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var backendErr *provider.BackendError

	switch {
	case errors.Is(err, assistant.ErrUnsupportedAction):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Kind: "unsupported_action", Detail: err.Error(),
		}})
	case errors.Is(err, assistant.ErrUnsupportedLanguage):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Kind: "unsupported_language", Detail: err.Error(),
		}})
	case errors.Is(err, selector.ErrUnknownMode):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Kind: "unknown_model", Detail: err.Error(),
		}})
	case errors.Is(err, selector.ErrModelUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: errorDetail{
			Kind: "model_unavailable", Detail: err.Error(),
		}})
	case errors.Is(err, selector.ErrNoModelAvailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: errorDetail{
			Kind: "no_model_available", Detail: err.Error(),
		}})
	case errors.As(err, &backendErr):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: errorDetail{
			Kind: "backend_" + string(backendErr.Kind), Detail: backendErr.Error(),
		}})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
			Kind: "internal", Detail: err.Error(),
		}})
	}
}
