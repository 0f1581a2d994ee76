package selector

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/marlin/pkg/handlers"
	"github.com/JaimeStill/marlin/pkg/openapi"
	"github.com/JaimeStill/marlin/pkg/routes"
)

// ErrUnauthorized indicates a toggle request without the admin token.
var ErrUnauthorized = errors.New("admin token required")

// Handler exposes the provider selector over HTTP.
type Handler struct {
	sel        *Selector
	adminToken string
	logger     *slog.Logger
}

// NewHandler creates a Handler. When adminToken is non-empty, toggling
// requires "Authorization: Bearer <adminToken>".
func NewHandler(sel *Selector, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		sel:        sel,
		adminToken: adminToken,
		logger:     logger.With("handler", "selector"),
	}
}

// Routes returns the route group for selector endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/changeModel",
				Handler: h.Change,
				OpenAPI: &openapi.Operation{
					Summary: "Toggle between the primary and alternate provider",
					Tags:    []string{"selector"},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("New selector state", "SelectorState"),
						401: openapi.ResponseRef("Unauthorized"),
					},
				},
			},
			{
				Method:  "GET",
				Pattern: "/isGemini",
				Handler: h.Current,
				OpenAPI: &openapi.Operation{
					Summary: "Report the selected provider",
					Tags:    []string{"selector"},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Current selector state", "SelectorState"),
					},
				},
			},
		},
	}
}

// Change toggles the provider and returns the new state.
func (h *Handler) Change(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthorized)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.sel.Toggle())
}

// Current returns the selector state without changing it.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sel.Current())
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.adminToken == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) == 1
}
