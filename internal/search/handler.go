package search

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/marlin/internal/candidates"
	"github.com/JaimeStill/marlin/internal/metrics"
	"github.com/JaimeStill/marlin/internal/stage"
	"github.com/JaimeStill/marlin/pkg/handlers"
	"github.com/JaimeStill/marlin/pkg/openapi"
	"github.com/JaimeStill/marlin/pkg/routes"
)

const (
	msgNoText           = "No text input provided"
	msgNoScientificName = "No scientific name provided"
	msgSuccess          = "Success"
	msgNoMatch          = "No fish found with the given scientific name."
)

// Handler provides the knowledge base search endpoints.
type Handler struct {
	sys     System
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Text string `json:"text"`
}

// SearchResponse echoes the query with its ranked matches.
type SearchResponse struct {
	Input   string              `json:"input"`
	Results []candidates.Record `json:"results"`
}

// ScientificNameRequest is the body of POST /search_with_scientific_name.
type ScientificNameRequest struct {
	ScientificName string `json:"scientific_name"`
}

// ScientificNameResponse carries the matched documents and a status message.
type ScientificNameResponse struct {
	ScientificName string           `json:"scientific_name"`
	FishData       []map[string]any `json:"fish_data"`
	Message        string           `json:"message"`
}

// NewHandler creates a Handler for sys.
func NewHandler(sys System, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		sys:     sys,
		metrics: m,
		logger:  logger.With("handler", "search"),
	}
}

// Routes returns the route group for search endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Routes: []routes.Route{
			{
				Method:  "POST",
				Pattern: "/search",
				Handler: h.Search,
				OpenAPI: &openapi.Operation{
					Summary:     "Search the knowledge base by description",
					Tags:        []string{"search"},
					RequestBody: openapi.RequestBodyJSON("SearchRequest", true),
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Ranked matches", "SearchResponse"),
						400: openapi.ResponseRef("BadRequest"),
						503: openapi.ResponseRef("ServiceUnavailable"),
					},
				},
			},
			{
				Method:  "POST",
				Pattern: "/search_with_scientific_name",
				Handler: h.ScientificName,
				OpenAPI: &openapi.Operation{
					Summary:     "Look up a species by scientific name",
					Tags:        []string{"search"},
					RequestBody: openapi.RequestBodyJSON("ScientificNameRequest", true),
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Matching documents", "ScientificNameResponse"),
						400: openapi.ResponseRef("BadRequest"),
						503: openapi.ResponseJSON("Lookup failed", "ScientificNameResponse"),
					},
				},
			},
		},
	}
}

// Search ranks knowledge base entries by similarity to the submitted text.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	h.metrics.Request("search")

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		handlers.RespondMessage(w, http.StatusBadRequest, msgNoText)
		return
	}

	result, err := h.sys.Similar(r.Context(), req.Text)
	if err != nil {
		h.metrics.Failure("search", err)
		stage.Respond(w, r, h.logger, err, msgNoText)
		return
	}

	results := result.Candidates
	if results == nil {
		results = []candidates.Record{}
	}

	handlers.RespondJSON(w, http.StatusOK, SearchResponse{
		Input:   req.Text,
		Results: results,
	})
}

// ScientificName looks up a single knowledge base entry by scientific name.
// A lookup failure is reported in the message field with status 503.
func (h *Handler) ScientificName(w http.ResponseWriter, r *http.Request) {
	h.metrics.Request("search_with_scientific_name")

	var req ScientificNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ScientificName) == "" {
		handlers.RespondMessage(w, http.StatusBadRequest, msgNoScientificName)
		return
	}

	resp := ScientificNameResponse{
		ScientificName: req.ScientificName,
		FishData:       []map[string]any{},
	}

	docs, err := h.sys.ScientificName(r.Context(), req.ScientificName)
	if err != nil {
		h.metrics.Failure("search_with_scientific_name", err)
		h.logger.ErrorContext(r.Context(), "scientific name lookup failed", "error", err)
		resp.Message = "Service error: " + err.Error()
		handlers.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	if len(docs) == 0 {
		resp.Message = msgNoMatch
	} else {
		resp.FishData = docs
		resp.Message = msgSuccess
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}
