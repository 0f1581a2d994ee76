package identification

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/marlin/internal/metrics"
	"github.com/JaimeStill/marlin/internal/stage"
	"github.com/JaimeStill/marlin/pkg/handlers"
	"github.com/JaimeStill/marlin/pkg/openapi"
	"github.com/JaimeStill/marlin/pkg/routes"
)

const (
	msgNoImage    = "No image provided"
	msgNoQuestion = "No question provided"
)

// ImageRequest names the stored image an operation runs against.
type ImageRequest struct {
	Image string `json:"image"`
}

// Handler provides the identification HTTP endpoints.
type Handler struct {
	sys     System
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewHandler creates a Handler for sys.
func NewHandler(sys System, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		sys:     sys,
		metrics: m,
		logger:  logger.With("handler", "identification"),
	}
}

// Routes returns the route group for identification endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Routes: []routes.Route{
			{
				Method:  "POST",
				Pattern: "/image_captioning",
				Handler: h.Caption,
				OpenAPI: imageOperation("Caption a stored image", "CaptionResult"),
			},
			{
				Method:  "POST",
				Pattern: "/image_identification",
				Handler: h.Details,
				OpenAPI: imageOperation("Describe the species in a stored image", "DetailsResult"),
			},
			{
				Method:  "POST",
				Pattern: "/identify_and_search",
				Handler: h.IdentifyAndSearch,
				OpenAPI: imageOperation("Caption a stored image and search the knowledge base", "IdentifyResult"),
			},
			{
				Method:  "POST",
				Pattern: "/search_possible_fish",
				Handler: h.PossibleFish,
				OpenAPI: imageOperation("Rank candidate species with the selected provider", "RankedResult"),
			},
			{
				Method:  "POST",
				Pattern: "/generation",
				Handler: h.Generate,
				OpenAPI: &openapi.Operation{
					Summary:     "Answer a question about fish",
					Tags:        []string{"generation"},
					RequestBody: openapi.RequestBodyJSON("GenerationRequest", true),
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Generated answer", "GenerationResult"),
						400: openapi.ResponseRef("BadRequest"),
						503: openapi.ResponseRef("ServiceUnavailable"),
					},
				},
			},
		},
	}
}

// Caption describes the stored image in free text.
func (h *Handler) Caption(w http.ResponseWriter, r *http.Request) {
	const op = "image_captioning"
	key, ok := h.imageKey(w, r, op)
	if !ok {
		return
	}

	result, err := h.sys.Caption(r.Context(), key)
	if err != nil {
		h.fail(w, r, op, err, "")
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Details returns structured species details for the stored image.
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	const op = "image_identification"
	key, ok := h.imageKey(w, r, op)
	if !ok {
		return
	}

	result, err := h.sys.Details(r.Context(), key)
	if err != nil {
		h.fail(w, r, op, err, "")
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// IdentifyAndSearch captions the stored image and searches the knowledge
// base with the caption.
func (h *Handler) IdentifyAndSearch(w http.ResponseWriter, r *http.Request) {
	const op = "identify_and_search"
	key, ok := h.imageKey(w, r, op)
	if !ok {
		return
	}

	result, err := h.sys.IdentifyAndSearch(r.Context(), key)
	if err != nil {
		h.fail(w, r, op, err, "")
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// PossibleFish ranks candidate species for the stored image using the
// selected provider.
func (h *Handler) PossibleFish(w http.ResponseWriter, r *http.Request) {
	const op = "search_possible_fish"
	key, ok := h.imageKey(w, r, op)
	if !ok {
		return
	}

	result, err := h.sys.PossibleFish(r.Context(), key)
	if err != nil {
		h.fail(w, r, op, err, "")
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Generate answers a text question with optional context and history.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	const op = "generation"
	h.metrics.Request(op)

	var req GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondMessage(w, http.StatusBadRequest, msgNoQuestion)
		return
	}

	result, err := h.sys.Generate(r.Context(), req)
	if err != nil {
		h.fail(w, r, op, err, msgNoQuestion)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

func imageOperation(summary, result string) *openapi.Operation {
	return &openapi.Operation{
		Summary:     summary,
		Tags:        []string{"identification"},
		RequestBody: openapi.RequestBodyJSON("ImageRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Success", result),
			400: openapi.ResponseRef("BadRequest"),
			503: openapi.ResponseRef("ServiceUnavailable"),
		},
	}
}

func (h *Handler) imageKey(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	h.metrics.Request(op)

	var req ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Image) == "" {
		handlers.RespondMessage(w, http.StatusBadRequest, msgNoImage)
		return "", false
	}
	return strings.TrimSpace(req.Image), true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error, message string) {
	h.metrics.Failure(op, err)
	stage.Respond(w, r, h.logger, err, message)
}
