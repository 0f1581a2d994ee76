package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/marlin/pkg/handlers"
	"github.com/JaimeStill/marlin/pkg/openapi"
	"github.com/JaimeStill/marlin/pkg/routes"
	"github.com/JaimeStill/marlin/pkg/storage"
)

// ImageList is the body of GET /images.
type ImageList struct {
	Prefix    string   `json:"prefix"`
	Keys      []string `json:"keys"`
	Truncated bool     `json:"truncated"`
}

// ImageStatus is the body of GET /images/{key}.
type ImageStatus struct {
	Key    string `json:"key"`
	Exists bool   `json:"exists"`
}

type imagesHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newImagesHandler(
	store storage.System,
	logger *slog.Logger,
	maxListSize int32,
) *imagesHandler {
	return &imagesHandler{
		store:       store,
		logger:      logger.With("handler", "images"),
		maxListSize: maxListSize,
	}
}

func (h *imagesHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/images",
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.list,
				OpenAPI: &openapi.Operation{
					Summary: "List image keys under a prefix",
					Tags:    []string{"images"},
					Parameters: []*openapi.Parameter{
						openapi.Query("prefix", "Key prefix, for example fish-image/"),
					},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Image keys", "ImageList"),
						400: openapi.ResponseRef("BadRequest"),
						503: openapi.ResponseRef("ServiceUnavailable"),
					},
				},
			},
			{
				Method:  "GET",
				Pattern: "/{key...}",
				Handler: h.find,
				OpenAPI: &openapi.Operation{
					Summary: "Report whether an image key exists",
					Tags:    []string{"images"},
					Parameters: []*openapi.Parameter{
						openapi.Path("key", "Image object key; may contain slashes"),
					},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Image status", "ImageStatus"),
						400: openapi.ResponseRef("BadRequest"),
						503: openapi.ResponseRef("ServiceUnavailable"),
					},
				},
			},
		},
	}
}

func (h *imagesHandler) list(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	keys, truncated, err := h.store.ListLimit(r.Context(), prefix, int(h.maxListSize))
	if err != nil {
		h.fail(w, "list_images", err)
		return
	}

	result := ImageList{Prefix: prefix, Keys: keys, Truncated: truncated}
	if result.Keys == nil {
		result.Keys = []string{}
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *imagesHandler) find(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	exists, err := h.store.Exists(r.Context(), key)
	if err != nil {
		h.fail(w, "find_image", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ImageStatus{Key: key, Exists: exists})
}

// fail reports key errors as 400 and every other storage error as a
// storage fallback.
func (h *imagesHandler) fail(w http.ResponseWriter, stage string, err error) {
	if storage.MapHTTPStatus(err) == http.StatusBadRequest {
		handlers.RespondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	handlers.RespondFallback(w, h.logger, http.StatusServiceUnavailable, "storage", stage, err)
}
