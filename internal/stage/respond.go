package stage

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/marlin/pkg/handlers"
	"github.com/JaimeStill/marlin/pkg/middleware"
)

// Respond writes err for r. Bad requests are answered with
// {"error": message}, falling back to the cause's text when message is
// empty. Everything else gets a fallback body naming the failed service and
// stage. Malformed model output is logged at warn level.
func Respond(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, message string) {
	status := HTTPStatus(err)

	if errors.Is(err, ErrBadRequest) {
		if message == "" {
			message = cause(err).Error()
		}
		handlers.RespondMessage(w, status, message)
		return
	}

	service := "identification"
	name := ""
	if se, ok := From(err); ok {
		service = se.Stage.Service()
		name = string(se.Stage)
	}

	logger = logger.With("request_id", middleware.RequestIDFrom(r.Context()))

	if !errors.Is(err, ErrMalformedOutput) {
		handlers.RespondFallback(w, logger, status, service, name, err)
		return
	}

	logger.WarnContext(r.Context(), "malformed model output",
		"service", service,
		"stage", name,
		"error", err,
	)
	handlers.RespondJSON(w, status, handlers.Fallback{
		Error:    fmt.Sprintf("%s service unavailable", service),
		Fallback: true,
		Stage:    name,
		Details:  err.Error(),
	})
}

func cause(err error) error {
	if se, ok := From(err); ok {
		return se.Err
	}
	return err
}
