package counters

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/cookbook/pkg/docstore"
	"github.com/JaimeStill/cookbook/pkg/handlers"
	"github.com/JaimeStill/cookbook/pkg/routes"
)

// Handler exposes the counters over HTTP.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "counters"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/counts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Get},
		},
	}
}

// Get returns {"all": n, "published": m}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	counts, err := h.sys.Counts(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, docstore.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, counts)
}
