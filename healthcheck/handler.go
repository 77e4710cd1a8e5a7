// Package healthcheck reports whether the API and its database are up.
package healthcheck

import (
	"net/http"

	"github.com/user/vidtube-go/db"
	"github.com/user/vidtube-go/response"
)

// Handler answers GET /healthcheck.
type Handler struct {
	db db.Pinger
}

// NewHandler creates a new Handler.
func NewHandler(pinger db.Pinger) *Handler {
	return &Handler{db: pinger}
}

// HandleHealthcheck godoc
// @Summary Health check
// @Tags Healthcheck
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} apperror.ErrorResponse
// @Router /healthcheck [get]
func (h *Handler) HandleHealthcheck() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		if err := db.Ping(r.Context(), h.db); err != nil {
			return err
		}
		response.OK(w, map[string]string{"status": "ok"}, "OK")
		return nil
	})
}
