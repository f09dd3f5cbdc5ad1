package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/infinirdc/Opulence/pkg/logger"
)

// AdminGuard protects administrative routes with a shared PIN sent in the
// X-Admin-Pin header. With no PIN configured the guard is disabled and admin
// routes are open, which is the expected state in development.
type AdminGuard struct {
	pin    string
	logger *logger.Logger
}

func NewAdminGuard(pin string, log *logger.Logger) *AdminGuard {
	return &AdminGuard{
		pin:    pin,
		logger: log.WithComponent("admin_guard"),
	}
}

// Require wraps an admin handler with the PIN check.
func (g *AdminGuard) Require(next http.HandlerFunc) http.HandlerFunc {
	if g.pin == "" {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get("X-Admin-Pin")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(g.pin)) != 1 {
			g.logger.Warn("Admin request rejected: bad PIN", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			writeErrorResponse(w, http.StatusUnauthorized, "invalid admin PIN")
			return
		}
		next(w, r)
	}
}
