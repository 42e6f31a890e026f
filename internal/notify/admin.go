package notify

import (
	"context"
	"log/slog"
)

// AdminWarner relays operational warnings to the configured administrator
// identifiers through the chat gateway. With no administrators configured the
// warning still lands in the log.
type AdminWarner struct {
	gateway *Gateway
	admins  []string
}

// NewAdminWarner creates an AdminWarner.
func NewAdminWarner(gateway *Gateway, admins []string) *AdminWarner {
	return &AdminWarner{gateway: gateway, admins: admins}
}

// WarnAdmins delivers message to every administrator. Best-effort: delivery
// failures are logged, never returned.
func (w *AdminWarner) WarnAdmins(ctx context.Context, message string) {
	slog.Warn("admin warning", "message", message)
	for _, admin := range w.admins {
		if err := w.gateway.Send(ctx, admin, message); err != nil {
			slog.Warn("admin warning delivery failed", "admin", admin, "error", err)
		}
	}
}
