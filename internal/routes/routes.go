package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/justp2p/justp2p-backend/internal/handlers"
)

// SetupRoutes registers every endpoint under the /api prefix. requireAuth is
// the bearer-token middleware applied to every authenticated route.
func SetupRoutes(
	r chi.Router,
	auth *handlers.AuthHandler,
	twofa *handlers.TwoFactorHandler,
	peers *handlers.PeerHandler,
	backups *handlers.BackupHandler,
	requireAuth func(http.Handler) http.Handler,
) {
	r.Route("/api", func(api chi.Router) {
		// Public routes
		api.Post("/auth/register", auth.Register)
		api.Post("/auth/login", auth.Login)
		api.Post("/users/lookup", peers.Lookup)

		// Authenticated routes
		api.Group(func(g chi.Router) {
			g.Use(requireAuth)

			g.Get("/auth/me", auth.Me)
			g.Post("/auth/2fa/setup", twofa.Setup)
			g.Post("/auth/2fa/verify", twofa.Verify)
			g.Post("/auth/2fa/disable", twofa.Disable)

			g.Post("/users/update-peer-id", peers.UpdatePeerID)
			g.Post("/users/set-offline", peers.SetOffline)
			g.Get("/users/online", peers.OnlineUsers)

			g.Post("/backup/upload", backups.Upload)
			g.Get("/backup/list", backups.List)
			g.Get("/backup/download/{backupID}", backups.Download)
			g.Delete("/backup/{backupID}", backups.Delete)
		})
	})
}
