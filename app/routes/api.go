package routes

import (
	"net/http"

	"github.com/shashiranjanraj/thali/app/middleware"
	pkgmw "github.com/shashiranjanraj/thali/pkg/middleware"
	"github.com/shashiranjanraj/thali/pkg/router"
)

// RegisterAPI mounts the JSON API. It is cookie-free: clients log in for a
// bearer token.
func RegisterAPI(r *router.Router, d Deps) {
	api := r.Group("/api", pkgmw.CORS(pkgmw.APICORSOptions()))
	api.Options("/*", "api.preflight", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	api.Post("/login", "api.login", d.API.Login, d.Limiter.Middleware)
	api.Get("/menu", "api.menu", d.API.Menu)

	protected := api.Group("", middleware.BearerAuth(d.Identity))
	protected.Get("/cart", "api.cart", d.API.Cart)
	protected.Get("/orders", "api.orders", d.API.Orders)
	protected.Post("/graphql", "api.graphql", d.GraphQL.Query)
}
