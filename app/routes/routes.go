// Package routes maps URLs to controllers.
package routes

import (
	"github.com/shashiranjanraj/thali/app/controllers"
	"github.com/shashiranjanraj/thali/app/services"
	pkgmw "github.com/shashiranjanraj/thali/pkg/middleware"
	"github.com/shashiranjanraj/thali/pkg/session"
)

// Deps is everything the route tables need.
type Deps struct {
	Pages   *controllers.Pages
	Home    *controllers.HomeController
	Auth    *controllers.AuthController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Admin   *controllers.AdminController
	API     *controllers.APIController
	GraphQL *controllers.GraphQLController

	Identity *services.IdentityService
	Carts    *services.CartService
	Sessions *session.Manager
	// Limiter throttles credential submissions.
	Limiter *pkgmw.Limiter
}
