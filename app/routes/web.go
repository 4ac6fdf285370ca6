package routes

import (
	"github.com/shashiranjanraj/thali/app/middleware"
	"github.com/shashiranjanraj/thali/pkg/router"
)

// RegisterWeb mounts the server-rendered pages. They all run inside a
// session with the current account resolved.
func RegisterWeb(r *router.Router, d Deps) {
	web := r.Group("",
		d.Sessions.Middleware(),
		middleware.Authenticate(d.Identity),
		middleware.ShareCartCount(d.Carts),
	)

	web.Get("/", "home", d.Home.Index)
	web.Get("/register", "register", d.Auth.ShowRegister)
	web.Post("/register", "register.store", d.Auth.Register, d.Limiter.Middleware)
	web.Get("/login", "login", d.Auth.ShowLogin)
	web.Post("/login", "login.store", d.Auth.Login, d.Limiter.Middleware)

	account := web.Group("", middleware.RequireLogin)
	account.Get("/logout", "logout", d.Auth.Logout)
	account.Get("/add_to_cart/{itemId:[0-9]+}", "cart.add", d.Cart.Add)
	account.Get("/cart", "cart", d.Cart.Show)
	account.Post("/remove_from_cart/{itemId:[0-9]+}", "cart.remove", d.Cart.Remove)
	account.Post("/place_order", "orders.place", d.Order.Place)
	account.Get("/my_orders", "orders.mine", d.Order.Mine)

	admin := account.Group("/admin", middleware.RequireAdmin)
	admin.Get("/orders", "admin.orders", d.Admin.Orders)
	admin.Post("/order/update_status/{orderId:[0-9]+}", "admin.orders.status", d.Admin.UpdateStatus)
	admin.Get("/orders/feed", "admin.orders.feed", d.Admin.Feed)

	// Outside the session so stray asset requests cannot eat pending flashes.
	r.NotFound(d.Pages.NotFound)
}
