package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/thali/app/services"
)

type AdminController struct {
	pages  *Pages
	orders *services.OrderService
	feed   http.Handler
}

func NewAdminController(pages *Pages, orders *services.OrderService, feed http.Handler) *AdminController {
	return &AdminController{pages: pages, orders: orders, feed: feed}
}

func (c *AdminController) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.ListAll(r.Context(), mustUser(r))
	if errors.Is(err, services.ErrNotAuthorized) {
		redirect(w, r, "/")
		return
	}
	if err != nil {
		c.pages.ServerError(w, r, err)
		return
	}
	c.pages.Render(w, r, http.StatusOK, "admin_orders.html", "All Orders", orders)
}

// UpdateStatus stores the posted status verbatim. The status field must be
// present; any value, including empty, is accepted.
func (c *AdminController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := idParam(r, "orderId")
	if !ok {
		c.pages.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	values, present := r.PostForm["status"]
	if !present {
		http.Error(w, "missing status", http.StatusBadRequest)
		return
	}

	err := c.orders.UpdateStatus(r.Context(), mustUser(r), orderID, values[0])
	if errors.Is(err, services.ErrNotAuthorized) {
		redirect(w, r, "/")
		return
	}
	if err != nil {
		c.pages.ServerError(w, r, err)
		return
	}
	redirect(w, r, "/admin/orders")
}

// Feed upgrades to the live order feed WebSocket.
func (c *AdminController) Feed(w http.ResponseWriter, r *http.Request) {
	c.feed.ServeHTTP(w, r)
}
