package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/thali/app/services"
	"github.com/shashiranjanraj/thali/pkg/session"
)

const (
	msgCartEmpty   = "Your cart is empty."
	msgOrderPlaced = "Order placed successfully!"
)

type OrderController struct {
	pages  *Pages
	orders *services.OrderService
}

func NewOrderController(pages *Pages, orders *services.OrderService) *OrderController {
	return &OrderController{pages: pages, orders: orders}
}

func (c *OrderController) Place(w http.ResponseWriter, r *http.Request) {
	_, err := c.orders.Place(r.Context(), mustUser(r).ID)
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		session.FromCtx(r).Flash("danger", msgCartEmpty)
		redirect(w, r, "/cart")
	case err != nil:
		c.pages.ServerError(w, r, err)
	default:
		session.FromCtx(r).Flash("success", msgOrderPlaced)
		redirect(w, r, "/my_orders")
	}
}

func (c *OrderController) Mine(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.ListForUser(r.Context(), mustUser(r).ID)
	if err != nil {
		c.pages.ServerError(w, r, err)
		return
	}
	c.pages.Render(w, r, http.StatusOK, "my_orders.html", "My Orders", orders)
}
