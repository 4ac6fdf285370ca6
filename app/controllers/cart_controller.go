package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/thali/app/services"
	"github.com/shashiranjanraj/thali/pkg/session"
)

const (
	msgItemAdded   = "Item added to cart!"
	msgItemRemoved = "Item removed from cart."
)

type CartController struct {
	pages *Pages
	carts *services.CartService
}

func NewCartController(pages *Pages, carts *services.CartService) *CartController {
	return &CartController{pages: pages, carts: carts}
}

func (c *CartController) Show(w http.ResponseWriter, r *http.Request) {
	cart, err := c.carts.View(r.Context(), mustUser(r).ID)
	if err != nil {
		c.pages.ServerError(w, r, err)
		return
	}
	c.pages.Render(w, r, http.StatusOK, "cart.html", "Cart", cart)
}

// Add puts one unit of the item in the cart. Ids are not checked against the
// menu; unknown items simply never show up in the cart view.
func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(r, "itemId")
	if !ok {
		c.pages.NotFound(w, r)
		return
	}
	if _, err := c.carts.Add(r.Context(), mustUser(r).ID, itemID); err != nil {
		c.pages.ServerError(w, r, err)
		return
	}
	session.FromCtx(r).Flash("success", msgItemAdded)
	redirect(w, r, "/")
}

func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(r, "itemId")
	if !ok {
		c.pages.NotFound(w, r)
		return
	}
	removed, err := c.carts.Remove(r.Context(), mustUser(r).ID, itemID)
	if err != nil {
		c.pages.ServerError(w, r, err)
		return
	}
	if removed {
		session.FromCtx(r).Flash("success", msgItemRemoved)
	}
	redirect(w, r, "/cart")
}
