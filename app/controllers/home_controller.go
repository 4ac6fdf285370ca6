package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/thali/app/services"
)

type HomeController struct {
	pages   *Pages
	catalog *services.CatalogService
}

func NewHomeController(pages *Pages, catalog *services.CatalogService) *HomeController {
	return &HomeController{pages: pages, catalog: catalog}
}

// Index lists the menu.
func (c *HomeController) Index(w http.ResponseWriter, r *http.Request) {
	items, err := c.catalog.List(r.Context())
	if err != nil {
		c.pages.ServerError(w, r, err)
		return
	}
	c.pages.Render(w, r, http.StatusOK, "home.html", "Menu", items)
}
