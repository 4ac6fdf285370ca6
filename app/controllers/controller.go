// Package controllers holds the HTTP handlers: server-rendered pages and
// the JSON API.
package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/thali/app/middleware"
	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/pkg/logger"
	"github.com/shashiranjanraj/thali/pkg/router"
	"github.com/shashiranjanraj/thali/pkg/session"
	"github.com/shashiranjanraj/thali/pkg/view"
)

// Page is what every template receives.
type Page struct {
	Title     string
	User      *models.User
	CartCount int
	Flashes   []session.Flash
	Data      any
}

// Pages renders templates with the shared page data filled in.
type Pages struct {
	views *view.Engine
}

// pageNames are the templates the controllers render.
var pageNames = []string{
	"home.html", "register.html", "login.html", "cart.html",
	"my_orders.html", "admin_orders.html", "error.html",
}

// NewPages fails when views lacks a page a controller renders.
func NewPages(views *view.Engine) (*Pages, error) {
	for _, name := range pageNames {
		if !views.Has(name) {
			return nil, fmt.Errorf("controllers: missing view %s", name)
		}
	}
	return &Pages{views: views}, nil
}

func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	pg := Page{
		Title:     title,
		CartCount: middleware.CartCount(r),
		Flashes:   session.FromCtx(r).Flashes(),
		Data:      data,
	}
	if u, ok := middleware.CurrentUser(r); ok {
		pg.User = &u
	}
	p.views.Render(w, r, status, page, pg)
}

// ServerError logs err and shows the generic error page.
func (p *Pages) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	logger.WithCtx(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	p.Render(w, r, http.StatusInternalServerError, "error.html", "Something went wrong",
		"We could not complete your request. Please try again.")
}

func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.Render(w, r, http.StatusNotFound, "error.html", "Page not found",
		"The page you are looking for does not exist.")
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusFound)
}

// idParam reads a numeric path parameter.
func idParam(r *http.Request, key string) (uint, bool) {
	n, err := strconv.ParseUint(router.Param(r, key), 10, 0)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

// mustUser is for handlers mounted behind RequireLogin or BearerAuth.
func mustUser(r *http.Request) models.User {
	u, _ := middleware.CurrentUser(r)
	return u
}
