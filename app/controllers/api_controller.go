package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/app/services"
	"github.com/shashiranjanraj/thali/pkg/bind"
	"github.com/shashiranjanraj/thali/pkg/collection"
	"github.com/shashiranjanraj/thali/pkg/logger"
	"github.com/shashiranjanraj/thali/pkg/response"
)

type apiLogin struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type apiMenuItem struct {
	models.MenuItem
	ImageURL string `json:"image_url"`
}

// APIController serves the JSON API under /api.
type APIController struct {
	accounts *services.AuthService
	identity *services.IdentityService
	catalog  *services.CatalogService
	carts    *services.CartService
	orders   *services.OrderService
}

func NewAPIController(
	accounts *services.AuthService,
	identity *services.IdentityService,
	catalog *services.CatalogService,
	carts *services.CartService,
	orders *services.OrderService,
) *APIController {
	return &APIController{accounts: accounts, identity: identity, catalog: catalog, carts: carts, orders: orders}
}

func (c *APIController) Login(w http.ResponseWriter, r *http.Request) {
	var in apiLogin
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	u, err := c.accounts.Verify(r.Context(), in.Email, in.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		response.Error(w, http.StatusUnauthorized, msgInvalidLogin)
		return
	}
	if err != nil {
		c.fail(w, r, err)
		return
	}

	token, err := c.identity.IssueToken(u)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	response.Success(w, map[string]any{"token": token, "user": u})
}

func (c *APIController) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := c.catalog.List(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	response.Success(w, collection.Map(items, func(m models.MenuItem) apiMenuItem {
		return apiMenuItem{MenuItem: m, ImageURL: c.catalog.ImageURL(m)}
	}))
}

func (c *APIController) Cart(w http.ResponseWriter, r *http.Request) {
	cart, err := c.carts.View(r.Context(), mustUser(r).ID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if cart.Lines == nil {
		cart.Lines = []services.CartLine{}
	}
	response.Success(w, cart)
}

func (c *APIController) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := c.orders.ListForUser(r.Context(), mustUser(r).ID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	response.Success(w, orders)
}

// Health reports liveness.
func (c *APIController) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (c *APIController) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger.WithCtx(r.Context()).Error("api request failed", "path", r.URL.Path, "error", err)
	response.Error(w, http.StatusInternalServerError, "Internal server error")
}
