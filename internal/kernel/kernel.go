// Package kernel assembles the application: stores, services, controllers,
// the global middleware stack and the route table.
package kernel

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/thali/app/controllers"
	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/app/repositories"
	"github.com/shashiranjanraj/thali/app/routes"
	"github.com/shashiranjanraj/thali/app/services"
	"github.com/shashiranjanraj/thali/pkg/auth"
	"github.com/shashiranjanraj/thali/pkg/cache"
	"github.com/shashiranjanraj/thali/pkg/event"
	"github.com/shashiranjanraj/thali/pkg/metrics"
	"github.com/shashiranjanraj/thali/pkg/middleware"
	"github.com/shashiranjanraj/thali/pkg/reqid"
	"github.com/shashiranjanraj/thali/pkg/router"
	"github.com/shashiranjanraj/thali/pkg/session"
	"github.com/shashiranjanraj/thali/pkg/storage"
	"github.com/shashiranjanraj/thali/pkg/view"
	"github.com/shashiranjanraj/thali/pkg/ws"
	"github.com/shashiranjanraj/thali/resources"
)

// Options are the kernel's injected dependencies.
type Options struct {
	Repos          repositories.Set
	Sessions       cache.Store
	SessionOptions session.Options
	Disks          *storage.Manager
	// StorageURL is where the local disk is served; empty disables it.
	StorageURL string

	JWTSecret string
	TokenTTL  time.Duration
	// RateLimit is the credential submissions allowed per client IP per
	// minute. Zero disables the limit.
	RateLimit int

	// AdminEmail and AdminPassword seed the administrator when set.
	AdminEmail    string
	AdminPassword string

	// Clock stamps new orders. Defaults to time.Now.
	Clock func() time.Time
}

// Kernel is a fully wired application.
type Kernel struct {
	router *router.Router
	Hub    *ws.Hub

	Accounts *services.AuthService
	Catalog  *services.CatalogService
	Carts    *services.CartService
	Orders   *services.OrderService
	Identity *services.IdentityService
}

// New wires the application. The admin feed hub runs until ctx is done.
func New(ctx context.Context, opts Options) (*Kernel, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	k := &Kernel{router: router.New(), Hub: ws.NewHub()}

	bus := event.NewBus()
	services.RegisterListeners(bus, k.Hub)

	k.Accounts = services.NewAuthService(opts.Repos.Users)
	k.Catalog = services.NewCatalogService(opts.Repos.Menu, opts.Disks)
	k.Carts = services.NewCartService(opts.Repos.Carts, k.Catalog)
	k.Orders = services.NewOrderService(opts.Repos, k.Catalog, bus).WithClock(opts.Clock)
	k.Identity = services.NewIdentityService(k.Accounts, auth.NewTokens(opts.JWTSecret, opts.TokenTTL))

	if opts.AdminEmail != "" {
		if _, err := k.Accounts.SeedAdmin(ctx, opts.AdminEmail, opts.AdminPassword); err != nil {
			return nil, err
		}
	}

	views, err := view.New(resources.Views, "views", template.FuncMap{
		"image":    k.Catalog.ImageURL,
		"statuses": func() []string { return models.Statuses },
	})
	if err != nil {
		return nil, err
	}
	pages, err := controllers.NewPages(views)
	if err != nil {
		return nil, err
	}
	gql, err := controllers.NewGraphQLController(k.Catalog, k.Carts, k.Orders)
	if err != nil {
		return nil, err
	}

	deps := routes.Deps{
		Pages:    pages,
		Home:     controllers.NewHomeController(pages, k.Catalog),
		Auth:     controllers.NewAuthController(pages, k.Accounts, k.Identity),
		Cart:     controllers.NewCartController(pages, k.Carts),
		Order:    controllers.NewOrderController(pages, k.Orders),
		Admin:    controllers.NewAdminController(pages, k.Orders, k.Hub),
		API:      controllers.NewAPIController(k.Accounts, k.Identity, k.Catalog, k.Carts, k.Orders),
		GraphQL:  gql,
		Identity: k.Identity,
		Carts:    k.Carts,
		Sessions: session.NewManager(opts.Sessions, opts.SessionOptions),
		Limiter:  middleware.NewLimiter(opts.RateLimit, time.Minute),
	}

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics, for total latency
	//  2. Recovery
	//  3. Request ID, before anything logs
	//  4. Logger
	r := k.router
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", deps.API.Health)

	if err := mountStorage(r, opts.Disks, opts.StorageURL); err != nil {
		return nil, err
	}

	routes.RegisterWeb(r, deps)
	routes.RegisterAPI(r, deps)

	go k.Hub.Run(ctx)
	return k, nil
}

// mountStorage serves the local disk when one is registered.
func mountStorage(r *router.Router, disks *storage.Manager, prefix string) error {
	if prefix == "" || !strings.HasPrefix(prefix, "/") {
		return nil
	}
	d, err := disks.Use("local")
	if err != nil {
		return nil
	}
	local, ok := d.(*storage.LocalDisk)
	if !ok {
		return fmt.Errorf("kernel: local disk has unexpected type %T", d)
	}
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return nil
	}
	r.Mount(prefix, http.StripPrefix(prefix, local.Handler()))
	return nil
}

func (k *Kernel) Handler() http.Handler { return k.router.Handler() }

func (k *Kernel) Routes() []router.RouteInfo { return k.router.Routes() }
