// Package middleware resolves the signed-in account and guards routes that
// need one.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/app/services"
	"github.com/shashiranjanraj/thali/pkg/logger"
	"github.com/shashiranjanraj/thali/pkg/response"
	"github.com/shashiranjanraj/thali/pkg/session"
)

type ctxKey int

const (
	userKey ctxKey = iota
	cartCountKey
)

// LoginRequiredMessage is flashed when an anonymous visitor hits a page
// that needs an account.
const LoginRequiredMessage = "Please log in to access this page."

// Authenticate resolves the session's account and stores it on the request
// context. It must run inside the session middleware.
func Authenticate(identity *services.IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := identity.Resolve(r.Context(), session.FromCtx(r))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, u)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", u.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the account resolved for r, if any.
func CurrentUser(r *http.Request) (models.User, bool) {
	return UserFromContext(r.Context())
}

// UserFromContext is CurrentUser for code that only holds the context, such
// as GraphQL resolvers.
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// RequireLogin sends anonymous visitors to the login page with an info
// flash.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			session.FromCtx(r).Flash("info", LoginRequiredMessage)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin sends signed-in non-admins home without a message. Use it
// after RequireLogin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := CurrentUser(r); !ok || !u.IsAdmin {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerAuth resolves the account from an "Authorization: Bearer" token and
// rejects the request without one.
func BearerAuth(identity *services.IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				response.Unauthorized(w)
				return
			}
			u, ok := identity.ResolveToken(r.Context(), strings.TrimSpace(raw))
			if !ok {
				response.Unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, u)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", u.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// lazyCount defers the cart lookup until a page actually asks for it.
type lazyCount struct {
	once sync.Once
	n    int
	load func() int
}

func (c *lazyCount) value() int {
	c.once.Do(func() { c.n = c.load() })
	return c.n
}

// ShareCartCount makes the signed-in account's cart size available to
// every page through CartCount. Use it after Authenticate.
func ShareCartCount(carts *services.CartService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			lc := &lazyCount{load: func() int {
				n, err := carts.Count(ctx, u.ID)
				if err != nil {
					logger.WithCtx(ctx).Error("cart count failed", "error", err)
					return 0
				}
				return n
			}}
			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, cartCountKey, lc)))
		})
	}
}

// CartCount is the cart size for the current account, or 0.
func CartCount(r *http.Request) int {
	if lc, ok := r.Context().Value(cartCountKey).(*lazyCount); ok {
		return lc.value()
	}
	return 0
}
