package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/thali/pkg/cache"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(cache.NewMemoryStore(), DefaultOptions())
}

// serve runs h behind the middleware and returns the response.
func serve(m *Manager, h http.HandlerFunc, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	m.Middleware()(h).ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "thali_session" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestMiddleware_PersistsValuesAcrossRequests(t *testing.T) {
	m := newTestManager(t)

	first := serve(m, func(w http.ResponseWriter, r *http.Request) {
		FromCtx(r).Set("user_id", uint(2))
		w.WriteHeader(http.StatusOK)
	})
	cookie := sessionCookie(t, first)
	assert.True(t, cookie.HttpOnly)
	assert.Len(t, cookie.Value, 64)

	var got uint
	serve(m, func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromCtx(r).GetUint("user_id")
	}, cookie)
	assert.Equal(t, uint(2), got)
}

func TestMiddleware_NoCookieWithoutChanges(t *testing.T) {
	m := newTestManager(t)

	rec := serve(m, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	assert.Empty(t, rec.Result().Cookies())
}

func TestFlashes_ConsumedOnce(t *testing.T) {
	m := newTestManager(t)

	first := serve(m, func(w http.ResponseWriter, r *http.Request) {
		FromCtx(r).Flash("success", "Item added to cart!")
		http.Redirect(w, r, "/", http.StatusFound)
	})
	cookie := sessionCookie(t, first)

	var flashes []Flash
	serve(m, func(w http.ResponseWriter, r *http.Request) {
		flashes = FromCtx(r).Flashes()
		_, _ = w.Write([]byte("page"))
	}, cookie)
	assert.Equal(t, []Flash{{Category: "success", Message: "Item added to cart!"}}, flashes)

	serve(m, func(w http.ResponseWriter, r *http.Request) {
		flashes = FromCtx(r).Flashes()
	}, cookie)
	assert.Empty(t, flashes)
}

func TestRegenerate_InvalidatesOldID(t *testing.T) {
	m := newTestManager(t)

	first := serve(m, func(w http.ResponseWriter, r *http.Request) {
		FromCtx(r).Set("cart_hint", "x")
	})
	old := sessionCookie(t, first)

	second := serve(m, func(w http.ResponseWriter, r *http.Request) {
		s := FromCtx(r)
		s.Regenerate()
		s.Set("user_id", uint(5))
	}, old)
	fresh := sessionCookie(t, second)
	require.NotEqual(t, old.Value, fresh.Value)

	var oldUser, newUser uint
	var oldOK, newOK bool
	serve(m, func(w http.ResponseWriter, r *http.Request) {
		oldUser, oldOK = FromCtx(r).GetUint("user_id")
	}, old)
	serve(m, func(w http.ResponseWriter, r *http.Request) {
		newUser, newOK = FromCtx(r).GetUint("user_id")
	}, fresh)

	assert.False(t, oldOK)
	assert.Zero(t, oldUser)
	assert.True(t, newOK)
	assert.Equal(t, uint(5), newUser)
}

func TestDestroy_ExpiresCookie(t *testing.T) {
	m := newTestManager(t)

	first := serve(m, func(w http.ResponseWriter, r *http.Request) {
		FromCtx(r).Set("user_id", uint(2))
	})
	cookie := sessionCookie(t, first)

	second := serve(m, func(w http.ResponseWriter, r *http.Request) {
		FromCtx(r).Destroy()
		http.Redirect(w, r, "/", http.StatusFound)
	}, cookie)
	expired := sessionCookie(t, second)
	assert.Less(t, expired.MaxAge, 0)

	var ok bool
	serve(m, func(w http.ResponseWriter, r *http.Request) {
		_, ok = FromCtx(r).GetUint("user_id")
	}, cookie)
	assert.False(t, ok)
}

func TestLoad_RejectsMalformedCookie(t *testing.T) {
	m := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "thali_session", Value: "../../etc/passwd"})

	s := m.Load(req)
	assert.NotEqual(t, "../../etc/passwd", s.ID())
	assert.True(t, validID(s.ID()))
}

func TestManager_WithRedisStore_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	opts := DefaultOptions()
	opts.TTL = time.Minute
	m := NewManager(cache.NewRedisStore(client, "thali:"), opts)

	first := serve(m, func(w http.ResponseWriter, r *http.Request) {
		FromCtx(r).Set("user_id", uint(9))
	})
	cookie := sessionCookie(t, first)
	assert.True(t, mr.Exists("thali:session:"+cookie.Value))

	mr.FastForward(2 * time.Minute)

	var ok bool
	serve(m, func(w http.ResponseWriter, r *http.Request) {
		_, ok = FromCtx(r).GetUint("user_id")
	}, cookie)
	assert.False(t, ok)
}
