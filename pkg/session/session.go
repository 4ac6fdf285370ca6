// Package session provides server-side HTTP sessions stored in a cache.Store.
//
// Usage (middleware):
//
//	sessions := session.NewManager(store, session.DefaultOptions())
//	r.Use(sessions.Middleware())
//
// Usage (handler):
//
//	sess := session.FromCtx(r)
//	sess.Set("user_id", 42)
//	sess.Flash("success", "Saved!")
//
// Changes are persisted automatically before the response headers are sent.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/shashiranjanraj/thali/pkg/cache"
	"github.com/shashiranjanraj/thali/pkg/logger"
)

// ------------------- Options -------------------

type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: "thali_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		Secure:     false,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// ------------------- Session -------------------

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// record is the persisted shape of a session.
type record struct {
	Values  map[string]any `json:"values"`
	Flashes []Flash        `json:"flashes,omitempty"`
}

func newRecord() record { return record{Values: map[string]any{}} }

type ctxKey struct{}

// Session is the handle for one request. It is not safe for concurrent use.
type Session struct {
	id      string
	rec     record
	changed bool
	expire  bool
	stale   []string
}

const idBytes = 32

func newID() string {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		panic("session: crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

func validID(id string) bool {
	if len(id) != idBytes*2 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

func storeKey(id string) string { return "session:" + id }

func (s *Session) ID() string { return s.id }

func (s *Session) Set(key string, value any) {
	s.rec.Values[key] = value
	s.changed = true
}

func (s *Session) Get(key string) (any, bool) {
	v, ok := s.rec.Values[key]
	return v, ok
}

func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.rec.Values[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// GetUint reads an unsigned id. Values round-tripped through JSON come back
// as float64.
func (s *Session) GetUint(key string) (uint, bool) {
	v, ok := s.rec.Values[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	}
	return 0, false
}

func (s *Session) Delete(key string) {
	if _, ok := s.rec.Values[key]; !ok {
		return
	}
	delete(s.rec.Values, key)
	s.changed = true
}

// Flash queues a message for the next page.
func (s *Session) Flash(category, message string) {
	s.rec.Flashes = append(s.rec.Flashes, Flash{Category: category, Message: message})
	s.changed = true
}

// Flashes returns the queued messages and removes them from the session.
func (s *Session) Flashes() []Flash {
	if len(s.rec.Flashes) == 0 {
		return nil
	}
	out := s.rec.Flashes
	s.rec.Flashes = nil
	s.changed = true
	return out
}

// Regenerate moves the session data to a fresh id and discards the old one.
// Call it whenever the privilege level changes, e.g. on login.
func (s *Session) Regenerate() {
	s.stale = append(s.stale, s.id)
	s.id = newID()
	s.changed = true
}

// Destroy drops all data and expires the cookie. Values set afterwards start
// a brand new session.
func (s *Session) Destroy() {
	s.stale = append(s.stale, s.id)
	s.id = newID()
	s.rec = newRecord()
	s.changed = false
	s.expire = true
}

// ------------------- Manager -------------------

// Manager loads and persists sessions for each request.
type Manager struct {
	store cache.Store
	opts  Options
}

func NewManager(store cache.Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultOptions().CookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultOptions().TTL
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &Manager{store: store, opts: opts}
}

func (m *Manager) Options() Options { return m.opts }

// Load returns the session named by the request cookie, or a new empty one
// when the cookie is missing, malformed, or points at an expired record.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || !validID(cookie.Value) {
		return &Session{id: newID(), rec: newRecord()}
	}

	rec := newRecord()
	if err := m.store.Get(r.Context(), storeKey(cookie.Value), &rec); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			logger.WithCtx(r.Context()).Warn("session: load failed", "error", err)
		}
		return &Session{id: newID(), rec: newRecord()}
	}
	if rec.Values == nil {
		rec.Values = map[string]any{}
	}
	return &Session{id: cookie.Value, rec: rec}
}

// Save persists pending changes and writes the cookie. It must run before the
// response headers are written.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if len(s.stale) > 0 {
		if err := m.store.Del(ctx, keys(s.stale)...); err != nil {
			return err
		}
		s.stale = nil
	}

	if s.changed {
		if err := m.store.Set(ctx, storeKey(s.id), s.rec, m.opts.TTL); err != nil {
			return err
		}
		http.SetCookie(w, m.cookie(s.id, int(m.opts.TTL.Seconds())))
		s.changed = false
		s.expire = false
		return nil
	}

	if s.expire {
		http.SetCookie(w, m.cookie("", -1))
		s.expire = false
	}
	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     m.opts.Path,
		MaxAge:   maxAge,
		HttpOnly: m.opts.HTTPOnly,
		Secure:   m.opts.Secure,
		SameSite: m.opts.SameSite,
	}
}

func keys(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = storeKey(id)
	}
	return out
}

// ------------------- Middleware -------------------

// Middleware loads the session into the request context and saves it just
// before the first byte of the response, or after the handler returns when
// nothing was written.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := m.Load(r)
			ctx := context.WithValue(r.Context(), ctxKey{}, sess)

			sw := &saveWriter{ResponseWriter: w, save: func() {
				if err := m.Save(ctx, w, sess); err != nil {
					logger.WithCtx(ctx).Error("session: save failed", "error", err)
				}
			}}
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.flushSession()
		})
	}
}

// FromCtx returns the request's session. Outside the middleware it returns a
// detached session whose changes are never saved.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{id: newID(), rec: newRecord()}
}
