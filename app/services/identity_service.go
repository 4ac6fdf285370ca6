package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/app/repositories"
	"github.com/shashiranjanraj/thali/pkg/auth"
	"github.com/shashiranjanraj/thali/pkg/logger"
	"github.com/shashiranjanraj/thali/pkg/session"
)

const sessionUserKey = "user_id"

// IdentityService maps sessions and API tokens to accounts.
type IdentityService struct {
	accounts *AuthService
	tokens   *auth.Tokens
}

func NewIdentityService(accounts *AuthService, tokens *auth.Tokens) *IdentityService {
	return &IdentityService{accounts: accounts, tokens: tokens}
}

// Establish logs u in on s under a fresh session id.
func (s *IdentityService) Establish(sess *session.Session, u models.User) {
	sess.Regenerate()
	sess.Set(sessionUserKey, u.ID)
}

// Resolve returns the account bound to sess. A session pointing at a
// vanished account is treated as anonymous and unbound.
func (s *IdentityService) Resolve(ctx context.Context, sess *session.Session) (models.User, bool) {
	id, ok := sess.GetUint(sessionUserKey)
	if !ok {
		return models.User{}, false
	}
	return s.lookup(ctx, id, func() { sess.Delete(sessionUserKey) })
}

// Terminate ends the session and expires its cookie.
func (s *IdentityService) Terminate(sess *session.Session) {
	sess.Destroy()
}

// IssueToken returns a bearer token for the JSON API.
func (s *IdentityService) IssueToken(u models.User) (string, error) {
	return s.tokens.Issue(u.ID, u.IsAdmin)
}

// ResolveToken returns the account a bearer token was issued to.
func (s *IdentityService) ResolveToken(ctx context.Context, raw string) (models.User, bool) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return models.User{}, false
	}
	return s.lookup(ctx, claims.UserID, func() {})
}

func (s *IdentityService) lookup(ctx context.Context, id uint, gone func()) (models.User, bool) {
	u, err := s.accounts.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		gone()
		return models.User{}, false
	}
	if err != nil {
		logger.WithCtx(ctx).Error("identity: resolve account", "user_id", id, "error", err)
		return models.User{}, false
	}
	return u, true
}
