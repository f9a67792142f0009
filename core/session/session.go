package session

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/Onahi7/napps-portal/core"
	"github.com/Onahi7/napps-portal/storage/draftstore"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Role selects which session blob a login is stored under.
type Role string

const (
	RoleProprietor Role = "proprietor"
	RoleAdmin      Role = "admin"
)

func (r Role) storageKey() string {
	if r == RoleAdmin {
		return draftstore.KeyAdminSession
	}
	return draftstore.KeyProprietorSession
}

// Session is a logged-in bearer token persisted between runs.
type Session struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Expired inspects the bearer token's exp claim without verifying the
// signature (verification is the backend's job; we only avoid presenting a
// token we know is stale). Unparseable tokens count as expired.
func (s Session) Expired(now time.Time) bool {
	claims := &jwt.StandardClaims{}
	parser := &jwt.Parser{SkipClaimsValidation: true}
	if _, _, err := parser.ParseUnverified(s.Token, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == 0 {
		return false
	}
	return now.Unix() >= claims.ExpiresAt
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (token string, err error)
}

type Service struct {
	api    Authenticator
	store  *draftstore.Store
	logger core.Logger
}

func NewService(api Authenticator, store *draftstore.Store, logger core.Logger) *Service {
	return &Service{api: api, store: store, logger: logger}
}

// Login authenticates against the backend and persists the session blob.
func (svc *Service) Login(ctx context.Context, email, password string, role Role) (Session, error) {
	token, err := svc.api.Login(ctx, core.CleanString(email, true /* lower */), password)
	if err != nil {
		return Session{}, errors.Wrap(err, "logging in")
	}
	sess := Session{Token: token, Email: core.CleanString(email, true), Role: role}
	svc.store.Save(role.storageKey(), sess)
	return sess, nil
}

// Current returns the stored session for role if one exists and has not
// expired. Expired sessions are cleared on sight.
func (svc *Service) Current(role Role) (Session, bool) {
	var sess Session
	if !svc.store.Load(role.storageKey(), &sess) {
		return Session{}, false
	}
	if sess.Expired(time.Now()) {
		svc.logger.Debug("session: clearing expired token")
		svc.store.Clear(role.storageKey())
		return Session{}, false
	}
	return sess, true
}

// Logout drops the stored session for role.
func (svc *Service) Logout(role Role) {
	svc.store.Clear(role.storageKey())
}
