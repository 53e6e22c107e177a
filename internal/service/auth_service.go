package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/dispute-portal/internal/auth"
	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/repository"
	"github.com/spec-kit/dispute-portal/internal/session"
	"github.com/spec-kit/dispute-portal/pkg/util/errorutil"
)

const invalidCredentials = "invalid email or password"

// DemoCredentials are accepted in addition to the credentials table when demo logins
// are enabled.
var DemoCredentials = []domain.Credential{
	{Email: "admin@demo", Password: "Passw0rd!", SupplierID: "ADMIN", SupplierName: "Administrator", Role: domain.RoleAdmin},
	{Email: "supplier@demo", Password: "Passw0rd!", SupplierID: "SUP-001", SupplierName: "Demo Supplier", Role: domain.RoleSupplier},
}

// AuthService handles authentication flows.
type AuthService struct {
	credentials repository.CredentialRepository
	activity    repository.ActivityRepository
	tokens      *auth.TokenManager
	sessions    session.Store
	demoLogins  bool
	logger      *zap.Logger
	now         func() time.Time
}

// AuthDependencies bundles collaborators for the auth service. Sessions may be nil, in
// which case tokens alone carry the identity.
type AuthDependencies struct {
	CredentialRepo repository.CredentialRepository
	ActivityRepo   repository.ActivityRepository
	Tokens         *auth.TokenManager
	Sessions       session.Store
	DemoLogins     bool
	Logger         *zap.Logger
	Clock          func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	s := &AuthService{
		credentials: deps.CredentialRepo,
		activity:    deps.ActivityRepo,
		tokens:      deps.Tokens,
		sessions:    deps.Sessions,
		demoLogins:  deps.DemoLogins,
		logger:      deps.Logger,
		now:         deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Identity  domain.Identity
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// Authenticate checks the supplied credentials. Every attempt is written to the
// activity log on a best-effort basis.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		s.recordAttempt(ctx, domain.LoginAttempt{Email: email, Status: domain.LoginStatusFailed, ErrorMessage: "email and password are required"})
		return domain.Identity{}, errorutil.NewValidationError("email and password are required", nil)
	}

	candidates, err := s.candidates(ctx)
	if err != nil {
		s.recordAttempt(ctx, domain.LoginAttempt{Email: email, Status: domain.LoginStatusFailed, ErrorMessage: errorutil.Message(err)})
		return domain.Identity{}, err
	}

	for _, c := range candidates {
		if auth.MatchEmail(c.Email, email) && auth.MatchPassword(c.Password, password) {
			identity := c.Identity()
			s.recordAttempt(ctx, domain.LoginAttempt{
				Email:        identity.Email,
				SupplierID:   identity.SupplierID,
				SupplierName: identity.SupplierName,
				Status:       domain.LoginStatusSuccess,
			})
			return identity, nil
		}
	}

	s.recordAttempt(ctx, domain.LoginAttempt{Email: email, Status: domain.LoginStatusFailed, ErrorMessage: invalidCredentials})
	return domain.Identity{}, errorutil.NewUnauthorized(invalidCredentials)
}

func (s *AuthService) candidates(ctx context.Context) ([]domain.Credential, error) {
	creds, err := s.credentials.List(ctx)
	if err != nil {
		if !s.demoLogins {
			return nil, err
		}
		s.logger.Warn("credentials table unavailable; using demo logins only", zap.Error(err))
		creds = nil
	}
	if s.demoLogins {
		creds = append(creds, DemoCredentials...)
	}
	return creds, nil
}

// Login authenticates the caller, opens a session and issues a token bound to it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	identity, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := s.tokens.GenerateToken(sessionID, identity)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	if s.sessions != nil {
		if err := s.sessions.Save(ctx, sessionID, identity, expiresAt); err != nil {
			return nil, errorutil.NewInternalError(err)
		}
	}

	s.logger.Info("supplier logged in",
		zap.String("email", identity.Email),
		zap.String("role", string(identity.Role)))
	return &LoginResult{Identity: identity, SessionID: sessionID, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the session. Without a session store there is nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if s.sessions == nil || sessionID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return errorutil.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) recordAttempt(ctx context.Context, attempt domain.LoginAttempt) {
	if s.activity == nil {
		return
	}
	attempt.Timestamp = s.now().UTC()
	if err := s.activity.Record(ctx, attempt); err != nil {
		s.logger.Warn("failed to record login attempt",
			zap.String("email", attempt.Email),
			zap.Error(err))
	}
}
