package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/session"
)

const (
	minPasswordLength = 6
	minNameLength     = 2
)

// userNamespace scopes user ids derived from email addresses.
var userNamespace = uuid.MustParse("9a3b1f64-6c2e-4d8e-b5a1-0f7d2c4e8b13")

// AuthResult is returned by Login and Signup.
type AuthResult struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Session     session.Session `json:"user"`
}

// Service is the identity collaborator. It accepts any well-formed credentials
// and derives a stable user id from the email, so a returning user sees their bookings.
type Service struct {
	tokens  *JWTManager
	isAdmin func(email string) bool
}

// NewService creates a new Service. isAdmin may be nil.
func NewService(tokens *JWTManager, isAdmin func(email string) bool) *Service {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &Service{tokens: tokens, isAdmin: isAdmin}
}

// Login signs a user in. The display name is taken from the local part of the email.
func (s *Service) Login(email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	name := email[:strings.Index(email, "@")]
	return s.issue(email, name)
}

// Signup registers a user and signs them in.
func (s *Service) Signup(name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < minNameLength {
		return nil, domain.NewInvalidRequestError("name must be at least 2 characters")
	}
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	return s.issue(email, name)
}

// UserIDForEmail returns the stable user id for email.
func UserIDForEmail(email string) string {
	return uuid.NewSHA1(userNamespace, []byte(normalizeEmail(email))).String()
}

func (s *Service) issue(email, name string) (*AuthResult, error) {
	sess := session.Session{
		UserID: UserIDForEmail(email),
		Email:  email,
		Name:   name,
		Role:   session.RoleTraveller,
	}
	if s.isAdmin(email) {
		sess.Role = session.RoleAdmin
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(sess)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: token, ExpiresAt: expiresAt, Session: sess}, nil
}

func validateCredentials(email, password string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return domain.NewInvalidRequestError("a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return domain.NewInvalidRequestError("password must be at least 6 characters")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
