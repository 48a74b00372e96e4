package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles account registration and both authentication
// flows: browser sessions (cookie token) and API tokens (bearer).
// Tokens are stored hashed; the plaintext is returned once.
type AuthService struct {
	accounts domain.AccountRepository
}

func NewAuthService(accounts domain.AccountRepository) *AuthService {
	return &AuthService{accounts: accounts}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return domain.User{}, errors.New("email and password are required")
	}
	if len(password) < 8 {
		return domain.User{}, errors.New("password must be at least 8 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.accounts.CreateUser(ctx, domain.User{Email: email, PasswordHash: hash})
	if err != nil {
		return domain.User{}, err
	}

	s.WriteActivity(ctx, &u.ID, "auth.register", "user", &u.ID, "")
	return u, nil
}

func (s *AuthService) LoginWithSession(ctx context.Context, email, password string, ttl time.Duration) (domain.User, string, error) {
	u, err := s.authenticateEmailPassword(ctx, email, password)
	if err != nil {
		return domain.User{}, "", err
	}

	plain, hash, err := newTokenPair()
	if err != nil {
		return domain.User{}, "", err
	}
	_, err = s.accounts.CreateSession(ctx, domain.AuthSession{
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().UTC().Add(ttl),
	})
	if err != nil {
		return domain.User{}, "", err
	}

	s.WriteActivity(ctx, &u.ID, "auth.login.session", "user", &u.ID, "")
	return u, plain, nil
}

func (s *AuthService) LoginWithAPIToken(ctx context.Context, email, password, tokenName string, ttl *time.Duration) (domain.User, string, error) {
	u, err := s.authenticateEmailPassword(ctx, email, password)
	if err != nil {
		return domain.User{}, "", err
	}

	plain, hash, err := newTokenPair()
	if err != nil {
		return domain.User{}, "", err
	}
	var expiresAt *time.Time
	if ttl != nil {
		t := time.Now().UTC().Add(*ttl)
		expiresAt = &t
	}
	_, err = s.accounts.CreateAPIToken(ctx, domain.APIToken{
		UserID:    u.ID,
		Name:      defaultString(tokenName, "cli"),
		TokenHash: hash,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return domain.User{}, "", err
	}

	s.WriteActivity(ctx, &u.ID, "auth.login.api_token", "user", &u.ID, "")
	return u, plain, nil
}

func (s *AuthService) AuthenticateSession(ctx context.Context, token string) (domain.Identity, error) {
	hash := hashToken(token)
	session, err := s.accounts.GetSessionByTokenHash(ctx, hash)
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	if session.ExpiresAt.Before(time.Now().UTC()) {
		_ = s.accounts.DeleteSessionByTokenHash(ctx, hash)
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return s.identityByUserID(ctx, session.UserID)
}

func (s *AuthService) AuthenticateBearerToken(ctx context.Context, token string) (domain.Identity, error) {
	apit, err := s.accounts.GetAPITokenByTokenHash(ctx, hashToken(token))
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	if apit.ExpiresAt != nil && apit.ExpiresAt.Before(time.Now().UTC()) {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return s.identityByUserID(ctx, apit.UserID)
}

func (s *AuthService) LogoutSession(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.accounts.DeleteSessionByTokenHash(ctx, hashToken(token))
}

func (s *AuthService) ListActivityLogs(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return s.accounts.ListActivityLogs(ctx, limit)
}

// WriteActivity records best-effort; a failed log never fails the
// operation it describes.
func (s *AuthService) WriteActivity(ctx context.Context, actorUserID *uuid.UUID, action, targetType string, targetID *uuid.UUID, metadata string) {
	_ = s.accounts.CreateActivityLog(ctx, domain.ActivityLog{
		ActorUserID: actorUserID,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
		Metadata:    metadata,
	})
}

func (s *AuthService) authenticateEmailPassword(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.accounts.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return domain.User{}, errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, errors.New("invalid credentials")
	}
	return u, nil
}

func (s *AuthService) identityByUserID(ctx context.Context, userID uuid.UUID) (domain.Identity, error) {
	u, err := s.accounts.GetUserByID(ctx, userID)
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	weaves, worlds, err := s.accounts.MembershipsByUserID(ctx, userID)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{User: u, Weaves: weaves, Worlds: worlds}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func newTokenPair() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	plain := base64.RawURLEncoding.EncodeToString(raw)
	return plain, hashToken(plain), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", sum[:])
}

func defaultString(input, fallback string) string {
	if strings.TrimSpace(input) == "" {
		return fallback
	}
	return input
}
