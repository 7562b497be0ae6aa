package service

import (
	"context" // Request scoped cancellation
	"time"    // Token expiry

	"github.com/sirupsen/logrus" // Structured logging

	"store_rating/internal/domain"     // Domain models and error kinds
	"store_rating/internal/repository" // Entity store
)

// LoginInput is an email and password pair.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"` // Login email
	Password string `json:"password" validate:"required"`    // Plain password, compared with bcrypt
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string    `json:"accessToken"` // Signed JWT
	ExpiresAt   time.Time `json:"expiresAt"`   // Token expiry
	User        UserView  `json:"user"`        // Logged in user
}

// AuthService authenticates users and resolves tokens into actors.
type AuthService struct {
	repo        *repository.Repository // User lookups
	tokens      Tokens                 // JWT issuing and parsing
	passwords   Passwords              // Password hashing
	revocations Revocations            // Logged out tokens, optional
	limiter     LoginLimiter           // Failed login throttle, optional
}

// NewAuthService wires an AuthService. revocations and limiter may be nil,
// which disables logout revocation and login throttling.
func NewAuthService(repo *repository.Repository, tokens Tokens, passwords Passwords, revocations Revocations, limiter LoginLimiter) *AuthService {
	return &AuthService{
		repo:        repo,
		tokens:      tokens,
		passwords:   passwords,
		revocations: revocations,
		limiter:     limiter,
	}
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = normalizeEmail(in.Email) // Emails are stored lower-case
	if err := check(in); err != nil {
		return Session{}, err
	}
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, in.Email)
		if err != nil {
			return Session{}, domain.StorageUnavailable(err) // Throttle store unreachable
		}
		if !ok {
			return Session{}, domain.RateLimited("too many failed login attempts, try again later")
		}
	}

	u, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil && !isNotFound(err) {
		return Session{}, err
	}
	if u == nil || !s.passwords.Compare(u.Password, in.Password) {
		s.recordFailure(ctx, in.Email) // Count the failed attempt
		return Session{}, domain.Unauthenticated("invalid email or password") // Same message for both cases
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, in.Email); err != nil {
			logrus.WithError(err).Warn("Failed to reset login attempts")
		}
	}

	token, claims, err := s.tokens.Issue(u.ID, u.Role) // Sign a new access token
	if err != nil {
		return Session{}, err
	}
	logrus.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("User logged in")
	return Session{AccessToken: token, ExpiresAt: claims.ExpiresAt, User: newUserView(u)}, nil
}

// recordFailure logs a failed login and counts it against email
func (s *AuthService) recordFailure(ctx context.Context, email string) {
	logrus.WithField("email", email).Warn("Failed login attempt")
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, email); err != nil {
		logrus.WithError(err).Warn("Failed to record login attempt")
	}
}

// Identify resolves a bearer token into the acting identity. The role is read
// from storage so role changes take effect immediately.
func (s *AuthService) Identify(ctx context.Context, token string) (*domain.Actor, domain.TokenClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, domain.TokenClaims{}, domain.Unauthenticated("invalid or expired token") // Bad signature, malformed or expired
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, domain.TokenClaims{}, domain.StorageUnavailable(err)
		}
		if revoked {
			return nil, domain.TokenClaims{}, domain.Unauthenticated("token has been revoked")
		}
	}
	u, err := s.repo.GetUser(ctx, claims.UserID) // Current role comes from storage
	if isNotFound(err) {
		return nil, domain.TokenClaims{}, domain.Unauthenticated("user no longer exists")
	} else if err != nil {
		return nil, domain.TokenClaims{}, err
	}
	return &domain.Actor{ID: u.ID, Role: u.Role}, claims, nil
}

// Logout revokes the token described by claims until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims domain.TokenClaims) error {
	if s.revocations == nil || claims.TokenID == "" {
		return nil // Nothing to revoke
	}
	if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return domain.StorageUnavailable(err)
	}
	logrus.WithField("user_id", claims.UserID).Info("User logged out")
	return nil
}
