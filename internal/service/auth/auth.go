// internal/service/auth/auth.go
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskline-service/internal/domain/user"
	"taskline-service/internal/federation/google"
	xerrors "taskline-service/internal/pkg/errors"
	"taskline-service/internal/pkg/jwt"
	"taskline-service/internal/pkg/password"
	"taskline-service/internal/pkg/session"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// UserRepository is the external user-record collaborator. The service
// reads, creates and updates accounts but never owns their lifecycle.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	RecordLogin(ctx context.Context, id int64) error
}

// IdentityVerifier validates a third-party ID token and returns the
// verified claims, or fails.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, rawToken string) (*google.Identity, error)
}

// AuthResult is what every sign-in path produces: a fresh credential pair
// plus the authenticated account.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *user.User
}

type AuthService struct {
	userRepo UserRepository
	jwt      *jwt.Manager
	sessions session.Store
	google   IdentityVerifier
	logger   *zap.Logger
}

func NewAuthService(
	userRepo UserRepository,
	jwtManager *jwt.Manager,
	sessions session.Store,
	googleVerifier IdentityVerifier,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		jwt:      jwtManager,
		sessions: sessions,
		google:   googleVerifier,
		logger:   logger,
	}
}

// ========== Sign-up ==========

// SignUp creates a password account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, plainPassword string) (*AuthResult, error) {
	digest, err := password.Hash(plainPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Email:        email,
		PasswordHash: sql.NullString{String: digest, Valid: true},
		LastLogin:    sql.NullTime{Time: time.Now(), Valid: true},
	}

	// The repository's uniqueness constraint is the authority on duplicates.
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			return nil, xerrors.ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokenPair(ctx, u)
}

// ========== Sign-in ==========

// SignIn authenticates a password account. Unknown email, wrong password
// and federation-only accounts all fail with the same error.
func (s *AuthService) SignIn(ctx context.Context, email, plainPassword string) (*AuthResult, error) {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !u.PasswordHash.Valid || !password.Verify(plainPassword, u.PasswordHash.String) {
		return nil, xerrors.ErrUnauthorized
	}

	if err := s.userRepo.RecordLogin(ctx, u.ID); err != nil {
		s.logger.Error("failed to record login", zap.Int64("user_id", u.ID), zap.Error(err))
	}

	return s.issueTokenPair(ctx, u)
}

// ========== Federated sign-in ==========

// GoogleSignIn authenticates with a Google-issued ID token, creating the
// account on first login. Verification failures of any kind, including
// provider outages, surface as a plain authentication failure.
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (*AuthResult, error) {
	identity, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("google id token rejected", zap.Error(err))
		return nil, xerrors.ErrUnauthorized
	}

	u, err := s.userRepo.FindByGoogleID(ctx, identity.SubjectID)
	if err == nil {
		if err := s.userRepo.RecordLogin(ctx, u.ID); err != nil {
			s.logger.Error("failed to record login", zap.Int64("user_id", u.ID), zap.Error(err))
		}
		return s.issueTokenPair(ctx, u)
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// First federated login: create the account from the verified claims.
	u = &user.User{
		Email:     identity.Email,
		GoogleID:  sql.NullString{String: identity.SubjectID, Valid: true},
		Name:      sql.NullString{String: identity.Name, Valid: identity.Name != ""},
		Picture:   sql.NullString{String: identity.Picture, Valid: identity.Picture != ""},
		LastLogin: sql.NullTime{Time: time.Now(), Valid: true},
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			// Typically the email is already taken by a password account.
			return nil, xerrors.ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokenPair(ctx, u)
}

// ========== Refresh rotation ==========

// Refresh exchanges a valid refresh token for a new credential pair and
// invalidates the presented one. Presenting a superseded token is treated
// as replay: the current marker is dropped so every outstanding refresh
// token for that user dies with it.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwt.Verifier.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	userID, err := jwt.SubjectID(claims)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	stored, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, xerrors.ErrUnauthorized
		}
		s.logger.Error("session store read failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, xerrors.ErrUnauthorized
	}

	if stored != claims.SessionID {
		// The token was valid once but has been superseded, or it was
		// stolen and already spent. Drop the current marker too: the
		// legitimate holder must re-authenticate.
		s.logger.Warn("refresh token replay detected", zap.Int64("user_id", userID))
		if err := s.sessions.Delete(ctx, userID); err != nil {
			s.logger.Error("failed to invalidate session after replay",
				zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, xerrors.ErrUnauthorized
	}

	newSessionID := ulid.Make().String()

	// The swap must be a single atomic step in the store. A concurrent
	// rotation for the same user wins or loses here; the loser is not
	// retried, its token is already superseded.
	swapped, err := s.sessions.CompareAndPut(ctx, userID, stored, newSessionID)
	if err != nil {
		s.logger.Error("session store swap failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, xerrors.ErrUnauthorized
	}
	if !swapped {
		return nil, xerrors.ErrUnauthorized
	}

	return s.signPair(u, newSessionID)
}

// ========== Logout ==========

// Logout drops the user's session marker, revoking any outstanding refresh
// token. Deleting an absent marker is a no-op.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		s.logger.Error("failed to delete session marker", zap.Int64("user_id", userID), zap.Error(err))
		return xerrors.ErrStoreUnavailable
	}
	return nil
}

// ========== Token validation ==========

// ValidateAccessToken verifies a bearer access token and returns its claims.
func (s *AuthService) ValidateAccessToken(tokenString string) (*jwt.Claims, int64, error) {
	claims, err := s.jwt.Verifier.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, 0, xerrors.ErrUnauthorized
	}

	userID, err := jwt.SubjectID(claims)
	if err != nil {
		return nil, 0, xerrors.ErrUnauthorized
	}

	return claims, userID, nil
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return u, nil
}

// ========== Token-pair issuance ==========

// issueTokenPair is the shared tail of every sign-in path: mint a session
// id, sign both credentials, then persist the marker. No pair is returned
// without a durable marker, since the marker is the only way the pair can
// later be refreshed or revoked.
func (s *AuthService) issueTokenPair(ctx context.Context, u *user.User) (*AuthResult, error) {
	sessionID := ulid.Make().String()

	result, err := s.signPair(u, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Put(ctx, u.ID, sessionID); err != nil {
		s.logger.Error("session store write failed", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, xerrors.ErrStoreUnavailable
	}

	return result, nil
}

func (s *AuthService) signPair(u *user.User, sessionID string) (*AuthResult, error) {
	accessToken, err := s.jwt.Generator.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwt.Generator.GenerateRefreshToken(u.ID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         u,
	}, nil
}
