package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charstorm/toposphere/internal/common"
	"github.com/charstorm/toposphere/internal/dbx"
	"github.com/charstorm/toposphere/internal/server/auth"
	"github.com/charstorm/toposphere/internal/server/config"
	"github.com/charstorm/toposphere/internal/server/models"
	"github.com/charstorm/toposphere/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

const msgDuplicateEmail = "a user with this email already exists"

// UserService provides account-related operations:
//   - Register / Login: create accounts, verify credentials, mint tokens
//   - RefreshToken: rotate refresh tokens and mint new access tokens
//   - Profile / UpdateProfile / ChangePassword: account self-management
//   - DeleteAccount: remove the account and everything it owns
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register validates the input, creates the account, and mints an initial
// token pair. A taken email surfaces as a validation error on the email
// field, both from the pre-check and from the unique constraint (the
// pre-check can lose a race).
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, *TokenPair, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	repo := s.repomanager.Users(s.db)

	taken, err := repo.EmailTaken(ctx, in.Email, "")
	if err != nil {
		return nil, nil, fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return nil, nil, common.FieldError("email", msgDuplicateEmail)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		DateJoined:   timeNow().UTC(),
	}
	if _, err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, nil, common.FieldError("email", msgDuplicateEmail)
		}
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies the email/password pair and, on success, returns the
// user and a new TokenPair. Wrong email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, common.ErrorUnauthorized
	}
	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(timeNow()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			// a concurrent refresh consumed the token first; only the
			// winner of the rotation gets a new pair
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Profile returns the account for userID.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a full (PUT) or partial (PATCH) profile update.
// On a full update, omitted optional name fields reset to empty. Email
// uniqueness is re-checked excluding the caller's own row.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdateInput, partial bool) (*models.User, error) {
	if err := in.Validate(partial); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		taken, err := repo.EmailTaken(ctx, *in.Email, userID)
		if err != nil {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
		if taken {
			return nil, common.FieldError("email", msgDuplicateEmail)
		}
		user.Email = *in.Email
	}

	if partial {
		if in.FirstName != nil {
			user.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			user.LastName = *in.LastName
		}
	} else {
		user.FirstName = stringOrEmpty(in.FirstName)
		user.LastName = stringOrEmpty(in.LastName)
	}

	if err := repo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.FieldError("email", msgDuplicateEmail)
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the old password, applies the policy to the
// new one, and stores the new hash. All refresh tokens are revoked in
// the same transaction so stolen sessions die with the old password.
func (s *UserService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, in.OldPassword) {
		return common.FieldError("old_password", "incorrect password")
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return common.ErrorInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, userID, hash); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).DeleteAllForUser(ctx, userID)
	})
}

// DeleteAccount removes the account after a password confirmation. The
// cascade runs in one transaction: refresh tokens, notes, todo items of
// owned lists, the lists, then the user row. A partial cascade can never
// be observed.
func (s *UserService) DeleteAccount(ctx context.Context, userID string, password string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return common.FieldError("password", "incorrect password")
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		if err := s.repomanager.Notes(tx).DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		// items before lists: the FK is not cascading
		if err := s.repomanager.TodoItems(tx).DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		if err := s.repomanager.TodoLists(tx).DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, userID)
	})
}

// --- helpers below ---

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
