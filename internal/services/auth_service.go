package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/mail"
	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/policy"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/security"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

const msgInvalidCredentials = "invalid credentials"

// AuthServiceConfig carries the collaborators and settings of the
// authentication service
type AuthServiceConfig struct {
	Hasher        *security.PasswordHasher
	Tokens        *security.TokenManager
	Mailer        mail.Sender
	Publisher     events.Publisher
	FrontendURL   string
	ResetTokenTTL time.Duration
}

type authService struct {
	baseService
	hasher      *security.PasswordHasher
	tokens      *security.TokenManager
	mailer      mail.Sender
	frontendURL string
	resetTTL    time.Duration
	now         func() time.Time
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, cfg AuthServiceConfig) AuthService {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = 24 * time.Hour
	}
	return &authService{
		baseService: baseService{
			repo:      repo,
			db:        db,
			logger:    logger,
			validator: validator,
			publisher: cfg.Publisher,
		},
		hasher:      cfg.Hasher,
		tokens:      cfg.Tokens,
		mailer:      cfg.Mailer,
		frontendURL: cfg.FrontendURL,
		resetTTL:    cfg.ResetTokenTTL,
		now:         time.Now,
	}
}

// ===== ACCOUNT LIFECYCLE =====

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (resp *models.AuthResponse, err error) {
	defer func() {
		metrics.AuthRegistrationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	s.logger.Info("Registering user", "email", req.Email, "role", req.Role)

	if errs := s.validator.GetBusinessValidator().ValidateRegister(req); len(errs) > 0 {
		return nil, invalid(errs)
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, NewValidationError("email", "user with this email already exists")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		Theme:        req.Theme,
		PasswordHash: hash,
		IsActive:     true,
	}
	if user.Role == "" {
		user.Role = models.RoleStudent
	}

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			if repositories.IsDuplicateError(err) {
				return NewValidationError("email", "user with this email already exists")
			}
			return err
		}
		resp, err = s.issueTokens(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserRegistered, map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	s.logger.Info("User registered", "user_id", user.ID)

	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (resp *models.AuthResponse, err error) {
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// keep the response time of unknown emails close to a real check
			_ = s.hasher.CompareDummy(req.Password)
			return nil, NewAuthenticationError(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if security.IsMismatch(err) {
			return nil, NewAuthenticationError(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if !user.IsActive {
		s.logger.Info("Login rejected for inactive user", "user_id", user.ID)
		return nil, NewAuthenticationError(msgInvalidCredentials)
	}

	now := s.now()
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.User().UpdateLastLogin(ctx, tx, user.ID, now); err != nil {
			return err
		}
		resp, err = s.issueTokens(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	user.LastLogin = &now

	s.logger.Info("User logged in", "user_id", user.ID)
	return resp, nil
}

// CreateAdmin is the only path that produces an admin account
func (s *authService) CreateAdmin(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	req := &RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, NewValidationError("email", "user with this email already exists")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, err
	}

	s.logger.Info("Admin user created", "user_id", user.ID)
	return user, nil
}

// ===== PASSWORD RESET =====

func (s *authService) RequestPasswordReset(ctx context.Context, req *ForgotPasswordRequest) (err error) {
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("request", metrics.Result(err)).Inc()
	}()

	if err := s.validate(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewValidationError("email", "user not found")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := security.NewResetToken()
	if err != nil {
		return err
	}

	reset := &models.PasswordResetToken{
		UserID: user.ID,
		Token:  token,
	}
	if err := s.repo.PasswordReset().Create(ctx, nil, reset); err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, mail.PasswordResetMessage(s.frontendURL, user.Email, token)); err != nil {
		s.logger.Error("Failed to send password reset email", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	s.publish(ctx, events.PasswordResetRequested, map[string]interface{}{
		"user_id": user.ID,
	})
	s.logger.Info("Password reset requested", "user_id", user.ID)

	return nil
}

// ResetPassword consumes the token and stores the new password in one
// transaction. The used flag is only flipped while still false, so of two
// concurrent resets with the same token exactly one succeeds.
func (s *authService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) (err error) {
	defer func() {
		metrics.PasswordResetsTotal.WithLabelValues("complete", metrics.Result(err)).Inc()
	}()

	if err := s.validate(req); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	now := s.now()
	var userID string
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		reset, err := s.repo.PasswordReset().GetByToken(ctx, tx, req.Token)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return NewValidationError("token", "invalid token")
			}
			return err
		}
		if !reset.IsValid(now, s.resetTTL) {
			return NewValidationError("token", "invalid token")
		}

		if err := s.repo.User().UpdatePassword(ctx, tx, reset.UserID, hash); err != nil {
			return err
		}

		consumed, err := s.repo.PasswordReset().MarkUsed(ctx, tx, reset.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return NewValidationError("token", "invalid token")
		}

		userID = reset.UserID
		return s.repo.RefreshToken().RevokeAllForUser(ctx, tx, reset.UserID, now)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.PasswordResetCompleted, map[string]interface{}{
		"user_id": userID,
	})
	s.logger.Info("Password reset completed", "user_id", userID)

	return nil
}

// ===== SESSIONS =====

// RefreshToken rotates the refresh token: the presented one is revoked and
// a new pair is issued
func (s *authService) RefreshToken(ctx context.Context, req *RefreshRequest) (resp *models.TokenResponse, err error) {
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("refresh", metrics.Result(err)).Inc()
	}()

	if err := s.validate(req); err != nil {
		return nil, err
	}

	claims, err := s.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		return nil, NewAuthenticationError("invalid or expired refresh token")
	}

	now := s.now()
	err = s.withTx(ctx, func(tx *gorm.DB) error {
		row, user, err := s.loadRefresh(ctx, tx, claims, now)
		if err != nil {
			return err
		}

		revoked, err := s.repo.RefreshToken().Revoke(ctx, tx, row.ID, now)
		if err != nil {
			return err
		}
		if !revoked {
			return NewAuthenticationError("invalid or expired refresh token")
		}

		pair, err := s.issueTokens(ctx, tx, user)
		if err != nil {
			return err
		}
		resp = &models.TokenResponse{
			Access:    pair.Access,
			Refresh:   pair.Refresh,
			ExpiresIn: int64(s.tokens.AccessTTL().Seconds()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout revokes the presented refresh token. Revoking an already revoked
// token is not an error.
func (s *authService) Logout(ctx context.Context, req *RefreshRequest) error {
	if err := s.validate(req); err != nil {
		return err
	}

	claims, err := s.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		return NewAuthenticationError("invalid or expired refresh token")
	}

	row, err := s.repo.RefreshToken().GetByHash(ctx, nil, security.HashTokenID(claims.ID))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewAuthenticationError("invalid or expired refresh token")
		}
		return err
	}
	if row.UserID != claims.Subject {
		return NewAuthenticationError("invalid or expired refresh token")
	}

	if _, err := s.repo.RefreshToken().Revoke(ctx, nil, row.ID, s.now()); err != nil {
		return err
	}

	s.logger.Info("User logged out", "user_id", row.UserID)
	return nil
}

// Authenticate resolves an access token to its user. Role and flags come
// from the stored user, not from the token.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, NewAuthenticationError("invalid or expired token")
	}

	user, err := s.repo.User().GetByID(ctx, nil, claims.Subject)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewAuthenticationError("user not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, NewAuthenticationError("user is inactive")
	}
	return user, nil
}

// ===== PROFILE =====

func (s *authService) GetProfile(ctx context.Context, actor *policy.Actor) (*models.User, error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}

	user, err := s.repo.User().GetByID(ctx, nil, actor.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("user", actor.ID)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the self-editable fields. Email, role and the
// status flags cannot be changed here.
func (s *authService) UpdateProfile(ctx context.Context, actor *policy.Actor, req *ProfileUpdateRequest) (*models.User, error) {
	if actor == nil {
		return nil, NewAuthenticationError("authentication required")
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Theme != nil {
		user.Theme = *req.Theme
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ProfilePicture != nil {
		user.ProfilePicture = req.ProfilePicture
	}
	if req.Metadata != nil {
		user.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.User().UpdateProfile(ctx, nil, user); err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", "user_id", user.ID)
	return s.GetProfile(ctx, actor)
}

// ===== HELPERS =====

// issueTokens signs a new token pair and stores the refresh row with tx
func (s *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *models.User) (*models.AuthResponse, error) {
	access, err := s.tokens.IssueAccess(user.ID, user.Role, user.IsSuperuser)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	row := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: security.HashTokenID(refresh.ID),
		ExpiresAt: refresh.ExpiresAt,
	}
	if err := s.repo.RefreshToken().Create(ctx, tx, row); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Refresh: refresh.Token,
		Access:  access,
		User:    user,
	}, nil
}

func (s *authService) loadRefresh(ctx context.Context, tx *gorm.DB, claims *security.RefreshClaims, now time.Time) (*models.RefreshToken, *models.User, error) {
	row, err := s.repo.RefreshToken().GetByHash(ctx, tx, security.HashTokenID(claims.ID))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, NewAuthenticationError("invalid or expired refresh token")
		}
		return nil, nil, err
	}
	if !row.IsActive(now) || row.UserID != claims.Subject {
		return nil, nil, NewAuthenticationError("invalid or expired refresh token")
	}

	user, err := s.repo.User().GetByID(ctx, tx, row.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, NewAuthenticationError("user not found")
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, NewAuthenticationError("user is inactive")
	}
	return row, user, nil
}
