package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/guestpostlinks/pr-admin-api/internal/models"
	"github.com/guestpostlinks/pr-admin-api/pkg/config"
	appErrors "github.com/guestpostlinks/pr-admin-api/pkg/errors"
)

type authUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

type authRoleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Role, error)
}

type otpStore interface {
	Put(ctx context.Context, email string, otp int, ttl time.Duration) error
	Get(ctx context.Context, email string) (int, bool, error)
	Delete(ctx context.Context, email string) error
}

type resetMailer interface {
	SendPasswordReset(to, recipientName string, otp int) error
}

// AuthService issues and validates access tokens and runs the OTP-based
// password reset flow.
type AuthService struct {
	users     authUserRepository
	roles     authRoleRepository
	otps      otpStore
	mailer    resetMailer
	jwtCfg    config.JWTConfig
	otpTTL    time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users authUserRepository,
	roles authRoleRepository,
	otps otpStore,
	mailer resetMailer,
	jwtCfg config.JWTConfig,
	otpTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		users:     users,
		roles:     roles,
		otps:      otps,
		mailer:    mailer,
		jwtCfg:    jwtCfg,
		otpTTL:    otpTTL,
		validator: validate,
		logger:    logger,
	}
}

// Register creates a self-service account. When the requested role exists its
// permission set is snapshotted onto the user record.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		RoleID:       req.Role,
		Status:       models.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if req.Role != "" {
		role, err := s.roles.FindByID(ctx, req.Role)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to load role")
		}
		if role != nil {
			user.Permission = role.Permission
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Internal(err, "failed to create user")
	}

	info := user.Info()
	return &info, nil
}

// Login authenticates credentials and issues a signed token. Remember-me
// extends the token lifetime.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	if user.IsDeleted || user.IsBlocked {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account is blocked or removed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	ttl := s.jwtCfg.Expiration
	if req.RememberMe {
		ttl = s.jwtCfg.RememberExpiration
	}

	token, err := s.issueToken(user, ttl)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign token")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// Login still succeeds; the timestamp is advisory.
		s.logger.Warn("failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
		User:      user.Info(),
	}, nil
}

// CurrentUser refreshes the session for an already-authenticated user,
// returning their profile with a newly issued token.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.LoginResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}

	token, err := s.issueToken(user, s.jwtCfg.Expiration)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign token")
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtCfg.Expiration.Seconds()),
		User:      user.Info(),
	}, nil
}

// ValidateToken parses and verifies a self-issued token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// ForgotPassword generates a six-digit passcode, stores it under a TTL and
// emails it to the account owner.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Internal(err, "failed to load user")
	}
	if user.IsDeleted {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}

	otp, err := generateOTP()
	if err != nil {
		return appErrors.Internal(err, "failed to generate otp")
	}

	if err := s.otps.Put(ctx, user.Email, otp, s.otpTTL); err != nil {
		return appErrors.Internal(err, "failed to store otp")
	}

	if err := s.mailer.SendPasswordReset(user.Email, user.FullName, otp); err != nil {
		return appErrors.Internal(err, "failed to send reset email")
	}

	s.logger.Info("password reset otp issued", zap.String("user_id", user.ID))
	return nil
}

// ResetPassword verifies the passcode and replaces the password hash. The
// passcode is single-use and removed on success.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reset payload")
	}
	if req.NewPassword != req.ConfirmPassword {
		return appErrors.Clone(appErrors.ErrValidation, "passwords do not match")
	}

	stored, found, err := s.otps.Get(ctx, req.Email)
	if err != nil {
		return appErrors.Internal(err, "failed to load otp")
	}
	if !found || stored != req.OTP {
		return appErrors.Clone(appErrors.ErrValidation, "invalid or expired otp")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Internal(err, "failed to load user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Internal(err, "failed to hash password")
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hash), time.Now().UTC()); err != nil {
		return appErrors.Internal(err, "failed to update password")
	}

	if err := s.otps.Delete(ctx, req.Email); err != nil {
		s.logger.Warn("failed to invalidate otp", zap.String("user_id", user.ID), zap.Error(err))
	}

	return nil
}

func (s *AuthService) issueToken(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := models.JWTClaims{
		UserID: user.ID,
		Role:   user.RoleID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

// generateOTP draws a uniform six-digit passcode.
func generateOTP() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 100000, nil
}
