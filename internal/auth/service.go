package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/marketplace-backend/internal/shops"
	"github.com/angelmondragon/marketplace-backend/internal/users"
	pkgAuth "github.com/angelmondragon/marketplace-backend/pkg/auth"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	pkgdb "github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "Invalid credentials"
	userExistsMessage         = "User already exists"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID uuid.UUID) (*Profile, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userRepository interface {
	CreateWithTx(ctx context.Context, tx *gorm.DB, dto users.CreateUserDTO) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type shopRepository interface {
	CreateWithTx(ctx context.Context, tx *gorm.DB, shop *models.Shop) error
	LatestByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error)
}

type sessionManager interface {
	Create(ctx context.Context, userID uuid.UUID) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Tx             txRunner
	Users          userRepository
	Shops          shopRepository
	Sessions       sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type service struct {
	tx          txRunner
	users       userRepository
	shops       shopRepository
	sessions    sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService constructs the identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Shops == nil {
		return nil, fmt.Errorf("shop repository is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:          params.Tx,
		users:       params.Users,
		shops:       params.Shops,
		sessions:    params.Sessions,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	shopName := strings.TrimSpace(req.ShopName)

	details := map[string]string{}
	if len([]rune(username)) < 3 {
		details["username"] = "Username must be at least 3 characters"
	}
	if !strings.Contains(email, "@") {
		details["email"] = "Valid email is required"
	}
	if len(req.Password) < 6 {
		details["password"] = "Password must be at least 6 characters"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").WithDetails(details)
	}
	role := enums.RegistrationRole(req.Role)

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing user")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, userExistsMessage)
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		user *models.User
		shop *models.Shop
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.users.CreateWithTx(ctx, tx, users.CreateUserDTO{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         role,
		})
		if err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, userExistsMessage)
			}
			return err
		}
		user = created

		if role != enums.UserRoleVendor || shopName == "" {
			return nil
		}
		shop = shops.NewShopModel(user.ID, shops.ShopInput{ShopName: shopName})
		return s.shops.CreateWithTx(ctx, tx, shop)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register user")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"user_id": user.ID.String(), "role": string(user.Role)})
	s.logg.Info(ctx, "user.registered")
	return s.issue(ctx, user, shop)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	user.LastLoginAt = &now

	shop, err := s.latestShop(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user, shop)
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	shop, err := s.latestShop(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Profile{User: users.FromModel(user), Vendor: shopDTO(shop)}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) latestShop(ctx context.Context, user *models.User) (*models.Shop, error) {
	if user.Role != enums.UserRoleVendor {
		return nil, nil
	}
	shop, err := s.shops.LatestByOwner(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor profile")
	}
	return shop, nil
}

// issue registers a redis session and mints a token whose jti is the session id.
func (s *service) issue(ctx context.Context, user *models.User, shop *models.Shop) (*Session, error) {
	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:    user.ID,
		Role:      user.Role,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &Session{Token: token, User: users.FromModel(user), Vendor: shopDTO(shop)}, nil
}

func shopDTO(shop *models.Shop) *shops.ShopDTO {
	if shop == nil {
		return nil
	}
	dto := shops.FromModel(shop)
	return &dto
}
