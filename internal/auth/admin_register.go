package auth

import (
	"context"
	"strings"

	"github.com/angelmondragon/marketplace-backend/internal/users"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	pkgdb "github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/security"
	"gorm.io/gorm"
)

// AdminRegisterRequest contains the credentials for the dev-only admin registration flow.
type AdminRegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AdminRegisterService creates admin accounts. It is only mounted in dev.
type AdminRegisterService interface {
	Register(ctx context.Context, req AdminRegisterRequest) (*users.UserDTO, error)
}

// AdminRegisterServiceParams names the dependencies for the admin register flow.
type AdminRegisterServiceParams struct {
	Tx             txRunner
	Users          userRepository
	PasswordConfig config.PasswordConfig
}

type adminRegisterService struct {
	tx          txRunner
	users       userRepository
	passwordCfg config.PasswordConfig
}

// NewAdminRegisterService builds a dev admin registration service.
func NewAdminRegisterService(params AdminRegisterServiceParams) (AdminRegisterService, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repository required")
	}
	return &adminRegisterService{
		tx:          params.Tx,
		users:       params.Users,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *adminRegisterService) Register(ctx context.Context, req AdminRegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.users.CreateWithTx(ctx, tx, users.CreateUserDTO{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         enums.UserRoleAdmin,
		})
		if err != nil {
			if pkgdb.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, userExistsMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
