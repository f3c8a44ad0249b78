package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/coexhq/coex-backend/pkg/auth"
	"github.com/coexhq/coex-backend/pkg/config"
	"github.com/coexhq/coex-backend/pkg/db/models"
	"github.com/coexhq/coex-backend/pkg/enums"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
	"github.com/coexhq/coex-backend/pkg/security"
)

// defaultPharmacyCreditLimit seeds new pharmacy accounts that register
// without a negotiated limit.
var defaultPharmacyCreditLimit = decimal.NewFromInt(1000)

const defaultDistributorBusinessType = "Distributor"

// Service covers authentication and account management.
type Service interface {
	Register(ctx context.Context, input RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, input LoginRequest) (*AuthResult, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	ListGrouped(ctx context.Context) (*GroupedUsers, error)
	SetCreditLimit(ctx context.Context, targetID uint, limit decimal.Decimal) (*models.User, error)
}

// AuthResult pairs the signed access token with the authenticated account.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// GroupedUsers is the admin directory view, split by role.
type GroupedUsers struct {
	Pharmacies   []models.User `json:"pharmacies"`
	Distributors []models.User `json:"distributors"`
	Admins       []models.User `json:"admins"`
}

type service struct {
	repo   Repository
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// NewService wires users dependencies.
func NewService(repo Repository, jwtCfg config.JWTConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repository required")
	}
	if jwtCfg.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "jwt secret required")
	}
	return &service{repo: repo, jwtCfg: jwtCfg, now: time.Now}, nil
}

// Register creates a new account and signs it in. The email is stored as
// the login username, so a second registration with the same email fails.
func (s *service) Register(ctx context.Context, input RegisterRequest) (*AuthResult, error) {
	role, err := enums.ParseRole(input.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	if _, err := s.repo.FindByUsername(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing account")
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Username:     email,
		PasswordHash: hash,
		Name:         input.Name,
		Email:        email,
		PhoneNumber:  input.PhoneNumber,
		Role:         role,
		BusinessName: input.BusinessName,
		Address:      input.Address,
	}
	switch role {
	case enums.RolePharmacy:
		limit := defaultPharmacyCreditLimit
		user.CreditLimit = &limit
	case enums.RoleDistributor:
		user.BusinessType = defaultDistributorBusinessType
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
	}

	return s.signIn(user)
}

// Login authenticates by username and password. Unknown accounts and bad
// passwords are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, input LoginRequest) (*AuthResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find account")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.signIn(user)
}

func (s *service) signIn(user *models.User) (*AuthResult, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, s.now().UTC(), auth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *service) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find user")
	}
	return user, nil
}

func (s *service) ListGrouped(ctx context.Context) (*GroupedUsers, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	grouped := &GroupedUsers{
		Pharmacies:   []models.User{},
		Distributors: []models.User{},
		Admins:       []models.User{},
	}
	for _, user := range rows {
		switch user.Role {
		case enums.RolePharmacy:
			grouped.Pharmacies = append(grouped.Pharmacies, user)
		case enums.RoleDistributor:
			grouped.Distributors = append(grouped.Distributors, user)
		case enums.RoleAdmin:
			grouped.Admins = append(grouped.Admins, user)
		}
	}
	return grouped, nil
}

// SetCreditLimit updates a pharmacy's credit ceiling. Only pharmacy
// accounts carry credit limits.
func (s *service) SetCreditLimit(ctx context.Context, targetID uint, limit decimal.Decimal) (*models.User, error) {
	if limit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit limit cannot be negative")
	}

	user, err := s.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.RolePharmacy {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit limits apply to pharmacy accounts only")
	}

	if err := s.repo.UpdateCreditLimit(ctx, targetID, limit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update credit limit")
	}
	user.CreditLimit = &limit
	return user, nil
}
