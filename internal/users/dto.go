package users

import "github.com/shopspring/decimal"

// RegisterRequest is the signup payload. The email doubles as the login
// username.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Name         string `json:"name" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=pharmacy distributor admin"`
	PhoneNumber  string `json:"phoneNumber" validate:"omitempty,max=32"`
	BusinessName string `json:"businessName" validate:"omitempty,max=255"`
	Address      string `json:"address" validate:"omitempty,max=500"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SetCreditLimitRequest struct {
	CreditLimit decimal.Decimal `json:"creditLimit" validate:"required"`
}
