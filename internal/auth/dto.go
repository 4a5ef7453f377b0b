// AngelaMos | 2026
// dto.go

package auth

type RegisterRequest struct {
	Username     string `json:"username"     validate:"required,min=3,max=30"`
	Email        string `json:"email"        validate:"required,email,max=255"`
	Password     string `json:"password"     validate:"required,min=8,max=128"`
	ReferralCode string `json:"referralCode" validate:"omitempty,max=32"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	AccountType string `json:"accountType"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
