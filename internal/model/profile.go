package model

type Role string

const (
	RoleReceptionist Role = "receptionist"
	RoleDoctor       Role = "doctor"
	RoleAssistant    Role = "assistant"
)

type Profile struct {
	Base
	Email        string `db:"email" json:"email"`
	FullName     string `db:"full_name" json:"full_name"`
	Role         Role   `db:"role" json:"role"`
	PasswordHash string `db:"password_hash" json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	Profile     *Profile `json:"profile"`
}
