package domain

import "time"

// ============================================================
// Auth — Request / Response types
// ============================================================

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PublicUser is the part of a user that is safe to return to clients.
type PublicUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string     `json:"token"`
	ExpiresIn int        `json:"expiresIn"`
	User      PublicUser `json:"user"`
}

// User is a registered account as persisted by a user store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public strips the credential fields.
func (u *User) Public() PublicUser {
	return PublicUser{Name: u.Name, Email: u.Email}
}
