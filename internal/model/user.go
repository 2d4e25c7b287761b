package model

import "time"

// Role names carried in the users.role column and in the JWT role claim.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents an account as stored in the `users` table.  The
// password hash is owned by the identity layer and never leaves the
// server; handlers must use UserView when writing JSON.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FullName     – display name shown to counterparties.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – student or admin.
//  PhoneNumber  – optional, back-filled on first checkout.
//  Department   – optional, back-filled on first checkout.
//  Protected    – set on the bootstrap admin; the account cannot be deleted.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	FullName     string    // users.full_name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	PhoneNumber  string    // users.phone_number (nullable)
	Department   string    // users.department (nullable)
	Protected    bool      // users.protected
	CreatedAt    time.Time // users.created_at
}

// UserView is the JSON-safe projection of a User.
type UserView struct {
	ID          uint64    `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Department  string    `json:"department,omitempty"`
	Protected   bool      `json:"protected,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// View strips credential material from the user.
func (u User) View() UserView {
	return UserView{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		Role:        u.Role,
		PhoneNumber: u.PhoneNumber,
		Department:  u.Department,
		Protected:   u.Protected,
		CreatedAt:   u.CreatedAt,
	}
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
