package domain

import (
	"context"
	"time"
)

// User represents an event creator account.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(username, email, phoneNumber string, createdAt, updatedAt time.Time) *User {
	return &User{
		Username:    username,
		Email:       email,
		PhoneNumber: phoneNumber,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// GoogleProfile is the subset of the Google account profile used for sign-in.
type GoogleProfile struct {
	Email string
	Name  string
}

// GoogleAuthenticator runs the Google OAuth code exchange.
type GoogleAuthenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleProfile, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// RegisterUserInput is the validated payload for creating an account.
type RegisterUserInput struct {
	Username    string
	Email       string
	Password    string
	PhoneNumber string
}

// AuthService defines sign-up, sign-in and profile lookups for event creators.
type AuthService interface {
	Register(ctx context.Context, in RegisterUserInput) (user *User, token string, err error)
	Login(ctx context.Context, email, password string) (token string, err error)
	LoginWithGoogle(ctx context.Context, code string) (user *User, token string, err error)
	GoogleAuthURL(state string) (string, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
