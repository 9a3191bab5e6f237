package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"eventrio/internal/domain"
)

const minPasswordLen = 8

type authService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	google         domain.GoogleAuthenticator
	tokenExpiry    time.Duration
	contextTimeout time.Duration
}

// NewAuthService creates an AuthService. google may be nil when Google sign-in is not configured.
func NewAuthService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	google domain.GoogleAuthenticator,
	tokenExpiry time.Duration,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		issuer:         issuer,
		google:         google,
		tokenExpiry:    tokenExpiry,
		contextTimeout: timeout,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.InvalidInputError("invalid email format")
	}
	return email, nil
}

func (s *authService) Register(ctx context.Context, in domain.RegisterUserInput) (*domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, "", domain.InvalidInputError("username is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", err
	}
	if len(in.Password) < minPasswordLen {
		return nil, "", domain.InvalidInputError("password must be at least %d characters", minPasswordLen)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, "", err
	}
	hash, err := s.hasher.Hash(salt, in.Password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	user := domain.NewUser(username, email, strings.TrimSpace(in.PhoneNumber), now, now)
	user.PasswordHash = hash
	user.Salt = salt
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, "", fmt.Errorf("%w: email is already registered", domain.ErrDuplicate)
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return "", fmt.Errorf("get user: %w", err)
	}
	// Accounts created through Google have no password.
	if user.PasswordHash == "" {
		return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	return s.issuer.Issue(user.ID, user.Email, s.tokenExpiry)
}

func (s *authService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", domain.InvalidInputError("google sign-in is not configured")
	}
	return s.google.AuthCodeURL(state), nil
}

func (s *authService) LoginWithGoogle(ctx context.Context, code string) (*domain.User, string, error) {
	if s.google == nil {
		return nil, "", domain.InvalidInputError("google sign-in is not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, "", domain.InvalidInputError("missing authorization code")
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, profile.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now()
		username := profile.Name
		if username == "" {
			username, _, _ = strings.Cut(profile.Email, "@")
		}
		user = domain.NewUser(username, profile.Email, "", now, now)
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, "", fmt.Errorf("create user: %w", err)
		}
	case err != nil:
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	token, err := s.issuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.userRepo.GetByID(ctx, id)
}
