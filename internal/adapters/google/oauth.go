package google

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"eventrio/internal/domain"
)

// OAuthConfig holds the Google OAuth client registration.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Authenticator signs users in with Google and reads their profile.
type Authenticator struct {
	config      *oauth2.Config
	serviceOpts []option.ClientOption
}

// NewAuthenticator returns a domain.GoogleAuthenticator for the given client.
func NewAuthenticator(cfg OAuthConfig) *Authenticator {
	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
			Endpoint:     googleoauth.Endpoint,
		},
	}
}

func (a *Authenticator) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (a *Authenticator) Exchange(ctx context.Context, code string) (*domain.GoogleProfile, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %v", domain.ErrUnauthorized, err)
	}
	opts := append([]option.ClientOption{option.WithTokenSource(a.config.TokenSource(ctx, token))}, a.serviceOpts...)
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%w: google account has no email", domain.ErrUnauthorized)
	}
	return &domain.GoogleProfile{Email: strings.ToLower(info.Email), Name: info.Name}, nil
}

var _ domain.GoogleAuthenticator = (*Authenticator)(nil)
