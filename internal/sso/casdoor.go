// Package sso exchanges single sign-on authorization codes for verified identities.
package sso

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/lecture-service/internal/config"
)

var ErrNoEmail = errors.New("identity provider returned no email")

// Identity is the verified caller returned by the identity provider
type Identity struct {
	Email       string
	DisplayName string
	Handle      string
}

// Provider turns an authorization code into an Identity
type Provider interface {
	Exchange(ctx context.Context, code, state string) (*Identity, error)
}

type CasdoorProvider struct {
	client *casdoorsdk.Client
}

func NewCasdoorProvider(cfg config.CasdoorConfig) *CasdoorProvider {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorProvider{client: client}
}

func (p *CasdoorProvider) Exchange(ctx context.Context, code, state string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token, err := p.client.GetOAuthToken(code, state)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	claims, err := p.client.ParseJwtToken(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casdoor token: %w", err)
	}

	return identityFromUser(claims.User)
}

func identityFromUser(user casdoorsdk.User) (*Identity, error) {
	email := strings.TrimSpace(user.Email)
	if email == "" {
		return nil, ErrNoEmail
	}
	name := strings.TrimSpace(user.DisplayName)
	if name == "" {
		name = user.Name
	}
	return &Identity{Email: email, DisplayName: name, Handle: user.Name}, nil
}
