package adaptive

import (
	"context"
	"fmt"
	"net/url"

	"github.com/golang-jwt/jwt/v5"
)

// Token returns the current grant held by a live transaction, typically an
// mfa_challenge-scoped token usable for enrollment management mid-flow.
func (a *Adaptive) Token(ctx context.Context, transactionID string) (*Assessment, error) {
	_, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return assessment, nil
}

// Logout revokes an access token on the tenant.
func (a *Adaptive) Logout(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("token", accessToken)

	if err := a.client.PostForm(ctx, revokeEndpoint, form, nil); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Introspect asks the tenant whether a token is active and, if so, for its
// scope and subject. tokenTypeHint may be empty.
func (a *Adaptive) Introspect(ctx context.Context, token, tokenTypeHint string) (*Introspection, error) {
	form := url.Values{}
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("token", token)
	if tokenTypeHint != "" {
		form.Set("token_type_hint", tokenTypeHint)
	}

	var intr Introspection
	if err := a.client.PostForm(ctx, introspectEndpoint, form, &intr); err != nil {
		return nil, fmt.Errorf("failed to introspect token: %w", err)
	}
	return &intr, nil
}

// ParseTokenClaims decodes a JWT's claims without verifying its signature.
// Use it to read non-security-relevant claims (display name, subject) from
// tokens the tenant has already vouched for; trust decisions belong to
// Introspect.
func ParseTokenClaims(token string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}
