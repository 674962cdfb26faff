package adaptive

import (
	"context"
	"fmt"
	"net/url"
)

// LookupIdentitySources lists the password-capable identity sources the
// transaction's grant can authenticate against, optionally filtered by
// exact source name.
func (a *Adaptive) LookupIdentitySources(ctx context.Context, sc Context, transactionID, sourceName string) ([]IdentitySource, error) {
	_, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if sourceName != "" {
		query.Set("search", fmt.Sprintf("name=%q", sourceName))
	}

	var page struct {
		IdentitySources []IdentitySource `json:"identitySources"`
	}
	if err := a.client.Get(ctx, assessment.AccessToken, "/v1.0/identitysources", query, &page); err != nil {
		return nil, err
	}
	return page.IdentitySources, nil
}

// EvaluatePassword verifies a username/password pair against an identity
// source. Password is the only first factor without a generate step: the
// resolved user id is recorded on the transaction and the resulting
// assertion goes straight to validation. Wrong credentials fold into a
// deny result.
func (a *Adaptive) EvaluatePassword(ctx context.Context, sc Context, transactionID, identitySourceID, username, password string) (*Result, error) {
	_, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var verification struct {
		ID        string `json:"id"`
		Assertion string `json:"assertion"`
	}
	err = a.client.Post(ctx, assessment.AccessToken,
		"/v1.0/authnmethods/password/"+identitySourceID,
		url.Values{"returnJwt": []string{"true"}},
		map[string]string{"username": username, "password": password},
		&verification)
	if err != nil {
		return a.denyResult("password", err), nil
	}

	a.logger.Debug("password verified", "transactionId", transactionID, "userId", verification.ID)

	return a.validateAssertion(ctx, sc, transactionID, verification.Assertion, verification.ID)
}
