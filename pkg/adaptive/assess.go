package adaptive

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cumulusid/adaptive/pkg/transaction"
)

// OAuth endpoints on the tenant's default definition.
const (
	tokenEndpoint      = "/v1.0/endpoint/default/token"
	introspectEndpoint = "/v1.0/endpoint/default/introspect"
	revokeEndpoint     = "/v1.0/endpoint/default/revoke"
)

const grantJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// AssessPolicy runs the access policy against the given session context.
// An "openid" scope grant means the policy is satisfied without further
// verification: the result is allow and carries the token. A restricted
// grant opens a new transaction and returns requires together with the
// factor types the policy accepts. Policy denials and remote failures fold
// into a deny result.
func (a *Adaptive) AssessPolicy(ctx context.Context, sc Context) (*Result, error) {
	form := a.grantForm("policyauth", sc)

	var assessment Assessment
	if err := a.client.PostForm(ctx, tokenEndpoint, form, &assessment); err != nil {
		return a.denyResult("assess", err), nil
	}

	if hasScope(assessment.Scope, "openid") {
		return &Result{Status: StatusAllow, Token: &assessment}, nil
	}

	id, err := a.store.Create(ctx, transaction.Record{keyAssessment: &assessment})
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	a.logger.Debug("assessment requires verification",
		"transactionId", id, "factors", assessment.AllowedFactors)

	return &Result{
		Status:         StatusRequires,
		TransactionID:  id,
		AllowedFactors: factorList(assessment.AllowedFactors),
	}, nil
}

// Refresh exchanges a refresh token for a new grant, re-running the access
// policy. A grant restricted to further factors opens a transaction, the
// same way AssessPolicy does, except the user is already known so the
// requires result carries the user's matching enrollments.
func (a *Adaptive) Refresh(ctx context.Context, sc Context, refreshToken string) (*Result, error) {
	form := a.grantForm("refresh_token", sc)
	form.Set("refresh_token", refreshToken)

	var assessment Assessment
	if err := a.client.PostForm(ctx, tokenEndpoint, form, &assessment); err != nil {
		return a.denyResult("refresh", err), nil
	}

	if len(assessment.AllowedFactors) == 0 {
		return &Result{Status: StatusAllow, Token: &assessment}, nil
	}

	rec := transaction.Record{keyAssessment: &assessment}
	userID := subjectOf(assessment.AccessToken)
	if userID != "" {
		rec[keyUserID] = userID
	}

	id, err := a.store.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	enrollments, err := a.getEnrollments(ctx, assessment.AccessToken, userID)
	if err != nil {
		return a.denyResult("refresh", err), nil
	}

	return &Result{
		Status:          StatusRequires,
		TransactionID:   id,
		EnrolledFactors: filterEnrollments(enrollments, assessment.AllowedFactors),
	}, nil
}

// grantForm builds the common token-endpoint form: client credentials, the
// grant type and the session context the policy engine evaluates.
func (a *Adaptive) grantForm(grantType string, sc Context) url.Values {
	sc = sc.withDefaults()

	form := url.Values{}
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("grant_type", grantType)
	form.Set("sessionId", sc.SessionID)
	form.Set("userAgent", sc.UserAgent)
	form.Set("ipAddress", sc.IPAddress)
	form.Set("evaluationContext", sc.EvaluationContext)
	return form
}

func hasScope(scope, want string) bool {
	for _, s := range strings.Fields(scope) {
		if s == want {
			return true
		}
	}
	return false
}

// subjectOf extracts the sub claim from a token without verifying it.
// Returns "" for opaque or malformed tokens.
func subjectOf(token string) string {
	claims, err := ParseTokenClaims(token)
	if err != nil {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

func factorList(types []string) []Factor {
	factors := make([]Factor, 0, len(types))
	for _, t := range types {
		factors = append(factors, Factor{Type: t})
	}
	return factors
}
