package adaptive

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cumulusid/adaptive/pkg/transaction"
)

// validateAssertion is the single choke point every factor verification
// funnels through. It exchanges the factor's signed assertion on the token
// endpoint; an "openid" grant completes the flow (the transaction is
// deleted here and nowhere else), while a further-restricted grant is
// merged back into the transaction and the caller gets the enrollments it
// may still attempt. Remote failures fold into a deny result.
func (a *Adaptive) validateAssertion(ctx context.Context, sc Context, transactionID, assertion, userID string) (*Result, error) {
	form := a.grantForm(grantJWTBearer, sc)
	form.Set("assertion", assertion)

	var assessment Assessment
	if err := a.client.PostForm(ctx, tokenEndpoint, form, &assessment); err != nil {
		return a.denyResult("validate", err), nil
	}

	if hasScope(assessment.Scope, "openid") {
		if err := a.store.Delete(ctx, transactionID); err != nil {
			a.logger.Warn("failed to delete completed transaction",
				"transactionId", transactionID, "err", err)
		}
		return &Result{Status: StatusAllow, Token: &assessment}, nil
	}

	patch := transaction.Record{keyAssessment: &assessment}
	if userID != "" {
		patch[keyUserID] = userID
	}
	if err := a.store.Update(ctx, transactionID, patch); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	enrollments, err := a.getEnrollments(ctx, assessment.AccessToken, userID)
	if err != nil {
		return a.denyResult("validate", err), nil
	}

	return &Result{
		Status:          StatusRequires,
		TransactionID:   transactionID,
		EnrolledFactors: filterEnrollments(enrollments, assessment.AllowedFactors),
	}, nil
}

// getEnrollments lists the user's registered factors.
func (a *Adaptive) getEnrollments(ctx context.Context, accessToken, userID string) ([]Enrollment, error) {
	query := url.Values{}
	if userID != "" {
		query.Set("search", fmt.Sprintf("userId=%q", userID))
	}

	var page struct {
		Factors []Enrollment `json:"factors"`
	}
	if err := a.client.Get(ctx, accessToken, "/v2.0/factors", query, &page); err != nil {
		return nil, err
	}
	return page.Factors, nil
}

// filterEnrollments keeps the enrollments the policy still accepts. An
// allowed factor matches an enrollment's type, or its type joined to its
// subtype with an underscore when the enrollment has one.
func filterEnrollments(enrollments []Enrollment, allowed []string) []Enrollment {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allowedSet[f] = struct{}{}
	}

	matched := make([]Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		if _, ok := allowedSet[e.Type]; ok {
			matched = append(matched, e)
			continue
		}
		if e.SubType != "" {
			if _, ok := allowedSet[e.Type+"_"+e.SubType]; ok {
				matched = append(matched, e)
			}
		}
	}
	return matched
}
