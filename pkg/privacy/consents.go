package privacy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// consentBatchSuccess is the message id the tenant reports when every
// operation in a consent batch applied.
const consentBatchSuccess = "CSIBT0070I"

// StoreConsents records the user's consent decisions as a patch-style
// batch of add operations, with the subject context merged into every
// consent. Partial failures surface as status fail with the per-op results
// attached.
func (p *Privacy) StoreConsents(ctx context.Context, consents []Consent) (*StoreResult, error) {
	type consentOp struct {
		Op    string  `json:"op"`
		Value Consent `json:"value"`
	}

	ops := make([]consentOp, 0, len(consents))
	for _, consent := range consents {
		if p.context.SubjectID != "" {
			consent.SubjectID = p.context.SubjectID
		}
		if p.context.IsExternalSubject {
			consent.IsExternalSubject = true
		}
		if p.context.IPAddress != "" {
			consent.GeoIP = p.context.IPAddress
		}
		ops = append(ops, consentOp{Op: "add", Value: consent})
	}

	var resp struct {
		MessageID string          `json:"messageId"`
		Results   json.RawMessage `json:"results"`
	}
	err := p.client.Patch(ctx, p.auth.AccessToken, "/v1.0/privacy/consents", nil, ops, &resp)
	if err != nil {
		return &StoreResult{Status: StatusError, Error: p.remoteDetail("store consents", err)}, nil
	}

	status := StatusSuccess
	if resp.MessageID != consentBatchSuccess {
		status = StatusFail
	}
	return &StoreResult{Status: status, Results: resp.Results}, nil
}

// UserConsentsOptions tunes GetUserConsents.
type UserConsentsOptions struct {
	// FilterByCurrentApplication keeps only consents scoped to the
	// application the access token was issued to.
	FilterByCurrentApplication bool
}

// GetUserConsents lists the subject's stored consent records.
func (p *Privacy) GetUserConsents(ctx context.Context, opts UserConsentsOptions) (*UserConsentsResult, error) {
	query := url.Values{}
	if p.context.SubjectID != "" {
		query.Set("search", fmt.Sprintf("subjectId=%q", p.context.SubjectID))
	}
	if opts.FilterByCurrentApplication {
		query.Set("scope", "app")
	}

	var resp struct {
		Consents []Consent `json:"consents"`
	}
	err := p.client.Get(ctx, p.auth.AccessToken, "/config/v1.0/privacy/consents", query, &resp)
	if err != nil {
		return &UserConsentsResult{Status: StatusError, Error: p.remoteDetail("user consents", err)}, nil
	}

	return &UserConsentsResult{Status: StatusDone, Consents: resp.Consents}, nil
}
