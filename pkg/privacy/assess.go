package privacy

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cumulusid/adaptive/internal/tenant"
)

// Assess asks the consent management system whether the given data items
// are approved for use by this subject. Remote failures fold into a result
// with status error.
func (p *Privacy) Assess(ctx context.Context, items []AssessmentItem) (*AssessmentResult, error) {
	req := p.contextFields(map[string]any{"items": items})

	var assessment []ItemAssessment
	err := p.client.Post(ctx, p.auth.AccessToken,
		"/v1.0/privacy/data-usage-approval", nil, req, &assessment)
	if err != nil {
		return &AssessmentResult{Status: StatusError, Error: p.remoteDetail("assess", err)}, nil
	}

	return &AssessmentResult{
		Status:     deriveAssessmentStatus(assessment),
		Assessment: assessment,
	}, nil
}

// informationalReasons are message ids for which a rejection is final: the
// item is misconfigured or ruled out, so prompting the user for consent
// would not help.
var informationalReasons = map[string]struct{}{
	"CSIBT0040I": {}, // already opted out
	"CSIBT0041I": {}, // consent denied
	"CSIBT0060I": {}, // rule decision is deny
	"CSIBT0016E": {}, // app to purpose mapping invalid
	"CSIBT0022E": {}, // purpose invalid or no active version
	"CSIBT0036E": {}, // attribute not in active purpose
	"CSIBT0037E": {}, // access type not configured for attribute
	"CSIBT0038E": {}, // access type not in active purpose
}

// deriveAssessmentStatus folds the per-item decisions into one overall
// status and marks the decisions the user could still consent to. Consent
// outranks everything: one consentable rejection makes the whole
// assessment a consent prompt.
func deriveAssessmentStatus(assessment []ItemAssessment) Status {
	var status Status
	for i := range assessment {
		for j := range assessment[i].Result {
			decision := &assessment[i].Result[j]
			decision.RequiresConsent = false

			if decision.Approved {
				switch status {
				case "":
					status = StatusApproved
				case StatusDenied:
					status = StatusMultiStatus
				}
				continue
			}

			final := false
			if decision.Reason != nil {
				_, final = informationalReasons[decision.Reason.MessageID]
			}
			switch {
			case !final:
				status = StatusConsent
				decision.RequiresConsent = true
			case status == StatusApproved:
				status = StatusMultiStatus
			case status == "":
				status = StatusDenied
			}
		}
	}

	if status == "" {
		status = StatusDenied
	}
	return status
}

// remoteDetail logs a failed consent call and returns the remote error
// body when one was returned. Callers fold it into an error-status result
// instead of surfacing the raw transport error.
func (p *Privacy) remoteDetail(op string, err error) json.RawMessage {
	p.logger.Warn("consent call failed", "op", op, "err", err)

	var remoteErr *tenant.RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Detail
	}
	return nil
}
