package httpd

import (
	"net/http"

	"github.com/cumulusid/adaptive/pkg/adaptive"
)

type assessRequest struct {
	SessionID         string `json:"sessionId"`
	EvaluationContext string `json:"evaluationContext,omitempty"`
	RefreshToken      string `json:"refreshToken,omitempty"`
}

// handleAssess runs the initial policy assessment for a session, or a
// refresh-grant re-assessment when a refresh token is supplied.
func (r *Router) handleAssess(w http.ResponseWriter, req *http.Request) {
	var body assessRequest
	if err := decodeBody(req, &body); err != nil {
		writeInvalidBody(w)
		return
	}

	sc := clientContext(req, body.SessionID)
	sc.EvaluationContext = body.EvaluationContext

	var (
		result *adaptive.Result
		err    error
	)
	if body.RefreshToken != "" {
		result, err = r.sdk.Refresh(req.Context(), sc, body.RefreshToken)
	} else {
		result, err = r.sdk.AssessPolicy(req.Context(), sc)
	}
	if err != nil {
		writeFlowError(w, req, err)
		return
	}

	writeResult(w, result)
}
