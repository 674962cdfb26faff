package httpd

import (
	"context"
	"net/http"

	"github.com/cumulusid/adaptive/pkg/adaptive"
)

type evaluateRequest struct {
	SessionID     string `json:"sessionId"`
	TransactionID string `json:"transactionId"`

	// Password only.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// OTP and TOTP.
	OTP          string `json:"otp,omitempty"`
	EnrollmentID string `json:"enrollmentId,omitempty"`

	// FIDO only.
	AuthenticatorData string `json:"authenticatorData,omitempty"`
	UserHandle        string `json:"userHandle,omitempty"`
	Signature         string `json:"signature,omitempty"`
	ClientDataJSON    string `json:"clientDataJSON,omitempty"`
	CredentialID      string `json:"credentialId,omitempty"`

	// Knowledge questions only.
	Answers []adaptive.Answer `json:"answers,omitempty"`
}

func (r *Router) handleEvaluatePassword(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeEvaluate(w, req)
	if !ok {
		return
	}

	result, err := r.sdk.EvaluatePassword(req.Context(), clientContext(req, body.SessionID),
		body.TransactionID, r.IdentitySourceID, body.Username, body.Password)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	writeResult(w, result)
}

func (r *Router) handleEvaluateFIDO(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeEvaluate(w, req)
	if !ok {
		return
	}

	result, err := r.sdk.EvaluateFIDO(req.Context(), clientContext(req, body.SessionID),
		body.TransactionID, r.RelyingPartyID, body.AuthenticatorData,
		body.UserHandle, body.Signature, body.ClientDataJSON, body.CredentialID)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	writeResult(w, result)
}

func (r *Router) handleEvaluateQR(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeEvaluate(w, req)
	if !ok {
		return
	}

	result, err := r.sdk.EvaluateQR(req.Context(), clientContext(req, body.SessionID), body.TransactionID)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	writeResult(w, result)
}

func (r *Router) handleEvaluatePush(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeEvaluate(w, req)
	if !ok {
		return
	}

	result, err := r.sdk.EvaluatePush(req.Context(), clientContext(req, body.SessionID), body.TransactionID)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	writeResult(w, result)
}

func (r *Router) handleEvaluateTOTP(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeEvaluate(w, req)
	if !ok {
		return
	}

	result, err := r.sdk.EvaluateTOTP(req.Context(), clientContext(req, body.SessionID),
		body.TransactionID, body.EnrollmentID, body.OTP)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	writeResult(w, result)
}

func (r *Router) handleEvaluateEmailOTP(w http.ResponseWriter, req *http.Request) {
	r.evaluateOTP(w, req, r.sdk.EvaluateEmailOTP)
}

func (r *Router) handleEvaluateSMSOTP(w http.ResponseWriter, req *http.Request) {
	r.evaluateOTP(w, req, r.sdk.EvaluateSMSOTP)
}

func (r *Router) handleEvaluateVoiceOTP(w http.ResponseWriter, req *http.Request) {
	r.evaluateOTP(w, req, r.sdk.EvaluateVoiceOTP)
}

func (r *Router) handleEvaluateQuestions(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeEvaluate(w, req)
	if !ok {
		return
	}

	result, err := r.sdk.EvaluateQuestions(req.Context(), clientContext(req, body.SessionID),
		body.TransactionID, body.Answers)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	writeResult(w, result)
}

type otpEvaluator func(ctx context.Context, sc adaptive.Context, transactionID, otp string) (*adaptive.Result, error)

func (r *Router) evaluateOTP(w http.ResponseWriter, req *http.Request, evaluate otpEvaluator) {
	body, ok := decodeEvaluate(w, req)
	if !ok {
		return
	}

	result, err := evaluate(req.Context(), clientContext(req, body.SessionID),
		body.TransactionID, body.OTP)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	writeResult(w, result)
}

func decodeEvaluate(w http.ResponseWriter, req *http.Request) (evaluateRequest, bool) {
	var body evaluateRequest
	if err := decodeBody(req, &body); err != nil {
		writeInvalidBody(w)
		return evaluateRequest{}, false
	}
	return body, true
}
