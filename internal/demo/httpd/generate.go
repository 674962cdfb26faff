package httpd

import (
	"context"
	"net/http"

	"github.com/cumulusid/adaptive/pkg/adaptive"
	"github.com/cumulusid/adaptive/pkg/httpx"
)

type generateRequest struct {
	SessionID     string `json:"sessionId"`
	TransactionID string `json:"transactionId"`
	EnrollmentID  string `json:"enrollmentId,omitempty"`

	// Push only.
	AuthenticatorID string                   `json:"authenticatorId,omitempty"`
	Message         string                   `json:"message,omitempty"`
	Title           string                   `json:"title,omitempty"`
	PushMessage     string                   `json:"pushMessage,omitempty"`
	AdditionalData  []adaptive.PushAttribute `json:"additionalData,omitempty"`

	// FIDO only.
	UserID string `json:"userId,omitempty"`
}

func (r *Router) handleGenerateFIDO(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeGenerate(w, req)
	if !ok {
		return
	}

	result, err := r.sdk.GenerateFIDO(req.Context(), clientContext(req, body.SessionID),
		body.TransactionID, r.RelyingPartyID, body.UserID)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (r *Router) handleGenerateQR(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeGenerate(w, req)
	if !ok {
		return
	}

	result, err := r.sdk.GenerateQR(req.Context(), clientContext(req, body.SessionID),
		body.TransactionID, r.QRProfileID)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (r *Router) handleGeneratePush(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeGenerate(w, req)
	if !ok {
		return
	}

	result, err := r.sdk.GeneratePush(req.Context(), clientContext(req, body.SessionID),
		body.TransactionID, body.EnrollmentID, body.AuthenticatorID,
		body.Message, body.Title, body.PushMessage, body.AdditionalData)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func (r *Router) handleGenerateEmailOTP(w http.ResponseWriter, req *http.Request) {
	r.generateOTP(w, req, r.sdk.GenerateEmailOTP)
}

func (r *Router) handleGenerateSMSOTP(w http.ResponseWriter, req *http.Request) {
	r.generateOTP(w, req, r.sdk.GenerateSMSOTP)
}

func (r *Router) handleGenerateVoiceOTP(w http.ResponseWriter, req *http.Request) {
	r.generateOTP(w, req, r.sdk.GenerateVoiceOTP)
}

func (r *Router) handleGenerateQuestions(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeGenerate(w, req)
	if !ok {
		return
	}

	result, err := r.sdk.GenerateQuestions(req.Context(), clientContext(req, body.SessionID),
		body.TransactionID, body.EnrollmentID)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

type otpGenerator func(ctx context.Context, sc adaptive.Context, transactionID, enrollmentID string) (*adaptive.OTPResult, error)

func (r *Router) generateOTP(w http.ResponseWriter, req *http.Request, generate otpGenerator) {
	body, ok := decodeGenerate(w, req)
	if !ok {
		return
	}

	result, err := generate(req.Context(), clientContext(req, body.SessionID),
		body.TransactionID, body.EnrollmentID)
	if err != nil {
		writeFlowError(w, req, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

func decodeGenerate(w http.ResponseWriter, req *http.Request) (generateRequest, bool) {
	var body generateRequest
	if err := decodeBody(req, &body); err != nil {
		writeInvalidBody(w)
		return generateRequest{}, false
	}
	return body, true
}
