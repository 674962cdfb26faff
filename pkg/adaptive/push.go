package adaptive

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cumulusid/adaptive/pkg/transaction"
)

// pushPending is the transaction state behind an in-app push verification.
type pushPending struct {
	AuthenticatorID string `json:"authenticatorId"`
	VerificationID  string `json:"verificationId"`
}

// correlationLength is how much of the verification id is shown to the
// user so they can match the prompt on their device to this login.
const correlationLength = 8

// GeneratePush sends a push verification to the user's registered
// authenticator app. Only a short correlation prefix of the verification
// id is returned; the full handle stays on the transaction for the polling
// EvaluatePush calls.
func (a *Adaptive) GeneratePush(ctx context.Context, sc Context, transactionID, enrollmentID, authenticatorID, message, title, pushMessage string, additionalData []PushAttribute) (*OTPResult, error) {
	_, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	sc = sc.withDefaults()
	body := map[string]any{
		"transactionData": map[string]any{
			"message":         message,
			"originIpAddress": sc.IPAddress,
			"originUserAgent": sc.UserAgent,
			"additionalData":  additionalData,
		},
		"pushNotification": map[string]any{
			"send":    true,
			"title":   title,
			"message": pushMessage,
		},
		"authenticationMethods": []map[string]string{
			{"id": enrollmentID, "methodType": "signature"},
		},
		"logic":     "OR",
		"expiresIn": 120,
	}

	var verification struct {
		ID string `json:"id"`
	}
	err = a.client.Post(ctx, assessment.AccessToken,
		fmt.Sprintf("/v1.0/authenticators/%s/verifications", authenticatorID),
		nil, body, &verification)
	if err != nil {
		return nil, fmt.Errorf("failed to send push verification: %w", err)
	}

	patch := transaction.Record{string(factorPush): &pushPending{
		AuthenticatorID: authenticatorID,
		VerificationID:  verification.ID,
	}}
	if err := a.store.Update(ctx, transactionID, patch); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	correlation := verification.ID
	if len(correlation) > correlationLength {
		correlation = correlation[:correlationLength]
	}
	return &OTPResult{Correlation: correlation}, nil
}

// EvaluatePush polls the pending push verification once. VERIFY_SUCCESS
// proceeds to assertion validation; any other named state surfaces
// lowercased together with the notification's delivery state and the
// attempt's expiry, leaving the transaction untouched. A response without
// a state collapses to an error status.
func (a *Adaptive) EvaluatePush(ctx context.Context, sc Context, transactionID string) (*Result, error) {
	rec, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	pending, err := pendingFactor[pushPending](rec, factorPush)
	if err != nil {
		return nil, err
	}

	var status struct {
		State            string `json:"state"`
		ExpiryTime       string `json:"expiryTime"`
		Assertion        string `json:"assertion"`
		UserID           string `json:"userId"`
		PushNotification struct {
			SendState string `json:"sendState"`
		} `json:"pushNotification"`
	}
	err = a.client.Get(ctx, assessment.AccessToken,
		fmt.Sprintf("/v1.0/authenticators/%s/verifications/%s",
			pending.AuthenticatorID, pending.VerificationID),
		url.Values{"returnJwt": []string{"true"}}, &status)
	if err != nil {
		return a.denyResult("push", err), nil
	}

	switch status.State {
	case "VERIFY_SUCCESS":
		// The verification resolves the signing user; carry that
		// identity into validation so the transaction records it.
		return a.validateAssertion(ctx, sc, transactionID, status.Assertion, status.UserID)
	case "":
		return &Result{Status: StatusError}, nil
	default:
		return &Result{
			Status:    Status(strings.ToLower(status.State)),
			Expiry:    status.ExpiryTime,
			PushState: status.PushNotification.SendState,
		}, nil
	}
}
