package adaptive

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cumulusid/adaptive/pkg/transaction"
)

// qrPending is the transaction state behind a QR login attempt. The device
// session index never leaves the server side; only the renderable code is
// exposed to the caller.
type qrPending struct {
	ID  string `json:"id"`
	DSI string `json:"dsi"`
}

// GenerateQR starts a QR login against the given registration profile and
// returns the code to render. The verification handle stays on the
// transaction for the polling EvaluateQR calls.
func (a *Adaptive) GenerateQR(ctx context.Context, sc Context, transactionID, profileID string) (*QRResult, error) {
	_, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var authn struct {
		ID     string `json:"id"`
		DSI    string `json:"dsi"`
		QRCode string `json:"qrCode"`
	}
	err = a.client.Get(ctx, assessment.AccessToken, "/v2.0/factors/qr/authenticate",
		url.Values{"profileId": []string{profileID}}, &authn)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate QR login: %w", err)
	}

	patch := transaction.Record{string(factorQR): &qrPending{ID: authn.ID, DSI: authn.DSI}}
	if err := a.store.Update(ctx, transactionID, patch); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return &QRResult{TransactionID: transactionID, QR: QRCode{Code: authn.QRCode}}, nil
}

// EvaluateQR polls the pending QR login once. A SUCCESS state proceeds to
// assertion validation; any other named state surfaces lowercased with the
// attempt's expiry and leaves the transaction untouched, so the caller
// keeps polling. A response without a state collapses to an error status.
func (a *Adaptive) EvaluateQR(ctx context.Context, sc Context, transactionID string) (*Result, error) {
	rec, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	pending, err := pendingFactor[qrPending](rec, factorQR)
	if err != nil {
		return nil, err
	}

	var status struct {
		State     string `json:"state"`
		Expiry    string `json:"expiry"`
		Assertion string `json:"assertion"`
		UserID    string `json:"userId"`
	}
	err = a.client.Get(ctx, assessment.AccessToken,
		"/v2.0/factors/qr/authenticate/"+pending.ID,
		url.Values{"dsi": []string{pending.DSI}, "returnJwt": []string{"true"}},
		&status)
	if err != nil {
		return a.denyResult("qr", err), nil
	}

	switch status.State {
	case "SUCCESS":
		// The QR device session resolves the user; carry that identity
		// into validation so the transaction records it.
		return a.validateAssertion(ctx, sc, transactionID, status.Assertion, status.UserID)
	case "":
		return &Result{Status: StatusError}, nil
	default:
		return &Result{Status: Status(strings.ToLower(status.State)), Expiry: status.Expiry}, nil
	}
}
