package adaptive

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cumulusid/adaptive/pkg/transaction"
)

// GenerateFIDO requests assertion options from the relying party for the
// user's registered authenticators. The challenge and the user id are
// recorded on the transaction for the matching EvaluateFIDO call; a repeat
// call replaces any earlier challenge.
func (a *Adaptive) GenerateFIDO(ctx context.Context, sc Context, transactionID, relyingPartyID, userID string) (*FIDOResult, error) {
	_, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var challenge FIDOChallenge
	err = a.client.Post(ctx, assessment.AccessToken,
		fmt.Sprintf("/v2.0/factors/fido2/relyingparties/%s/assertion/options", relyingPartyID),
		nil,
		map[string]string{"userId": userID, "userVerification": "preferred"},
		&challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to generate FIDO challenge: %w", err)
	}

	patch := transaction.Record{string(factorFIDO): &challenge, keyUserID: userID}
	if err := a.store.Update(ctx, transactionID, patch); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return &FIDOResult{TransactionID: transactionID, FIDO: &challenge}, nil
}

// EvaluateFIDO submits the authenticator's signed assertion to the relying
// party. An empty credentialID selects the first allowed credential from
// the pending challenge. All signature verification happens on the tenant.
func (a *Adaptive) EvaluateFIDO(ctx context.Context, sc Context, transactionID, relyingPartyID, authenticatorData, userHandle, signature, clientDataJSON, credentialID string) (*Result, error) {
	rec, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	challenge, err := pendingFactor[FIDOChallenge](rec, factorFIDO)
	if err != nil {
		return nil, err
	}

	if credentialID == "" {
		if len(challenge.AllowCredentials) == 0 {
			return nil, &TransactionError{Message: "the pending FIDO challenge has no allowed credentials"}
		}
		credentialID = challenge.AllowCredentials[0].ID
	}

	body := map[string]any{
		"type":  "public-key",
		"id":    credentialID,
		"rawId": credentialID,
		"response": map[string]string{
			"authenticatorData": authenticatorData,
			"userHandle":        userHandle,
			"signature":         signature,
			"clientDataJSON":    clientDataJSON,
		},
	}

	var verification struct {
		Assertion string `json:"assertion"`
	}
	err = a.client.Post(ctx, assessment.AccessToken,
		fmt.Sprintf("/v2.0/factors/fido2/relyingparties/%s/assertion/result", relyingPartyID),
		url.Values{"returnJwt": []string{"true"}},
		body, &verification)
	if err != nil {
		return a.denyResult("fido", err), nil
	}

	userID, _ := rec[keyUserID].(string)
	return a.validateAssertion(ctx, sc, transactionID, verification.Assertion, userID)
}
