package adaptive

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cumulusid/adaptive/pkg/transaction"
)

// questionsPending is the transaction state behind a knowledge questions
// verification.
type questionsPending struct {
	EnrollmentID   string `json:"enrollmentId"`
	VerificationID string `json:"verificationId"`
}

// GenerateQuestions starts a knowledge questions verification and returns
// the questions the user must answer. The verification handle stays on the
// transaction for the matching EvaluateQuestions call.
func (a *Adaptive) GenerateQuestions(ctx context.Context, sc Context, transactionID, enrollmentID string) (*QuestionsResult, error) {
	_, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var verification struct {
		ID        string     `json:"id"`
		Questions []Question `json:"questions"`
	}
	err = a.client.Post(ctx, assessment.AccessToken,
		fmt.Sprintf("/v2.0/factors/questions/%s/verifications", enrollmentID),
		nil, nil, &verification)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions verification: %w", err)
	}

	patch := transaction.Record{string(factorQuestions): &questionsPending{
		EnrollmentID:   enrollmentID,
		VerificationID: verification.ID,
	}}
	if err := a.store.Update(ctx, transactionID, patch); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return &QuestionsResult{TransactionID: transactionID, Questions: verification.Questions}, nil
}

// EvaluateQuestions submits the user's answers to the pending knowledge
// questions verification. Wrong answers fold into a deny result.
func (a *Adaptive) EvaluateQuestions(ctx context.Context, sc Context, transactionID string, answers []Answer) (*Result, error) {
	rec, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	pending, err := pendingFactor[questionsPending](rec, factorQuestions)
	if err != nil {
		return nil, err
	}

	var verification struct {
		Assertion string `json:"assertion"`
	}
	err = a.client.Post(ctx, assessment.AccessToken,
		fmt.Sprintf("/v2.0/factors/questions/%s/verifications/%s",
			pending.EnrollmentID, pending.VerificationID),
		url.Values{"returnJwt": []string{"true"}},
		map[string]any{"questions": answers}, &verification)
	if err != nil {
		return a.denyResult("questions", err), nil
	}

	userID, _ := rec[keyUserID].(string)
	return a.validateAssertion(ctx, sc, transactionID, verification.Assertion, userID)
}
