package adaptive

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cumulusid/adaptive/pkg/transaction"
)

// otpPending is the transaction state behind an email/SMS/voice OTP
// verification.
type otpPending struct {
	EnrollmentID   string `json:"enrollmentId"`
	VerificationID string `json:"verificationId"`
}

// GenerateEmailOTP sends a one-time password to the enrollment's email
// address. Only the correlation shown alongside the OTP is returned.
func (a *Adaptive) GenerateEmailOTP(ctx context.Context, sc Context, transactionID, enrollmentID string) (*OTPResult, error) {
	return a.generateOTP(ctx, transactionID, factorEmailOTP, enrollmentID)
}

// GenerateSMSOTP sends a one-time password to the enrollment's phone
// number. Only the correlation shown alongside the OTP is returned.
func (a *Adaptive) GenerateSMSOTP(ctx context.Context, sc Context, transactionID, enrollmentID string) (*OTPResult, error) {
	return a.generateOTP(ctx, transactionID, factorSMSOTP, enrollmentID)
}

// GenerateVoiceOTP delivers a one-time password by voice call. Only the
// correlation is returned.
func (a *Adaptive) GenerateVoiceOTP(ctx context.Context, sc Context, transactionID, enrollmentID string) (*OTPResult, error) {
	return a.generateOTP(ctx, transactionID, factorVoiceOTP, enrollmentID)
}

func (a *Adaptive) generateOTP(ctx context.Context, transactionID string, kind factorKind, enrollmentID string) (*OTPResult, error) {
	_, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var verification struct {
		ID          string `json:"id"`
		Correlation string `json:"correlation"`
	}
	err = a.client.Post(ctx, assessment.AccessToken,
		fmt.Sprintf("/v2.0/factors/%s/%s/verifications", kind, enrollmentID),
		nil, nil, &verification)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s verification: %w", kind, err)
	}

	patch := transaction.Record{string(kind): &otpPending{
		EnrollmentID:   enrollmentID,
		VerificationID: verification.ID,
	}}
	if err := a.store.Update(ctx, transactionID, patch); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return &OTPResult{Correlation: verification.Correlation}, nil
}

// EvaluateEmailOTP verifies the one-time password the user received by
// email. Requires a pending GenerateEmailOTP on the transaction.
func (a *Adaptive) EvaluateEmailOTP(ctx context.Context, sc Context, transactionID, otp string) (*Result, error) {
	return a.evaluateOTP(ctx, sc, transactionID, factorEmailOTP, otp)
}

// EvaluateSMSOTP verifies the one-time password the user received by SMS.
// Requires a pending GenerateSMSOTP on the transaction.
func (a *Adaptive) EvaluateSMSOTP(ctx context.Context, sc Context, transactionID, otp string) (*Result, error) {
	return a.evaluateOTP(ctx, sc, transactionID, factorSMSOTP, otp)
}

// EvaluateVoiceOTP verifies the one-time password the user received by
// voice call. Requires a pending GenerateVoiceOTP on the transaction.
func (a *Adaptive) EvaluateVoiceOTP(ctx context.Context, sc Context, transactionID, otp string) (*Result, error) {
	return a.evaluateOTP(ctx, sc, transactionID, factorVoiceOTP, otp)
}

func (a *Adaptive) evaluateOTP(ctx context.Context, sc Context, transactionID string, kind factorKind, otp string) (*Result, error) {
	rec, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	pending, err := pendingFactor[otpPending](rec, kind)
	if err != nil {
		return nil, err
	}

	var verification struct {
		Assertion string `json:"assertion"`
	}
	err = a.client.Post(ctx, assessment.AccessToken,
		fmt.Sprintf("/v2.0/factors/%s/%s/verifications/%s",
			kind, pending.EnrollmentID, pending.VerificationID),
		url.Values{"returnJwt": []string{"true"}},
		map[string]string{"otp": otp}, &verification)
	if err != nil {
		return a.denyResult(string(kind), err), nil
	}

	userID, _ := rec[keyUserID].(string)
	return a.validateAssertion(ctx, sc, transactionID, verification.Assertion, userID)
}

// EvaluateTOTP verifies a time-based one-time password against the given
// enrollment. TOTP codes come from the user's authenticator app, so there
// is no generate step and no pending transaction state.
func (a *Adaptive) EvaluateTOTP(ctx context.Context, sc Context, transactionID, enrollmentID, otp string) (*Result, error) {
	rec, assessment, err := a.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var verification struct {
		Assertion string `json:"assertion"`
	}
	err = a.client.Post(ctx, assessment.AccessToken,
		fmt.Sprintf("/v2.0/factors/totp/%s", enrollmentID),
		url.Values{"returnJwt": []string{"true"}},
		map[string]string{"otp": otp}, &verification)
	if err != nil {
		return a.denyResult("totp", err), nil
	}

	userID, _ := rec[keyUserID].(string)
	return a.validateAssertion(ctx, sc, transactionID, verification.Assertion, userID)
}
