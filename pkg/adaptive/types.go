package adaptive

import "encoding/json"

// Status classifies the outcome of an assessment, factor evaluation or
// assertion validation.
type Status string

const (
	// StatusAllow means the flow is fully authenticated; the result
	// carries the issued token and the transaction has been deleted.
	StatusAllow Status = "allow"

	// StatusDeny means the policy engine rejected the attempt. The
	// result may carry the remote error body as Detail.
	StatusDeny Status = "deny"

	// StatusRequires means further factor verification is needed; the
	// result carries the transaction id and the factors the caller may
	// attempt next.
	StatusRequires Status = "requires"

	// StatusPending and StatusTimeout are non-terminal states of
	// poll-based factors (QR login, push). Other remote states surface
	// lowercased as-is.
	StatusPending Status = "pending"
	StatusTimeout Status = "timeout"

	// StatusError means a poll-based evaluation returned no
	// recognizable state.
	StatusError Status = "error"
)

// Context is the session/device context sent with every policy evaluation.
type Context struct {
	// SessionID is generated by the user-agent.
	SessionID string `json:"sessionId"`

	// UserAgent is typically the User-Agent request header.
	UserAgent string `json:"userAgent"`

	// IPAddress is the address of the user-agent, not of this proxy.
	IPAddress string `json:"ipAddress"`

	// EvaluationContext is the stage being evaluated ("login",
	// "landing", "profile", "resume", "highassurance", "other").
	// Empty means "login".
	EvaluationContext string `json:"evaluationContext,omitempty"`
}

func (c Context) withDefaults() Context {
	if c.EvaluationContext == "" {
		c.EvaluationContext = "login"
	}
	return c
}

// Assessment is the policy engine's evaluation result. With scope "openid"
// it is a full token grant; otherwise it is an intermediate mfa-challenge
// token restricted to the listed factors.
type Assessment struct {
	AccessToken    string   `json:"access_token"`
	RefreshToken   string   `json:"refresh_token,omitempty"`
	TokenType      string   `json:"token_type,omitempty"`
	ExpiresIn      int      `json:"expires_in,omitempty"`
	Scope          string   `json:"scope,omitempty"`
	GrantID        string   `json:"grant_id,omitempty"`
	IDToken        string   `json:"id_token,omitempty"`
	AllowedFactors []string `json:"allowedFactors,omitempty"`
}

// Factor names an authentication method the caller may attempt.
type Factor struct {
	Type string `json:"type"`
}

// Enrollment is a user's registered instance of a factor.
type Enrollment struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	Type       string         `json:"type"`
	SubType    string         `json:"subType,omitempty"`
	Created    string         `json:"created,omitempty"`
	Updated    string         `json:"updated,omitempty"`
	Attempted  string         `json:"attempted,omitempty"`
	Enabled    bool           `json:"enabled"`
	Validated  bool           `json:"validated"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Result is the outcome of an operation in the authentication flow. Which
// fields are set depends on Status: allow carries Token; requires carries
// TransactionID plus AllowedFactors (initial assessment) or EnrolledFactors
// (after a factor verification); deny may carry Detail; pending/timeout
// carry Expiry and, for push, PushState.
type Result struct {
	Status          Status          `json:"status"`
	Token           *Assessment     `json:"token,omitempty"`
	TransactionID   string          `json:"transactionId,omitempty"`
	AllowedFactors  []Factor        `json:"allowedFactors,omitempty"`
	EnrolledFactors []Enrollment    `json:"enrolledFactors,omitempty"`
	Detail          json.RawMessage `json:"detail,omitempty"`
	Expiry          string          `json:"expiry,omitempty"`
	PushState       string          `json:"pushState,omitempty"`
}

// IdentitySource is a password-capable identity source on the tenant.
type IdentitySource struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Type     string `json:"type,omitempty"`
}

// FIDOCredential identifies a credential usable for a FIDO assertion.
type FIDOCredential struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// FIDOChallenge is the assertion options to be completed by the
// user-agent's authenticator.
type FIDOChallenge struct {
	RPID             string           `json:"rpId,omitempty"`
	Challenge        string           `json:"challenge"`
	UserVerification string           `json:"userVerification,omitempty"`
	Timeout          int              `json:"timeout,omitempty"`
	AllowCredentials []FIDOCredential `json:"allowCredentials,omitempty"`
}

// FIDOResult is GenerateFIDO's return value.
type FIDOResult struct {
	TransactionID string         `json:"transactionId"`
	FIDO          *FIDOChallenge `json:"fido"`
}

// QRResult is GenerateQR's return value. Code is the QR image payload to
// render; the verification handle backing it stays in the transaction.
type QRResult struct {
	TransactionID string `json:"transactionId"`
	QR            QRCode `json:"qr"`
}

// QRCode wraps the renderable QR image payload.
type QRCode struct {
	Code string `json:"code"`
}

// OTPResult is the return value of the email/SMS/voice OTP and push
// generate calls. Only the correlation is exposed; the one-time password
// itself never leaves the tenant.
type OTPResult struct {
	Correlation string `json:"correlation"`
}

// Question is one knowledge question to be answered by the user.
type Question struct {
	QuestionKey string `json:"questionKey"`
	Question    string `json:"question"`
}

// QuestionsResult is GenerateQuestions' return value.
type QuestionsResult struct {
	TransactionID string     `json:"transactionId"`
	Questions     []Question `json:"questions"`
}

// Answer is a caller's response to one knowledge question.
type Answer struct {
	QuestionKey string `json:"questionKey"`
	Answer      string `json:"answer"`
}

// PushAttribute is a name/value pair displayed in-app alongside a push
// verification.
type PushAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Introspection is the token introspection response. Active reports
// whether the token is valid; the remaining fields are only populated for
// active tokens.
type Introspection struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Sub       string `json:"sub,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
}
