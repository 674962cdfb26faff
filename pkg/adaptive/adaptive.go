package adaptive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cumulusid/adaptive/internal/tenant"
	"github.com/cumulusid/adaptive/pkg/transaction"
)

// Config is the construction-time configuration for the Adaptive SDK.
type Config struct {
	// TenantURL is the identity tenant's base URL, including scheme.
	TenantURL string

	// ClientID and ClientSecret identify the client application on the
	// tenant's OAuth endpoints.
	ClientID     string
	ClientSecret string

	// HTTPClient overrides the transport used for tenant requests.
	// Nil selects a default client with a 30 second timeout.
	HTTPClient *http.Client

	// Logger receives debug/warn logging. Nil means slog.Default().
	Logger *slog.Logger
}

// Adaptive orchestrates policy-driven authentication flows against one
// tenant. Construct it with New; the zero value is not usable.
type Adaptive struct {
	cfg    Config
	client *tenant.Client
	store  transaction.Store
	logger *slog.Logger
}

// New creates an Adaptive SDK instance. A nil store selects an in-memory
// transaction store with the default TTL; pass a custom implementation to
// share transaction state across proxy instances.
func New(cfg Config, store transaction.Store) (*Adaptive, error) {
	switch {
	case cfg.TenantURL == "":
		return nil, &ConfigurationError{Field: "TenantURL"}
	case cfg.ClientID == "":
		return nil, &ConfigurationError{Field: "ClientID"}
	case cfg.ClientSecret == "":
		return nil, &ConfigurationError{Field: "ClientSecret"}
	}

	if store == nil {
		store = transaction.NewMemoryStore(transaction.Config{})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Adaptive{
		cfg:    cfg,
		client: tenant.New(cfg.TenantURL, cfg.HTTPClient, logger),
		store:  store,
		logger: logger,
	}, nil
}

// Transaction record keys. Each factor kind owns at most one pending
// sub-record per transaction; a repeated generate overwrites it.
const (
	keyAssessment = "assessment"
	keyUserID     = "userId"
)

// factorKind is the closed set of factor types that keep pending state in
// the transaction. The constant value doubles as the record key.
type factorKind string

const (
	factorFIDO      factorKind = "fido"
	factorQR        factorKind = "qr"
	factorPush      factorKind = "push"
	factorEmailOTP  factorKind = "emailotp"
	factorSMSOTP    factorKind = "smsotp"
	factorVoiceOTP  factorKind = "voiceotp"
	factorQuestions factorKind = "questions"
)

// article returns the factor's display name with its indefinite article,
// for TransactionError messages.
func (k factorKind) article() string {
	switch k {
	case factorFIDO:
		return "a FIDO"
	case factorQR:
		return "a QR login"
	case factorPush:
		return "a push"
	case factorEmailOTP:
		return "an email OTP"
	case factorSMSOTP:
		return "an SMS OTP"
	case factorVoiceOTP:
		return "a voice OTP"
	case factorQuestions:
		return "a knowledge questions"
	}
	return string("a " + k)
}

// loadTransaction fetches the transaction and its assessment. Absent or
// expired transactions, and transactions that never completed an initial
// assessment, surface as *TransactionError.
func (a *Adaptive) loadTransaction(ctx context.Context, transactionID string) (transaction.Record, *Assessment, error) {
	rec, err := a.store.Get(ctx, transactionID)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			return nil, nil, &TransactionError{Message: "invalid transaction ID provided"}
		}
		return nil, nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	assessment, ok := recordValue[Assessment](rec, keyAssessment)
	if !ok || assessment.AccessToken == "" {
		return nil, nil, &TransactionError{Message: "this transaction has no usable assessment"}
	}

	return rec, assessment, nil
}

// pendingFactor returns the pending sub-record for the given factor kind,
// or a *TransactionError naming the factor when the prerequisite generate
// step never ran on this transaction.
func pendingFactor[T any](rec transaction.Record, kind factorKind) (*T, error) {
	v, ok := recordValue[T](rec, string(kind))
	if !ok {
		return nil, &TransactionError{Message: fmt.Sprintf(
			"this transaction has not initiated %s verification", kind.article())}
	}
	return v, nil
}

// recordValue extracts a typed value from a transaction record. Values
// written by this process are typed pointers; values read back from an
// external serializing store arrive as decoded JSON maps, so fall back to
// a JSON round-trip.
func recordValue[T any](rec transaction.Record, key string) (*T, bool) {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return nil, false
	}

	if v, ok := raw.(*T); ok {
		return v, true
	}
	if v, ok := raw.(T); ok {
		return &v, true
	}

	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}
	v := new(T)
	if err := json.Unmarshal(buf, v); err != nil {
		return nil, false
	}
	return v, true
}

// denyResult folds a remote-call failure into a deny outcome, carrying the
// remote error body when one was returned. Callers never see raw transport
// errors across the public boundary.
func (a *Adaptive) denyResult(op string, err error) *Result {
	a.logger.Warn("remote call denied", "op", op, "err", err)

	res := &Result{Status: StatusDeny}
	var remoteErr *tenant.RemoteError
	if errors.As(err, &remoteErr) && len(remoteErr.Detail) > 0 {
		res.Detail = remoteErr.Detail
	}
	return res
}
