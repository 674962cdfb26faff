// Package privacy is a server-side SDK for consent management against a
// remote identity tenant: assessing whether requested data items are
// approved for use, fetching the metadata needed to build a consent page,
// and recording the user's consent decisions.
package privacy

import (
	"log/slog"
	"net/http"

	"github.com/cumulusid/adaptive/internal/tenant"
)

// Config is the construction-time configuration for the Privacy SDK.
type Config struct {
	// TenantURL is the identity tenant's base URL, including scheme.
	TenantURL string

	// HTTPClient overrides the transport used for tenant requests.
	// Nil selects a default client with a 30 second timeout.
	HTTPClient *http.Client

	// Logger receives debug/warn logging. Nil means slog.Default().
	Logger *slog.Logger
}

// Auth authorizes requests to the consent endpoints. The token may be a
// user token from a completed authentication flow or a privileged client
// token; with the latter, Context.SubjectID is required.
type Auth struct {
	AccessToken string
}

// Context identifies the data subject the consent operations act for.
type Context struct {
	// SubjectID is the user/subject identifier on the tenant. May be
	// empty when the access token itself identifies the subject.
	SubjectID string

	// IsExternalSubject marks subjects not known to the tenant.
	IsExternalSubject bool

	// IPAddress is the address of the user agent, used for geo-aware
	// consent rules.
	IPAddress string
}

// Privacy performs consent operations for one subject. Construct it with
// New; the zero value is not usable.
type Privacy struct {
	auth    Auth
	context Context
	client  *tenant.Client
	logger  *slog.Logger
}

// New creates a Privacy SDK instance.
func New(cfg Config, auth Auth, sc Context) (*Privacy, error) {
	if cfg.TenantURL == "" {
		return nil, &ConfigurationError{Field: "TenantURL"}
	}
	if auth.AccessToken == "" {
		return nil, &ConfigurationError{Field: "AccessToken"}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Privacy{
		auth:    auth,
		context: sc,
		client:  tenant.New(cfg.TenantURL, cfg.HTTPClient, logger),
		logger:  logger,
	}, nil
}

// contextFields merges the subject context into an outgoing request map.
func (p *Privacy) contextFields(req map[string]any) map[string]any {
	if p.context.SubjectID != "" {
		req["subjectId"] = p.context.SubjectID
	}
	if p.context.IsExternalSubject {
		req["isExternalSubject"] = true
	}
	if p.context.IPAddress != "" {
		req["geoIP"] = p.context.IPAddress
	}
	return req
}
