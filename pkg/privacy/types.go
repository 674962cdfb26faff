package privacy

import "encoding/json"

// Status classifies the outcome of a consent operation.
type Status string

const (
	// StatusApproved means every assessed item may be used.
	StatusApproved Status = "approved"

	// StatusDenied means rule decisions reject the assessed items and
	// asking the user for consent would not change that.
	StatusDenied Status = "denied"

	// StatusConsent means at least one item needs the user's consent.
	StatusConsent Status = "consent"

	// StatusMultiStatus means a mix of approved and rejected items with
	// nothing left to consent to.
	StatusMultiStatus Status = "multistatus"

	// StatusDone and StatusSuccess/StatusFail report metadata and
	// consent-storage operations.
	StatusDone    Status = "done"
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"

	// StatusError means the remote call itself failed; the result's
	// Error field carries the remote error body when one was returned.
	StatusError Status = "error"
)

// ConsentDisplayType says how a consent item should be presented.
type ConsentDisplayType int

const (
	DisplayDoNotShow   ConsentDisplayType = 1
	DisplayTransparent ConsentDisplayType = 2
	DisplayOptInOrOut  ConsentDisplayType = 3
	DisplayAllowOrDeny ConsentDisplayType = 4
)

// ConsentType is the decision a stored consent records.
type ConsentType int

const (
	ConsentAllow       ConsentType = 1
	ConsentDeny        ConsentType = 2
	ConsentOptIn       ConsentType = 3
	ConsentOptOut      ConsentType = 4
	ConsentTransparent ConsentType = 5
)

// ConsentStatus is the lifecycle state of a consent attached to a metadata
// record.
type ConsentStatus string

const (
	ConsentStatusNone      ConsentStatus = "NONE"
	ConsentStatusActive    ConsentStatus = "ACTIVE"
	ConsentStatusNotActive ConsentStatus = "NOT_ACTIVE"
	ConsentStatusExpired   ConsentStatus = "EXPIRED"
)

// AssessmentItem is one data item to be approved for use. ProfileID, when
// set, selects a configured privacy profile and the remaining fields are
// ignored by the tenant.
type AssessmentItem struct {
	PurposeID      string `json:"purposeId,omitempty"`
	ProfileID      string `json:"profileId,omitempty"`
	AccessTypeID   string `json:"accessTypeId,omitempty"`
	AttributeID    string `json:"attributeId,omitempty"`
	AttributeValue string `json:"attributeValue,omitempty"`
}

// Message is a coded remote message.
type Message struct {
	MessageID          string `json:"messageId"`
	MessageDescription string `json:"messageDescription,omitempty"`
}

// Decision is the consent system's verdict on one assessed combination.
type Decision struct {
	Approved bool `json:"approved"`

	// RequiresConsent is derived locally: the item was not approved and
	// prompting the user for consent could change that.
	RequiresConsent bool `json:"requiresConsent"`

	AttributeID    string   `json:"attributeId,omitempty"`
	AttributeValue string   `json:"attributeValue,omitempty"`
	AccessTypeID   string   `json:"accessTypeId,omitempty"`
	Reason         *Message `json:"reason,omitempty"`
}

// ItemAssessment groups the decisions for one requested item.
type ItemAssessment struct {
	PurposeID    string     `json:"purposeId,omitempty"`
	ProfileID    string     `json:"profileId,omitempty"`
	AttributeID  string     `json:"attributeId,omitempty"`
	AccessTypeID string     `json:"accessTypeId,omitempty"`
	Result       []Decision `json:"result,omitempty"`
}

// AssessmentResult is Assess's return value.
type AssessmentResult struct {
	Status     Status           `json:"status"`
	Assessment []ItemAssessment `json:"assessment,omitempty"`
	Error      json.RawMessage  `json:"error,omitempty"`
}

// MetadataItem is one data item to present on a consent page. An empty
// AccessTypeID means "default".
type MetadataItem struct {
	PurposeID      string `json:"purposeId"`
	AccessTypeID   string `json:"accessTypeId,omitempty"`
	AttributeID    string `json:"attributeId,omitempty"`
	AttributeValue string `json:"attributeValue,omitempty"`
}

// MetadataRecord is one flattened consent-page entry: a single
// (purpose, attribute, access type, value) combination with its display
// metadata and the current consent state, if any.
type MetadataRecord struct {
	PurposeID      string `json:"purposeId"`
	AttributeID    string `json:"attributeId,omitempty"`
	AccessTypeID   string `json:"accessTypeId"`
	PurposeName    string `json:"purposeName,omitempty"`
	AttributeName  string `json:"attributeName,omitempty"`
	AccessTypeName string `json:"accessType,omitempty"`
	AttributeValue string `json:"attributeValue,omitempty"`

	DefaultConsentDuration int                `json:"defaultConsentDuration,omitempty"`
	AssentUIDefault        bool               `json:"assentUIDefault"`
	ConsentType            ConsentDisplayType `json:"consentType"`
	TermsOfUseRef          string             `json:"termsOfUseRef,omitempty"`

	Status  ConsentStatus `json:"status"`
	Consent *Consent      `json:"consent,omitempty"`
}

// Metadata groups the flattened records by purpose category.
type Metadata struct {
	EULA    []*MetadataRecord `json:"eula"`
	Default []*MetadataRecord `json:"default"`
}

// MetadataResult is GetConsentMetadata's return value.
type MetadataResult struct {
	Status   Status          `json:"status"`
	Metadata *Metadata       `json:"metadata,omitempty"`
	Error    json.RawMessage `json:"error,omitempty"`
}

// Consent is a stored (or to-be-stored) consent record.
type Consent struct {
	PurposeID      string `json:"purposeId"`
	AttributeID    string `json:"attributeId,omitempty"`
	AttributeValue string `json:"attributeValue,omitempty"`
	AccessTypeID   string `json:"accessTypeId,omitempty"`

	SubjectID         string `json:"subjectId,omitempty"`
	IsExternalSubject bool   `json:"isExternalSubject,omitempty"`
	GeoIP             string `json:"geoIP,omitempty"`
	ApplicationID     string `json:"applicationId,omitempty"`

	// StartTime and EndTime are epoch seconds; a zero EndTime means the
	// consent does not expire on its own.
	StartTime int64 `json:"startTime,omitempty"`
	EndTime   int64 `json:"endTime,omitempty"`

	// State is the decision being recorded; Status is the lifecycle
	// state reported back by the tenant (1 active, 3 not active).
	State  ConsentType `json:"state,omitempty"`
	Status int         `json:"status,omitempty"`

	// IsGlobal marks a consent that applies across applications.
	IsGlobal bool `json:"isGlobal,omitempty"`
}

// StoreResult is StoreConsents' return value. Results carries the per-op
// outcomes when the batch partially failed.
type StoreResult struct {
	Status  Status          `json:"status"`
	Results json.RawMessage `json:"results,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// UserConsentsResult is GetUserConsents' return value.
type UserConsentsResult struct {
	Status   Status          `json:"status"`
	Consents []Consent       `json:"consents,omitempty"`
	Error    json.RawMessage `json:"error,omitempty"`
}
