package privacy

import (
	"context"
	"maps"
	"slices"
)

// dspResponse is the data-subject-presentation payload: purposes nest
// attributes which nest access types, with attribute and access-type
// display names held in side tables, plus the subject's existing consents.
type dspResponse struct {
	Purposes    map[string]dspPurpose `json:"purposes"`
	Attributes  map[string]dspNamed   `json:"attributes"`
	AccessTypes map[string]dspNamed   `json:"accessTypes"`
	Consents    map[string]Consent    `json:"consents"`
}

type dspNamed struct {
	Name string `json:"name"`
}

type dspPurpose struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	Category               string         `json:"category"`
	DefaultConsentDuration int            `json:"defaultConsentDuration"`
	Attributes             []dspAttribute `json:"attributes"`
	AccessTypes            []dspAccess    `json:"accessTypes"`
	TermsOfUse             struct {
		Ref string `json:"ref"`
	} `json:"termsOfUse"`
}

type dspAttribute struct {
	ID          string      `json:"id"`
	AccessTypes []dspAccess `json:"accessTypes"`
}

type dspAccess struct {
	ID              string `json:"id"`
	AssentUIDefault bool   `json:"assentUIDefault"`
	LegalCategory   int    `json:"legalCategory"`
}

// GetConsentMetadata fetches and flattens the metadata needed to build a
// consent page for the given items, including the current consent state of
// each. Remote failures fold into a result with status error.
func (p *Privacy) GetConsentMetadata(ctx context.Context, items []MetadataItem) (*MetadataResult, error) {
	purposes := make([]string, 0, len(items))
	filter := make(map[string][]string, len(items))
	for _, item := range items {
		if !slices.Contains(purposes, item.PurposeID) {
			purposes = append(purposes, item.PurposeID)
		}

		accessType := item.AccessTypeID
		if accessType == "" {
			accessType = "default"
		}
		key := item.PurposeID + "/" + item.AttributeID + "." + accessType
		filter[key] = append(filter[key], item.AttributeValue)
	}

	req := p.contextFields(map[string]any{"purposeId": purposes})

	var resp dspResponse
	err := p.client.Post(ctx, p.auth.AccessToken,
		"/v1.0/privacy/data-subject-presentation", nil, req, &resp)
	if err != nil {
		return &MetadataResult{Status: StatusError, Error: p.remoteDetail("metadata", err)}, nil
	}

	return &MetadataResult{Status: StatusDone, Metadata: flatten(filter, &resp)}, nil
}

// flatten turns the nested purpose tree into the linear record lists a
// consent page renders, keeping only combinations the filter asked for,
// then attaches the subject's existing consents to the matching records.
func flatten(filter map[string][]string, resp *dspResponse) *Metadata {
	metadata := &Metadata{
		EULA:    []*MetadataRecord{},
		Default: []*MetadataRecord{},
	}

	records := map[string]*MetadataRecord{}
	for _, purposeID := range slices.Sorted(maps.Keys(resp.Purposes)) {
		purpose := resp.Purposes[purposeID]

		emit := func(attributeID string, access dspAccess) {
			key := purposeID + "/" + attributeID + "." + access.ID
			values, ok := filter[key]
			if !ok && attributeID != "" {
				// The caller may have filtered by attribute name
				// instead of id.
				alias := purposeID + "/" + resp.Attributes[attributeID].Name + "." + access.ID
				values, ok = filter[alias]
			}
			if !ok {
				return
			}

			for _, value := range values {
				record := buildRecord(resp, purpose, attributeID, access, value)
				if purpose.Category == "eula" {
					metadata.EULA = append(metadata.EULA, record)
				} else {
					metadata.Default = append(metadata.Default, record)
				}
				records[key+"#"+value] = record
			}
		}

		if len(purpose.Attributes) > 0 {
			for _, attribute := range purpose.Attributes {
				for _, access := range attribute.AccessTypes {
					emit(attribute.ID, access)
				}
			}
		} else {
			for _, access := range purpose.AccessTypes {
				emit("", access)
			}
		}
	}

	attachConsents(records, resp.Consents)
	return metadata
}

func buildRecord(resp *dspResponse, purpose dspPurpose, attributeID string, access dspAccess, value string) *MetadataRecord {
	consentType := ConsentDisplayType(access.LegalCategory)
	if access.LegalCategory == 0 {
		consentType = DisplayAllowOrDeny
	}

	record := &MetadataRecord{
		PurposeID:              purpose.ID,
		AttributeID:            attributeID,
		AccessTypeID:           access.ID,
		PurposeName:            purpose.Name,
		AccessTypeName:         resp.AccessTypes[access.ID].Name,
		AttributeValue:         value,
		DefaultConsentDuration: purpose.DefaultConsentDuration,
		AssentUIDefault:        access.AssentUIDefault,
		ConsentType:            consentType,
		TermsOfUseRef:          purpose.TermsOfUse.Ref,
		Status:                 ConsentStatusNone,
	}
	if attributeID != "" {
		record.AttributeName = resp.Attributes[attributeID].Name
	}
	return record
}

// attachConsents runs the second flattening pass: each existing consent is
// matched to its record by purpose/attribute.accessType#value. A global
// consent wins only once set: a later app-specific consent does not
// displace it.
func attachConsents(records map[string]*MetadataRecord, consents map[string]Consent) {
	for _, consentID := range slices.Sorted(maps.Keys(consents)) {
		consent := consents[consentID]

		key := consent.PurposeID + "/" + consent.AttributeID + "." +
			consent.AccessTypeID + "#" + consent.AttributeValue
		record, ok := records[key]
		if !ok {
			continue
		}
		if record.Consent != nil && record.Consent.IsGlobal && !consent.IsGlobal {
			continue
		}

		record.Consent = &consent
		switch consent.Status {
		case 1:
			record.Status = ConsentStatusActive
		case 3:
			record.Status = ConsentStatusNotActive
		default:
			record.Status = ConsentStatusExpired
		}
	}
}
