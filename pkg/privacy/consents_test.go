package privacy_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cumulusid/adaptive/pkg/privacy"
)

func TestStoreConsents(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var ops []map[string]any
		mux := http.NewServeMux()
		mux.HandleFunc("PATCH /v1.0/privacy/consents", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&ops))
			writeJSON(t, w, http.StatusOK, map[string]any{"messageId": "CSIBT0070I"})
		})

		p := newTestPrivacy(t, mux)

		res, err := p.StoreConsents(context.Background(), []privacy.Consent{
			{PurposeID: "marketing", AttributeID: "11", State: privacy.ConsentOptIn},
		})
		require.NoError(t, err)
		require.Equal(t, privacy.StatusSuccess, res.Status)

		require.Len(t, ops, 1)
		require.Equal(t, "add", ops[0]["op"])

		// The subject context is merged into each consent value.
		value := ops[0]["value"].(map[string]any)
		require.Equal(t, "marketing", value["purposeId"])
		require.Equal(t, "user-1", value["subjectId"])
		require.Equal(t, "203.0.113.7", value["geoIP"])
		require.EqualValues(t, privacy.ConsentOptIn, value["state"])
	})

	t.Run("partial failure", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("PATCH /v1.0/privacy/consents", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusMultiStatus, map[string]any{
				"messageId": "CSIBT0071E",
				"results": []map[string]any{
					{"messageId": "CSIBT0025E", "messageDescription": "consent exists"},
				},
			})
		})

		p := newTestPrivacy(t, mux)

		res, err := p.StoreConsents(context.Background(), []privacy.Consent{{PurposeID: "marketing"}})
		require.NoError(t, err)
		require.Equal(t, privacy.StatusFail, res.Status)
		require.Contains(t, string(res.Results), "CSIBT0025E")
	})

	t.Run("remote error", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("PATCH /v1.0/privacy/consents", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusBadRequest, map[string]string{"messageId": "CSIBT0001E"})
		})

		p := newTestPrivacy(t, mux)

		res, err := p.StoreConsents(context.Background(), []privacy.Consent{{PurposeID: "marketing"}})
		require.NoError(t, err)
		require.Equal(t, privacy.StatusError, res.Status)
		require.Contains(t, string(res.Error), "CSIBT0001E")
	})
}

func TestGetUserConsents(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /config/v1.0/privacy/consents", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, `subjectId="user-1"`, r.URL.Query().Get("search"))
		require.Equal(t, "app", r.URL.Query().Get("scope"))

		writeJSON(t, w, http.StatusOK, map[string]any{
			"consents": []map[string]any{
				{"purposeId": "marketing", "attributeId": "11", "status": 1},
			},
		})
	})

	p := newTestPrivacy(t, mux)

	res, err := p.GetUserConsents(context.Background(), privacy.UserConsentsOptions{
		FilterByCurrentApplication: true,
	})
	require.NoError(t, err)
	require.Equal(t, privacy.StatusDone, res.Status)
	require.Len(t, res.Consents, 1)
	require.Equal(t, "marketing", res.Consents[0].PurposeID)
}
