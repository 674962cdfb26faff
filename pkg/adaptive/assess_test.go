package adaptive_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cumulusid/adaptive/pkg/adaptive"
)

func TestAssessPolicy(t *testing.T) {
	t.Parallel()

	t.Run("openid grant allows without a transaction", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1.0/endpoint/default/token", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			require.Equal(t, "policyauth", r.PostFormValue("grant_type"))
			require.Equal(t, "test-client", r.PostFormValue("client_id"))
			require.Equal(t, "test-secret", r.PostFormValue("client_secret"))
			require.Equal(t, "session-1", r.PostFormValue("sessionId"))
			require.Equal(t, "203.0.113.7", r.PostFormValue("ipAddress"))
			require.Equal(t, "login", r.PostFormValue("evaluationContext"))

			writeJSON(t, w, http.StatusOK, map[string]any{
				"access_token": "full-token",
				"token_type":   "Bearer",
				"scope":        "openid profile",
			})
		})

		a, _ := newTestAdaptive(t, mux)

		res, err := a.AssessPolicy(context.Background(), testContext())
		require.NoError(t, err)
		require.Equal(t, adaptive.StatusAllow, res.Status)
		require.NotNil(t, res.Token)
		require.Equal(t, "full-token", res.Token.AccessToken)
		require.Empty(t, res.TransactionID)
	})

	t.Run("restricted grant opens a transaction", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1.0/endpoint/default/token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"access_token":   "mfa-token",
				"scope":          "mfa_challenge",
				"allowedFactors": []string{"password", "totp_app"},
			})
		})

		a, store := newTestAdaptive(t, mux)

		res, err := a.AssessPolicy(context.Background(), testContext())
		require.NoError(t, err)
		require.Equal(t, adaptive.StatusRequires, res.Status)
		require.NotEmpty(t, res.TransactionID)
		require.Equal(t, []adaptive.Factor{{Type: "password"}, {Type: "totp_app"}}, res.AllowedFactors)
		require.Nil(t, res.Token)

		rec, err := store.Get(context.Background(), res.TransactionID)
		require.NoError(t, err)
		require.Contains(t, rec, "assessment")
	})

	t.Run("policy denial folds to deny with detail", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1.0/endpoint/default/token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusForbidden, map[string]string{
				"error":             "access_denied",
				"error_description": "policy rejected the attempt",
			})
		})

		a, _ := newTestAdaptive(t, mux)

		res, err := a.AssessPolicy(context.Background(), testContext())
		require.NoError(t, err)
		require.Equal(t, adaptive.StatusDeny, res.Status)
		require.Contains(t, string(res.Detail), "access_denied")
	})

	t.Run("non-JSON error body folds to deny without detail", func(t *testing.T) {
		t.Parallel()

		a, _ := newTestAdaptive(t, http.NewServeMux())

		res, err := a.AssessPolicy(context.Background(), testContext())
		require.NoError(t, err)
		require.Equal(t, adaptive.StatusDeny, res.Status)
		require.Empty(t, res.Detail)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("unrestricted grant allows", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1.0/endpoint/default/token", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			require.Equal(t, "refresh_token", r.PostFormValue("grant_type"))
			require.Equal(t, "refresh-1", r.PostFormValue("refresh_token"))

			writeJSON(t, w, http.StatusOK, map[string]any{
				"access_token":  "new-token",
				"refresh_token": "refresh-2",
				"scope":         "openid",
			})
		})

		a, _ := newTestAdaptive(t, mux)

		res, err := a.Refresh(context.Background(), testContext(), "refresh-1")
		require.NoError(t, err)
		require.Equal(t, adaptive.StatusAllow, res.Status)
		require.Equal(t, "refresh-2", res.Token.RefreshToken)
	})

	t.Run("restricted grant requires enrolled factors", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1.0/endpoint/default/token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"access_token":   "mfa-token",
				"scope":          "mfa_challenge",
				"allowedFactors": []string{"emailotp"},
			})
		})
		mux.HandleFunc("GET /v2.0/factors", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer mfa-token", r.Header.Get("Authorization"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"factors": []map[string]any{
					{"id": "enr-1", "type": "emailotp", "enabled": true},
					{"id": "enr-2", "type": "smsotp", "enabled": true},
				},
			})
		})

		a, _ := newTestAdaptive(t, mux)

		res, err := a.Refresh(context.Background(), testContext(), "refresh-1")
		require.NoError(t, err)
		require.Equal(t, adaptive.StatusRequires, res.Status)
		require.NotEmpty(t, res.TransactionID)
		require.Len(t, res.EnrolledFactors, 1)
		require.Equal(t, "enr-1", res.EnrolledFactors[0].ID)
	})

	t.Run("revoked refresh token folds to deny", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("POST /v1.0/endpoint/default/token", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		})

		a, _ := newTestAdaptive(t, mux)

		res, err := a.Refresh(context.Background(), testContext(), "revoked")
		require.NoError(t, err)
		require.Equal(t, adaptive.StatusDeny, res.Status)
		require.Contains(t, string(res.Detail), "invalid_grant")
	})
}
