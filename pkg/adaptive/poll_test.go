package adaptive_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cumulusid/adaptive/pkg/adaptive"
)

func TestQRFlow(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2.0/factors/qr/authenticate", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "profile-1", r.URL.Query().Get("profileId"))
		writeJSON(t, w, http.StatusOK, map[string]string{
			"id":     "qr-1",
			"dsi":    "dsi-secret",
			"qrCode": "iVBORw0KGgo=",
		})
	})
	mux.HandleFunc("GET /v2.0/factors/qr/authenticate/qr-1", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "dsi-secret", r.URL.Query().Get("dsi"))

		switch polls.Add(1) {
		case 1:
			writeJSON(t, w, http.StatusOK, map[string]string{
				"state":  "PENDING",
				"expiry": "2026-08-29T12:00:00Z",
			})
		case 2:
			writeJSON(t, w, http.StatusOK, map[string]string{})
		default:
			writeJSON(t, w, http.StatusOK, map[string]string{
				"state":     "SUCCESS",
				"assertion": "assertion-jwt",
			})
		}
	})
	mux.HandleFunc("POST /v1.0/endpoint/default/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token": "full-token",
			"scope":        "openid",
		})
	})

	a, store := newTestAdaptive(t, mux)
	ctx := context.Background()
	id := seedTransaction(t, store, "mfa-token", nil)

	gen, err := a.GenerateQR(ctx, testContext(), id, "profile-1")
	require.NoError(t, err)
	require.Equal(t, "iVBORw0KGgo=", gen.QR.Code)

	// The device session index stays server side.
	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Contains(t, rec, "qr")

	res, err := a.EvaluateQR(ctx, testContext(), id)
	require.NoError(t, err)
	require.Equal(t, adaptive.Status("pending"), res.Status)
	require.Equal(t, "2026-08-29T12:00:00Z", res.Expiry)

	// Pending polls leave the transaction untouched, so polling continues.
	res, err = a.EvaluateQR(ctx, testContext(), id)
	require.NoError(t, err)
	require.Equal(t, adaptive.StatusError, res.Status)

	res, err = a.EvaluateQR(ctx, testContext(), id)
	require.NoError(t, err)
	require.Equal(t, adaptive.StatusAllow, res.Status)
	require.Equal(t, "full-token", res.Token.AccessToken)
}

func TestPushFlow(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1.0/authenticators/authn-1/verifications", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TransactionData  map[string]any   `json:"transactionData"`
			PushNotification map[string]any   `json:"pushNotification"`
			Methods          []map[string]any `json:"authenticationMethods"`
		}
		require.NoError(t, decodeBody(r, &body))
		require.Equal(t, "Confirm your sign-in", body.TransactionData["message"])
		require.Equal(t, "203.0.113.7", body.TransactionData["originIpAddress"])
		require.Equal(t, true, body.PushNotification["send"])
		require.Len(t, body.Methods, 1)
		require.Equal(t, "enr-push", body.Methods[0]["id"])

		writeJSON(t, w, http.StatusCreated, map[string]string{"id": "aabbccdd-0011-2233"})
	})
	mux.HandleFunc("GET /v1.0/authenticators/authn-1/verifications/aabbccdd-0011-2233", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) == 1 {
			writeJSON(t, w, http.StatusOK, map[string]any{
				"state":            "PENDING",
				"expiryTime":       "2026-08-29T12:00:00Z",
				"pushNotification": map[string]any{"sendState": "SENT"},
			})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]string{
			"state":     "VERIFY_SUCCESS",
			"userId":    "user-push",
			"assertion": "assertion-jwt",
		})
	})
	mux.HandleFunc("POST /v1.0/endpoint/default/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token": "full-token",
			"scope":        "openid",
		})
	})

	a, store := newTestAdaptive(t, mux)
	ctx := context.Background()
	id := seedTransaction(t, store, "mfa-token", nil)

	gen, err := a.GeneratePush(ctx, testContext(), id, "enr-push", "authn-1",
		"Confirm your sign-in", "Sign-in request", "Approve in the app",
		[]adaptive.PushAttribute{{Name: "browser", Value: "firefox"}})
	require.NoError(t, err)
	require.Equal(t, "aabbccdd", gen.Correlation)

	res, err := a.EvaluatePush(ctx, testContext(), id)
	require.NoError(t, err)
	require.Equal(t, adaptive.Status("pending"), res.Status)
	require.Equal(t, "SENT", res.PushState)
	require.Equal(t, "2026-08-29T12:00:00Z", res.Expiry)

	res, err = a.EvaluatePush(ctx, testContext(), id)
	require.NoError(t, err)
	require.Equal(t, adaptive.StatusAllow, res.Status)
}

// A QR login resolves the user on the device side, so a success that still
// needs a second factor must carry that identity into the transaction and
// scope the enrollments lookup to it.
func TestQRSuccessResolvesUserForSecondFactor(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2.0/factors/qr/authenticate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{
			"id":     "qr-1",
			"dsi":    "dsi-secret",
			"qrCode": "iVBORw0KGgo=",
		})
	})
	mux.HandleFunc("GET /v2.0/factors/qr/authenticate/qr-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{
			"state":     "SUCCESS",
			"userId":    "user-qr",
			"assertion": "assertion-jwt",
		})
	})
	mux.HandleFunc("POST /v1.0/endpoint/default/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token":   "mfa-token-2",
			"scope":          "mfa_challenge",
			"allowedFactors": []string{"emailotp"},
		})
	})
	mux.HandleFunc("GET /v2.0/factors", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, `userId="user-qr"`, r.URL.Query().Get("search"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"factors": []map[string]any{
				{"id": "enr-email", "type": "emailotp", "enabled": true},
			},
		})
	})

	a, store := newTestAdaptive(t, mux)
	ctx := context.Background()
	id := seedTransaction(t, store, "mfa-token", nil)

	_, err := a.GenerateQR(ctx, testContext(), id, "profile-1")
	require.NoError(t, err)

	res, err := a.EvaluateQR(ctx, testContext(), id)
	require.NoError(t, err)
	require.Equal(t, adaptive.StatusRequires, res.Status)
	require.Len(t, res.EnrolledFactors, 1)
	require.Equal(t, "enr-email", res.EnrolledFactors[0].ID)

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "user-qr", rec["userId"])
}

// Push verifications likewise report the signing user; the identity comes
// from the verification response, not from earlier transaction state.
func TestPushSuccessResolvesUserForSecondFactor(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1.0/authenticators/authn-1/verifications", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusCreated, map[string]string{"id": "ver-push-1"})
	})
	mux.HandleFunc("GET /v1.0/authenticators/authn-1/verifications/ver-push-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{
			"state":     "VERIFY_SUCCESS",
			"userId":    "user-push",
			"assertion": "assertion-jwt",
		})
	})
	mux.HandleFunc("POST /v1.0/endpoint/default/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token":   "mfa-token-2",
			"scope":          "mfa_challenge",
			"allowedFactors": []string{"totp"},
		})
	})
	mux.HandleFunc("GET /v2.0/factors", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, `userId="user-push"`, r.URL.Query().Get("search"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"factors": []map[string]any{
				{"id": "enr-totp", "type": "totp", "enabled": true},
			},
		})
	})

	a, store := newTestAdaptive(t, mux)
	ctx := context.Background()
	id := seedTransaction(t, store, "mfa-token", nil)

	_, err := a.GeneratePush(ctx, testContext(), id, "enr-push", "authn-1",
		"Confirm your sign-in", "Sign-in request", "Approve in the app", nil)
	require.NoError(t, err)

	res, err := a.EvaluatePush(ctx, testContext(), id)
	require.NoError(t, err)
	require.Equal(t, adaptive.StatusRequires, res.Status)
	require.Equal(t, "enr-totp", res.EnrolledFactors[0].ID)

	rec, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "user-push", rec["userId"])
}
