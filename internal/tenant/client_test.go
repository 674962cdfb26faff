package tenant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientSetsHeaders(t *testing.T) {
	t.Parallel()

	var gotAuth, gotAccept, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, nil, nil)

	var out struct {
		OK bool `json:"ok"`
	}
	err := client.Post(context.Background(), "token-123", "/v2.0/factors", nil,
		map[string]string{"k": "v"}, &out)
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, "Bearer token-123", gotAuth)
	require.Equal(t, "application/json", gotAccept)
	require.Equal(t, "application/json", gotContentType)
}

func TestClientPostNilBodySendsEmptyObject(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = json.Marshal(decodeAny(t, r))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, nil, nil)
	require.NoError(t, client.Post(context.Background(), "tok", "/x", nil, nil, nil))
	require.JSONEq(t, `{}`, string(gotBody))
}

func TestClientQueryEncoding(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, nil, nil)
	query := url.Values{"search": {`userId="60300035KP"&enabled=true`}, "returnJwt": {"true"}}
	require.NoError(t, client.Get(context.Background(), "tok", "/v2.0/factors", query, nil))
	require.Equal(t, `userId="60300035KP"&enabled=true`, gotQuery.Get("search"))
	require.Equal(t, "true", gotQuery.Get("returnJwt"))
}

func TestClientRemoteError(t *testing.T) {
	t.Parallel()

	t.Run("structured body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"adaptive_more_info_required","error_description":"denied"}`))
		}))
		t.Cleanup(srv.Close)

		client := New(srv.URL, nil, nil)
		err := client.Get(context.Background(), "tok", "/x", nil, nil)

		var remoteErr *RemoteError
		require.ErrorAs(t, err, &remoteErr)
		require.Equal(t, http.StatusBadRequest, remoteErr.StatusCode)
		require.JSONEq(t,
			`{"error":"adaptive_more_info_required","error_description":"denied"}`,
			string(remoteErr.Detail))
	})

	t.Run("no body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)

		client := New(srv.URL, nil, nil)
		err := client.Get(context.Background(), "tok", "/x", nil, nil)

		var remoteErr *RemoteError
		require.ErrorAs(t, err, &remoteErr)
		require.Equal(t, http.StatusBadGateway, remoteErr.StatusCode)
		require.Empty(t, remoteErr.Detail)
	})
}

func TestClientPostForm(t *testing.T) {
	t.Parallel()

	var gotContentType, gotGrant string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotGrant = r.FormValue("grant_type")
		_, _ = w.Write([]byte(`{"access_token":"abc"}`))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL, nil, nil)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := client.PostForm(context.Background(), "/v1.0/endpoint/default/token",
		url.Values{"grant_type": {"policyauth"}}, &out)
	require.NoError(t, err)
	require.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	require.Equal(t, "policyauth", gotGrant)
	require.Equal(t, "abc", out.AccessToken)
}

func decodeAny(t *testing.T, r *http.Request) any {
	t.Helper()
	var v any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&v))
	return v
}
