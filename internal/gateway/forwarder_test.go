package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestForward_PreservesRequestShape(t *testing.T) {
	var gotPath, gotQuery, gotAgent, gotConnection string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		gotConnection = r.Header.Get("Proxy-Authorization")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<account accountID="acct-1"/>`))
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, 5*time.Second)

	header := http.Header{}
	header.Set("User-Agent", "SoundTouch/19.0.5")
	header.Set("Proxy-Authorization", "should-not-pass")

	result, err := client.Forward(context.Background(), http.MethodGet, "/v1/accounts/acct-1", url.Values{"view": {"full"}}, header)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, result.Status)
	require.Equal(t, `<account accountID="acct-1"/>`, string(result.Body))

	require.Equal(t, "/v1/accounts/acct-1", gotPath)
	require.Equal(t, "view=full", gotQuery)
	require.Equal(t, "SoundTouch/19.0.5", gotAgent)
	require.Empty(t, gotConnection)
}

func TestForward_DoesNotFollowRedirects(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/v1/accounts/acct-2", http.StatusFound)
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, 5*time.Second)

	result, err := client.Forward(context.Background(), http.MethodGet, "/v1/accounts/acct-1", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, result.Status)
	require.Equal(t, "/v1/accounts/acct-2", result.Header.Get("Location"))
}

func TestForward_RewritesAbsoluteLocation(t *testing.T) {
	var upstream *httptest.Server
	upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", upstream.URL+"/v1/accounts/acct-3")
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer upstream.Close()

	client := NewClient(upstream.URL, 5*time.Second)

	result, err := client.Forward(context.Background(), http.MethodGet, "/v1/accounts/acct-1", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "/v1/accounts/acct-3", result.Header.Get("Location"))
}

func TestForward_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	client := NewClient(upstream.URL, time.Second)

	_, err := client.Forward(context.Background(), http.MethodGet, "/v1/accounts/acct-1", nil, nil)
	require.Error(t, err)
}
