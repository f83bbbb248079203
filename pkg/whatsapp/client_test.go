package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendMessage(t *testing.T) {
	var got sendMessageRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	err := c.SendMessage(context.Background(), "+6591234567", "hello")

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "+6591234567", got.Phone)
	assert.Equal(t, "hello", got.Message)
}

func TestClientSendMessageNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	err := c.SendMessage(context.Background(), "+6591234567", "hello")

	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusBadGateway, gwErr.StatusCode)
	assert.Equal(t, "upstream down", gwErr.Body)
}

func TestClientSendMessageNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "", time.Second)
	err := c.SendMessage(context.Background(), "+6591234567", "hello")

	require.Error(t, err)
	var gwErr *GatewayError
	assert.False(t, errors.As(err, &gwErr))
}

func TestClientDownloadMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegbytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	body, contentType, err := c.DownloadMedia(context.Background(), srv.URL+"/m/1")
	require.NoError(t, err)
	defer body.Close()

	data, _ := io.ReadAll(body)
	assert.Equal(t, "image/jpeg", contentType)
	assert.Equal(t, "jpegbytes", string(data))
}

func TestClientDownloadMediaTokenScope(t *testing.T) {
	var gatewayAuth, foreignAuth string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer gateway.Close()
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer foreign.Close()

	c := NewClient(gateway.URL+"/send-message", "secret", time.Second)

	body, _, err := c.DownloadMedia(context.Background(), gateway.URL+"/media/1")
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, "Bearer secret", gatewayAuth)

	body, _, err = c.DownloadMedia(context.Background(), foreign.URL+"/steal")
	require.NoError(t, err)
	body.Close()
	assert.Empty(t, foreignAuth, "untrusted hosts never see the gateway token")

	foreignURL, err := url.Parse(foreign.URL)
	require.NoError(t, err)
	c.TrustMediaHosts(foreignURL.Host)

	body, _, err = c.DownloadMedia(context.Background(), foreign.URL+"/cdn")
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, "Bearer secret", foreignAuth)
}

func TestClientDownloadMediaSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chunked" {
			w.(http.Flusher).Flush() // no Content-Length
		}
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	c.maxMediaBytes = 4

	_, _, err := c.DownloadMedia(context.Background(), srv.URL+"/sized")
	assert.ErrorIs(t, err, ErrMediaTooLarge)

	body, _, err := c.DownloadMedia(context.Background(), srv.URL+"/chunked")
	require.NoError(t, err)
	defer body.Close()
	_, err = io.ReadAll(body)
	assert.ErrorIs(t, err, ErrMediaTooLarge)

	c.maxMediaBytes = 10
	body, _, err = c.DownloadMedia(context.Background(), srv.URL+"/sized")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))
}
