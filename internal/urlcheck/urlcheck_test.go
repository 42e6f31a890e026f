package urlcheck

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidate_WhenEndpointReachable_ReturnsInputUnchanged(t *testing.T) {
	t.Parallel()

	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
	}))
	t.Cleanup(srv.Close)

	url, ok := New(time.Second).Validate(srv.URL)
	assert.True(t, ok)
	assert.Equal(t, srv.URL, url)
	assert.Equal(t, http.MethodHead, method)
}

func TestValidate_WhenNonSuccessStatus_ReturnsNotOK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, ok := New(time.Second).Validate(srv.URL)
	assert.False(t, ok)
}

func TestValidate_WhenHostUnreachable_ReturnsNotOK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	_, ok := New(time.Second).Validate(srv.URL)
	assert.False(t, ok)
}

func TestValidate_FollowsRedirects(t *testing.T) {
	t.Parallel()

	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(final.Close)

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusMovedPermanently)
	}))
	t.Cleanup(redirecting.Close)

	url, ok := New(time.Second).Validate(redirecting.URL)
	assert.True(t, ok)
	assert.Equal(t, redirecting.URL, url)
}

func TestValidate_WhenNotAURL_ReturnsNotOK(t *testing.T) {
	t.Parallel()

	_, ok := New(time.Second).Validate("://not a url")
	assert.False(t, ok)
}
