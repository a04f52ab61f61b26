package kev

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractorFetch(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		var gotUserAgent string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserAgent = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"catalogVersion": "2021.05.01",
				"dateReleased": "2021-05-01T00:00:00.000Z",
				"count": 1,
				"vulnerabilities": [
					{"cveID": "CVE-2021-1", "vendorProject": "Acme", "dateAdded": "2021-05-01"}
				]
			}`))
		}))
		defer srv.Close()

		e := NewExtractor(WithEndpoint(srv.URL))
		catalog, err := e.Fetch(context.Background())
		require.NoError(t, err)
		require.NotNil(t, catalog)

		assert.Equal(t, "2021.05.01", catalog.CatalogVersion)
		assert.Equal(t, 1, catalog.Count)
		require.Len(t, catalog.Vulnerabilities, 1)
		assert.Equal(t, "CVE-2021-1", catalog.Vulnerabilities[0]["cveID"])
		assert.Equal(t, defaultUserAgent, gotUserAgent)
	})

	t.Run("http 503 is a transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		e := NewExtractor(WithEndpoint(srv.URL))
		catalog, err := e.Fetch(context.Background())
		assert.Nil(t, catalog)
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("connection refused is a transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		e := NewExtractor(WithEndpoint(srv.URL), WithTimeout(time.Second))
		_, err := e.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"vulnerabilities": [`))
		}))
		defer srv.Close()

		e := NewExtractor(WithEndpoint(srv.URL))
		_, err := e.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrMalformedBody)
	})

	t.Run("non-object body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[1, 2, 3]`))
		}))
		defer srv.Close()

		e := NewExtractor(WithEndpoint(srv.URL))
		_, err := e.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrWrongShape)
	})

	t.Run("missing vulnerabilities key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"catalogVersion": "2021.05.01", "count": 0}`))
		}))
		defer srv.Close()

		e := NewExtractor(WithEndpoint(srv.URL))
		_, err := e.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrWrongShape)
	})
}
