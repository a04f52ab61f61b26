package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/secintel/kevfeed/internal/kev"
)

func TestServerRoutes(t *testing.T) {
	extractor := &fakeExtractor{err: kev.ErrTransport}
	p := newTestPipeline(t, extractor, &fakeLoader{})
	s := NewServer(p, zap.NewNop())

	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("pipeline status", func(t *testing.T) {
		p.Run(context.Background())

		resp, err := http.Get(srv.URL + "/api/v1/pipeline")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var info Info
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
		assert.Equal(t, "test", info.Name)
		assert.Equal(t, StateFailed, info.State)
		assert.Equal(t, int64(1), info.Stats.TotalRuns)
		require.NotNil(t, info.Stats.LastReport)
		assert.Equal(t, "extract", info.Stats.LastReport.FailedStage)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
