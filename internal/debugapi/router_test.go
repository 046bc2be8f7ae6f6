package debugapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/cullgo/internal/culling"
	"github.com/udisondev/cullgo/internal/model"
	"github.com/udisondev/cullgo/internal/sim"
)

type stubSource struct {
	snap atomic.Pointer[sim.Snapshot]
}

func (s *stubSource) Snapshot() *sim.Snapshot { return s.snap.Load() }

func newStubSource(frame uint64) *stubSource {
	stats := culling.Stats{Ticks: frame, CurrentlyCulled: 7}
	stats.Categories[model.CategoryLoot] = culling.CategoryStats{
		Scans: 4, Members: 100, Culled: 12, Unculled: 3, ScanTime: 2 * time.Microsecond,
	}
	src := &stubSource{}
	src.snap.Store(&sim.Snapshot{Frame: frame, Position: [3]float32{1, 2, 3}, Objects: 50, Stats: stats})
	return src
}

func get(t *testing.T, src sim.SnapshotSource, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := NewRouter(src, time.Second, make(chan struct{}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, newStubSource(9), "/healthz")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 9, body["frame"])
}

func TestStats(t *testing.T) {
	w := get(t, newStubSource(12), "/stats")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Frame      uint64                      `json:"frame"`
		Objects    int                         `json:"objects"`
		Position   [3]float32                  `json:"position"`
		Stats      culling.Stats               `json:"stats"`
		Categories map[string]CategoryResponse `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, uint64(12), body.Frame)
	assert.Equal(t, 50, body.Objects)
	assert.Equal(t, [3]float32{1, 2, 3}, body.Position)
	assert.Equal(t, 7, body.Stats.CurrentlyCulled)
	assert.Len(t, body.Categories, model.CategoryCount)

	loot := body.Categories["loot"]
	assert.Equal(t, uint64(12), loot.Culled)
	assert.InDelta(t, 25.0, loot.AvgMembers, 1e-9)
	assert.Equal(t, int64(2000), loot.ScanTimeNs)
}

func TestStats_NoSnapshot(t *testing.T) {
	w := get(t, &stubSource{}, "/stats")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCategory(t *testing.T) {
	w := get(t, newStubSource(1), "/stats/loot")

	require.Equal(t, http.StatusOK, w.Code)
	var body CategoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "loot", body.Category)
	assert.Equal(t, uint64(4), body.Scans)
	assert.Equal(t, uint64(3), body.Unculled)
}

func TestCategory_Unknown(t *testing.T) {
	w := get(t, newStubSource(1), "/stats/dragons")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
