package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceRegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncRecomputeRuns()
	s.IncRecomputeRuns()
	s.IncRecomputeFailures()
	s.IncMatchesSettled(5)
	s.IncImportsRun()
	s.ObserveRecomputeDuration(0.2)
	s.SetStartupTime(1.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.RecomputeRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.RecomputeFailures))
	assert.Equal(t, 5.0, testutil.ToFloat64(s.MatchesSettled))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.ImportsRun))
	assert.Equal(t, 1.5, testutil.ToFloat64(s.StartupTimeSeconds))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "beachrank_recompute_duration_seconds")
}
