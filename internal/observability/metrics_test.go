package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisterOnce(t *testing.T) {
	m, reg := NewTestMetrics()
	m.SessionsSealed.Inc()
	m.AggregationAnomalies.WithLabelValues("duplicate_day").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsSealed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AggregationAnomalies.WithLabelValues("duplicate_day")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "liftlog_sessions_sealed_total")
	assert.Contains(t, names, "liftlog_aggregation_anomalies_total")
}

func TestNewRegistryIncludesRuntime(t *testing.T) {
	reg := NewRegistry()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
