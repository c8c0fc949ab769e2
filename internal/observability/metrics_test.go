package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	t.Run("should keep registries independent", func(t *testing.T) {
		a := NewMetrics()
		b := NewMetrics()

		a.Actions.WithLabelValues("dspm", "Get DSPM Cases", "COMPLETED").Inc()

		assert.Equal(t, 1.0, testutil.ToFloat64(a.Actions.WithLabelValues("dspm", "Get DSPM Cases", "COMPLETED")))
		assert.Equal(t, 0.0, testutil.ToFloat64(b.Actions.WithLabelValues("dspm", "Get DSPM Cases", "COMPLETED")))
	})

	t.Run("should expose namespaced families", func(t *testing.T) {
		m := NewMetrics()
		m.RemoteRequests.WithLabelValues("bigid", "GET", "200").Inc()
		m.RemoteDuration.WithLabelValues("bigid", "GET").Observe(0.2)

		families, err := m.Registry.Gather()
		require.NoError(t, err)

		names := map[string]bool{}
		for _, f := range families {
			names[f.GetName()] = true
		}
		assert.True(t, names["quickstart_remote_requests_total"])
		assert.True(t, names["quickstart_remote_request_duration_seconds"])
		assert.True(t, names["go_goroutines"])
	})
}
