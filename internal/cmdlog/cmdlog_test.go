package cmdlog

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"hottakes/internal/metrics"
)

func TestRunCountsErrors(t *testing.T) {
	boom := errors.New("boom")
	err := Run("cmdlog-test", func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CommandRuns.WithLabelValues("cmdlog-test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CommandErrors.WithLabelValues("cmdlog-test")))

	assert.NoError(t, Run("cmdlog-test", func() error { return nil }))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CommandRuns.WithLabelValues("cmdlog-test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CommandErrors.WithLabelValues("cmdlog-test")))
}
