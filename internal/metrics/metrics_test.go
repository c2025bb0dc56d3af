package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	m := New()

	assert.NotNil(t, m.Registry)
	assert.NotNil(t, m.FeedLoadsTotal)
	assert.NotNil(t, m.FeedLoadDuration)
	assert.NotNil(t, m.FeedFetchBytes)
	assert.NotNil(t, m.ComputationsTotal)
	assert.NotNil(t, m.ComputationDuration)
}

func TestObserveFeedLoad(t *testing.T) {
	m := New()

	m.ObserveFeedLoad("file", nil, 50*time.Millisecond)
	m.ObserveFeedLoad("file", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.FeedLoadsTotal.WithLabelValues("file", "ok")))
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.FeedLoadsTotal.WithLabelValues("file", "error")))
}

func TestAddFetchBytes(t *testing.T) {
	m := New()

	m.AddFetchBytes(1024)
	m.AddFetchBytes(0)
	m.AddFetchBytes(-5)

	assert.Equal(t, 1024.0, testutil.ToFloat64(m.FeedFetchBytes))
}

func TestObserveComputation(t *testing.T) {
	m := New()

	m.ObserveComputation("trip_stats", 10*time.Millisecond)
	m.ObserveComputation("trip_stats", 20*time.Millisecond)
	m.ObserveComputation("route_stats", time.Millisecond)

	assert.Equal(t, 2.0,
		testutil.ToFloat64(m.ComputationsTotal.WithLabelValues("trip_stats")))
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.ComputationsTotal.WithLabelValues("route_stats")))
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveFeedLoad("file", nil, time.Second)
		m.AddFetchBytes(10)
		m.ObserveComputation("trip_stats", time.Second)
	})
}
