package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveDispatch("ingress", "success", 10*time.Millisecond)
	r.ObserveDispatch("", "no_action_taken", time.Millisecond)
	r.ObserveOutcome("ingress", "revoked")
	r.ObserveOutcome("ingress", "revoked")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.dispatches.WithLabelValues("ingress", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.dispatches.WithLabelValues("none", "no_action_taken")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.outcomes.WithLabelValues("ingress", "revoked")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveDispatch("ingress", "success", time.Second)
		r.ObserveOutcome("ingress", "failed")
	})
}

func TestPush(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	NewRecorder(reg).ObserveOutcome("ami", "terminated")

	require.NoError(t, Push(context.Background(), server.URL, "autoremediator", reg))
	assert.Equal(t, "/metrics/job/autoremediator/instance/"+instanceID, gotPath)
	assert.NotEmpty(t, instanceID)

	assert.NoError(t, Push(context.Background(), "", "autoremediator", reg))
}
