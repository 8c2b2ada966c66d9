package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordWorkout(t *testing.T) {
	before := testutil.ToFloat64(workoutsRecorded.WithLabelValues("running"))
	RecordWorkout("running")
	if got := testutil.ToFloat64(workoutsRecorded.WithLabelValues("running")); got != before+1 {
		t.Fatalf("expected running counter to increase, got %v", got)
	}
}

func TestRecordCounters(t *testing.T) {
	rejections := testutil.ToFloat64(validationRejections)
	fallbacks := testutil.ToFloat64(geolocationFallbacks)
	failures := testutil.ToFloat64(persistenceFailures.WithLabelValues("save"))

	RecordValidationRejection()
	RecordGeolocationFallback()
	RecordPersistenceFailure("save")

	if testutil.ToFloat64(validationRejections) != rejections+1 {
		t.Fatalf("expected validation counter to increase")
	}
	if testutil.ToFloat64(geolocationFallbacks) != fallbacks+1 {
		t.Fatalf("expected fallback counter to increase")
	}
	if testutil.ToFloat64(persistenceFailures.WithLabelValues("save")) != failures+1 {
		t.Fatalf("expected failure counter to increase")
	}
}
