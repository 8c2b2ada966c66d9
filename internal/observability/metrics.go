package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "tracker",
		Name:      "workouts_recorded_total",
		Help:      "Workouts created from a valid form submission, by type.",
	}, []string{"type"})
	validationRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "tracker",
		Name:      "validation_rejections_total",
		Help:      "Form submissions rejected by numeric validation.",
	})
	geolocationFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "tracker",
		Name:      "geolocation_fallbacks_total",
		Help:      "Map loads that used the fallback position.",
	})
	persistenceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "storage",
		Name:      "persistence_failures_total",
		Help:      "Failed writes to the workout store, by operation.",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(workoutsRecorded, validationRejections, geolocationFallbacks, persistenceFailures)
}

// RecordWorkout counts a newly created workout.
func RecordWorkout(workoutType string) {
	workoutsRecorded.WithLabelValues(workoutType).Inc()
}

func RecordValidationRejection() {
	validationRejections.Inc()
}

func RecordGeolocationFallback() {
	geolocationFallbacks.Inc()
}

// RecordPersistenceFailure counts a failed save or clear.
func RecordPersistenceFailure(op string) {
	persistenceFailures.WithLabelValues(op).Inc()
}
