// Package telemetry exposes the service's Prometheus instrumentation.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

var (
	// RefreshCycles counts completed metrics/adaptation refresh cycles.
	RefreshCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resilio_refresh_cycles_total",
		Help: "Number of completed metrics refresh cycles.",
	})

	// SuggestionsEmitted counts adaptation suggestions by trigger class.
	SuggestionsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resilio_suggestions_emitted_total",
		Help: "Adaptation suggestions emitted, labelled by trigger.",
	}, []string{"trigger"})

	// ActivitiesIngested counts ingested activities.
	ActivitiesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resilio_activities_ingested_total",
		Help: "Number of activities ingested.",
	})
)

// Handler returns the Prometheus scrape endpoint as a gin handler.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
