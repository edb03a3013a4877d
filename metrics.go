package vetted

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// decodesTotal counts Decoder.Decode calls by type, content type and outcome
	// (accepted, rejected, structural).
	decodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vetted_decode_total",
		Help: "The total number of validating decodes",
	}, []string{"type", "content_type", "outcome"})

	// decodeTime tracks Decoder.Decode duration in milliseconds, structural
	// parse and Validate together.
	decodeTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "vetted_decode_time_millis",
		Help: "The time it takes to decode and validate, in milliseconds",
		Buckets: []float64{
			0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100,
		},
	}, []string{"type", "outcome"})
)

// observeDecode records one decode in the metrics above.
func observeDecode(typeName, contentType string, duration time.Duration, err error) {
	outcome := outcomeOf(err)
	decodesTotal.WithLabelValues(typeName, contentType, outcome).Inc()
	decodeTime.WithLabelValues(typeName, outcome).Observe(float64(duration) / float64(time.Millisecond))
}
