package telemetry

import (
	"context"
	"sort"

	"github.com/grafana/pyroscope-go"
)

// Profile label keys
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelCustomerID = "customer_id"
)

// MaxLabelValueLength caps label values; longer values are truncated
const MaxLabelValueLength = 128

// highCardinalityLabels are dropped; each value would create its own series
var highCardinalityLabels = map[string]bool{
	"user_id":    true,
	"request_id": true,
	"report_id":  true,
	"trace_id":   true,
	"span_id":    true,
}

// WithProfilingLabels runs fn with the labels attached to CPU samples it takes
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// labelPairs flattens labels into sorted key/value pairs, skipping empty
// and high-cardinality entries
func labelPairs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k, v := range labels {
		if k == "" || v == "" || highCardinalityLabels[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := labels[k]
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		pairs = append(pairs, k, v)
	}
	return pairs
}
