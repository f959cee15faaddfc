package metrics

import (
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	var out strings.Builder
	snap := h.snapshot()
	var cumulative uint64
	for i := range snap.buckets {
		cumulative += snap.counts[i]
		out.WriteString(formatFloat(snap.buckets[i]))
		out.WriteString("=")
		out.WriteString(formatFloat(float64(cumulative)))
		out.WriteString(";")
	}
	if got := out.String(); got != "10=1;100=2;" {
		t.Fatalf("unexpected cumulative buckets: %s", got)
	}
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("unexpected count/sum: %d/%v", snap.count, snap.sum)
	}
}

func TestRenderIncludesRecordCounters(t *testing.T) {
	IncRecordCreated()
	ObserveUploadDurationMs(42.5)

	out := Render()
	for _, want := range []string{
		"# TYPE records_created_total counter",
		"records_deleted_total",
		"document_upload_duration_ms_bucket{le=\"+Inf\"}",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}
