package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	recordsCreatedTotal   atomic.Uint64
	recordsUpdatedTotal   atomic.Uint64
	recordsDeletedTotal   atomic.Uint64
	recordStoreErrorTotal atomic.Uint64
	uploadsFailedTotal    atomic.Uint64

	uploadDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000})
)

// IncRecordCreated increments the created counter.
func IncRecordCreated() { recordsCreatedTotal.Add(1) }

// IncRecordUpdated increments the updated counter.
func IncRecordUpdated() { recordsUpdatedTotal.Add(1) }

// IncRecordDeleted increments the deleted counter.
func IncRecordDeleted() { recordsDeletedTotal.Add(1) }

// IncRecordStoreError counts failed table calls.
func IncRecordStoreError() { recordStoreErrorTotal.Add(1) }

// IncUploadFailed counts failed object store uploads.
func IncUploadFailed() { uploadsFailedTotal.Add(1) }

// ObserveUploadDurationMs records a document upload duration in milliseconds.
func ObserveUploadDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	uploadDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "records_created_total", "Total records created", recordsCreatedTotal.Load())
	writeCounter(&buf, "records_updated_total", "Total records updated", recordsUpdatedTotal.Load())
	writeCounter(&buf, "records_deleted_total", "Total records deleted", recordsDeletedTotal.Load())
	writeCounter(&buf, "record_store_errors_total", "Total failed record table calls", recordStoreErrorTotal.Load())
	writeCounter(&buf, "document_uploads_failed_total", "Total failed document uploads", uploadsFailedTotal.Load())
	writeHistogram(&buf, "document_upload_duration_ms", "Document upload duration in milliseconds", uploadDuration.snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe counts value into the first bucket whose bound is >= value; Render
// accumulates the buckets.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) snapshot() histogram {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogram{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogram) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
