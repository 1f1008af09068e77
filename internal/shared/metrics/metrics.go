package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	evaluationsStartedTotal   atomic.Uint64
	evaluationsCompletedTotal atomic.Uint64
	evaluationsFailedTotal    atomic.Uint64

	deadlinesWarnedTotal    atomic.Uint64
	deadlinesRemindedTotal  atomic.Uint64
	deadlinesEscalatedTotal atomic.Uint64

	notificationsSentTotal   atomic.Uint64
	notificationsFailedTotal atomic.Uint64

	evaluationDuration = newHistogram([]float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000})
)

// IncEvaluationStarted increments the started counter.
func IncEvaluationStarted() {
	evaluationsStartedTotal.Add(1)
}

// IncEvaluationCompleted increments the completed counter.
func IncEvaluationCompleted() {
	evaluationsCompletedTotal.Add(1)
}

// IncEvaluationFailed increments the failed counter.
func IncEvaluationFailed() {
	evaluationsFailedTotal.Add(1)
}

// IncDeadlineWarned increments the warning-sent counter.
func IncDeadlineWarned() {
	deadlinesWarnedTotal.Add(1)
}

// IncDeadlineReminded increments the overdue-reminder counter.
func IncDeadlineReminded() {
	deadlinesRemindedTotal.Add(1)
}

// IncDeadlineEscalated increments the escalation counter.
func IncDeadlineEscalated() {
	deadlinesEscalatedTotal.Add(1)
}

// IncNotificationSent increments the notification sent counter.
func IncNotificationSent() {
	notificationsSentTotal.Add(1)
}

// IncNotificationFailed increments the notification failure counter.
func IncNotificationFailed() {
	notificationsFailedTotal.Add(1)
}

// ObserveEvaluationDurationMs records a per-item evaluation duration in milliseconds.
func ObserveEvaluationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	evaluationDuration.Observe(value)
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
	writeCounter(&buf, "evaluations_started_total", "Total item evaluations started", evaluationsStartedTotal.Load())
	writeCounter(&buf, "evaluations_completed_total", "Total item evaluations completed", evaluationsCompletedTotal.Load())
	writeCounter(&buf, "evaluations_failed_total", "Total item evaluations failed", evaluationsFailedTotal.Load())
	writeCounter(&buf, "deadlines_warned_total", "Total deadline warnings sent", deadlinesWarnedTotal.Load())
	writeCounter(&buf, "deadlines_reminded_total", "Total overdue reminders sent", deadlinesRemindedTotal.Load())
	writeCounter(&buf, "deadlines_escalated_total", "Total deadlines escalated", deadlinesEscalatedTotal.Load())
	writeCounter(&buf, "notifications_sent_total", "Total notifications emitted", notificationsSentTotal.Load())
	writeCounter(&buf, "notifications_failed_total", "Total notification emit failures", notificationsFailedTotal.Load())
	writeHistogram(&buf, "evaluation_duration_ms", "Per-item evaluation duration in milliseconds", evaluationDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
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

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
