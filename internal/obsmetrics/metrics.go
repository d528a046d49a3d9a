package obsmetrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "strataledger_"

const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

var (
	registerOnce sync.Once

	entriesPosted   *prometheus.CounterVec
	entriesReversed prometheus.Counter

	chargesBilled    prometheus.Counter
	paymentsRecorded prometheus.Counter
	applicationsMade prometheus.Counter

	idempotentReplays prometheus.Counter

	outboxDispatches *prometheus.CounterVec
	outboxPendingAge prometheus.Histogram
)

// Init registers the ledger metrics with the default registry. Calling it
// more than once is safe.
func Init() {
	registerOnce.Do(func() {
		entriesPosted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "journal_entries_posted_total",
				Help: "Journal entries posted, by source document type",
			},
			[]string{"source"},
		)
		entriesReversed = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "journal_entries_reversed_total",
			Help: "Journal entries reversed",
		})
		chargesBilled = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "charges_billed_total",
			Help: "Assessment charges billed to units",
		})
		paymentsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "payments_recorded_total",
			Help: "Payments recorded",
		})
		applicationsMade = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "payment_applications_total",
			Help: "Payment application rows written by the allocator",
		})
		idempotentReplays = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "idempotent_replays_total",
			Help: "Requests answered from a stored idempotency result",
		})
		outboxDispatches = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "outbox_dispatches_total",
				Help: "Outbox task dispatch attempts by task type and outcome",
			},
			[]string{"task_type", "outcome"},
		)
		outboxPendingAge = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "outbox_task_age_seconds",
			Help:    "Age of outbox tasks at dispatch time",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
		})

		prometheus.MustRegister(
			entriesPosted,
			entriesReversed,
			chargesBilled,
			paymentsRecorded,
			applicationsMade,
			idempotentReplays,
			outboxDispatches,
			outboxPendingAge,
		)
	})
}

// Handler exposes the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncEntryPosted counts a posted journal entry by its source type.
func IncEntryPosted(source string) {
	if entriesPosted != nil {
		entriesPosted.WithLabelValues(source).Inc()
	}
}

// IncEntryReversed counts a reversal.
func IncEntryReversed() {
	if entriesReversed != nil {
		entriesReversed.Inc()
	}
}

// IncChargeBilled counts a billed charge.
func IncChargeBilled() {
	if chargesBilled != nil {
		chargesBilled.Inc()
	}
}

// IncPaymentRecorded counts a recorded payment.
func IncPaymentRecorded() {
	if paymentsRecorded != nil {
		paymentsRecorded.Inc()
	}
}

// AddApplications counts application rows written by one allocation run.
func AddApplications(count int) {
	if applicationsMade != nil && count > 0 {
		applicationsMade.Add(float64(count))
	}
}

// IncIdempotentReplay counts a request answered from a stored result.
func IncIdempotentReplay() {
	if idempotentReplays != nil {
		idempotentReplays.Inc()
	}
}

// IncOutboxDispatch counts one dispatch attempt.
func IncOutboxDispatch(taskType, outcome string) {
	if outboxDispatches != nil {
		outboxDispatches.WithLabelValues(taskType, outcome).Inc()
	}
}

// ObserveOutboxTaskAge records how long a task waited before dispatch.
func ObserveOutboxTaskAge(seconds float64) {
	if outboxPendingAge != nil {
		outboxPendingAge.Observe(seconds)
	}
}
