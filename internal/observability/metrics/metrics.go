package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the submission pipeline.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	scoreHistogram   *prometheus.HistogramVec
	storeAttempts    *prometheus.CounterVec
	duplicateChecks  *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	rateLimited      prometheus.Counter
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assessment",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead submissions by outcome",
		}, []string{"outcome"}),
		scoreHistogram: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "assessment",
			Subsystem: "leads",
			Name:      "score",
			Help:      "Distribution of computed lead scores",
			Buckets:   []float64{20, 40, 60, 80, 90, 100},
		}, []string{"tier"}),
		storeAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assessment",
			Subsystem: "record_store",
			Name:      "create_attempts_total",
			Help:      "Record store create attempts by classified result",
		}, []string{"result"}),
		duplicateChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assessment",
			Subsystem: "record_store",
			Name:      "duplicate_checks_total",
			Help:      "Duplicate lookups by result (hit, miss, error)",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assessment",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification deliveries by channel and status",
		}, []string{"channel", "status"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "assessment",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.scoreHistogram, m.storeAttempts, m.duplicateChecks, m.notifications, m.rateLimited)
	return m
}

func (m *LeadMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveScore(tier string, score int) {
	if m == nil {
		return
	}
	m.scoreHistogram.WithLabelValues(tier).Observe(float64(score))
}

func (m *LeadMetrics) ObserveStoreAttempt(result string) {
	if m == nil {
		return
	}
	m.storeAttempts.WithLabelValues(result).Inc()
}

func (m *LeadMetrics) ObserveDuplicateCheck(result string) {
	if m == nil {
		return
	}
	m.duplicateChecks.WithLabelValues(result).Inc()
}

func (m *LeadMetrics) ObserveNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, status).Inc()
}

func (m *LeadMetrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
