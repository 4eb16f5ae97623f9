package yamlv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts build and walk activity. A nil *Metrics records nothing.
type Metrics struct {
	documentsBuilt  prometheus.Counter
	documentsWalked prometheus.Counter
	scalarsResolved *prometheus.CounterVec
	aliasesResolved prometheus.Counter
	failures        *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg. A nil reg
// creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		documentsBuilt: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "yamlv_documents_built_total",
			Help: "Total number of documents built into value trees.",
		}),
		documentsWalked: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "yamlv_documents_walked_total",
			Help: "Total number of value trees walked into event streams.",
		}),
		scalarsResolved: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "yamlv_scalars_resolved_total",
			Help: "Total number of scalars resolved, by resulting class.",
		}, []string{"class"}),
		aliasesResolved: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "yamlv_aliases_resolved_total",
			Help: "Total number of aliases resolved to their anchors.",
		}),
		failures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "yamlv_failures_total",
			Help: "Total number of failed builds and walks, by operation and reason.",
		}, []string{"op", "reason"}),
	}
}

func (m *Metrics) documentBuilt() {
	if m != nil {
		m.documentsBuilt.Inc()
	}
}

func (m *Metrics) documentWalked() {
	if m != nil {
		m.documentsWalked.Inc()
	}
}

func (m *Metrics) scalarResolved(c Class) {
	if m != nil {
		m.scalarsResolved.WithLabelValues(c.String()).Inc()
	}
}

func (m *Metrics) aliasResolved() {
	if m != nil {
		m.aliasesResolved.Inc()
	}
}

func (m *Metrics) failed(op string, err error) {
	if m != nil && err != nil {
		m.failures.WithLabelValues(op, failureReason(err)).Inc()
	}
}
