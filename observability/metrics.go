package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus instruments used by the bot. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	WatchdogDecisions *prometheus.CounterVec
	MessageDeletes    *prometheus.CounterVec
	Bans              *prometheus.CounterVec
	Unbans            *prometheus.CounterVec
	Reports           *prometheus.CounterVec
	TriggerResponses  *prometheus.CounterVec
	StaleRepos        prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		WatchdogDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_decisions_total",
			Help:      "Watchdog decisions by outcome.",
		}, []string{"decision"}),
		MessageDeletes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_message_deletes_total",
			Help:      "Evidence message deletions by result.",
		}, []string{"result"}),
		Bans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_bans_total",
			Help:      "Softban ban step by result.",
		}, []string{"result"}),
		Unbans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_unbans_total",
			Help:      "Softban unban step by result.",
		}, []string{"result"}),
		Reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_reports_total",
			Help:      "Moderation reports by result.",
		}, []string{"result"}),
		TriggerResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trigger_responses_total",
			Help:      "Trigger responses sent by language table.",
		}, []string{"lang"}),
		StaleRepos: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actions_stale_repos",
			Help:      "Repositories reported stale by the last Actions check.",
		}),
	}
}

// ObserveDecision counts a watchdog decision.
func (m *Metrics) ObserveDecision(decision string) {
	if m == nil {
		return
	}
	m.WatchdogDecisions.WithLabelValues(decision).Inc()
}

// ObserveDelete counts one evidence deletion attempt.
func (m *Metrics) ObserveDelete(err error) {
	if m == nil {
		return
	}
	m.MessageDeletes.WithLabelValues(result(err)).Inc()
}

// ObserveBan counts one ban attempt.
func (m *Metrics) ObserveBan(err error) {
	if m == nil {
		return
	}
	m.Bans.WithLabelValues(result(err)).Inc()
}

// ObserveUnban counts one unban attempt.
func (m *Metrics) ObserveUnban(err error) {
	if m == nil {
		return
	}
	m.Unbans.WithLabelValues(result(err)).Inc()
}

// ObserveReport counts one report delivery attempt.
func (m *Metrics) ObserveReport(err error) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveTrigger counts a trigger response for a language table.
func (m *Metrics) ObserveTrigger(lang string) {
	if m == nil {
		return
	}
	m.TriggerResponses.WithLabelValues(lang).Inc()
}

// SetStaleRepos records the size of the last staleness report.
func (m *Metrics) SetStaleRepos(n int) {
	if m == nil {
		return
	}
	m.StaleRepos.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
