// Package metrics holds the prometheus collectors for loan events.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts loan lifecycle events on its own registry.
type Recorder struct {
	registry         *prometheus.Registry
	loansCreated     prometheus.Counter
	installmentsPaid prometheus.Counter
	loansCompleted   prometheus.Counter
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		loansCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loans_created_total",
			Help: "Loans created with a generated schedule.",
		}),
		installmentsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "installments_paid_total",
			Help: "Installments transitioned from unpaid to paid.",
		}),
		loansCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loans_completed_total",
			Help: "Loans whose final installment was paid.",
		}),
	}
	r.registry.MustRegister(r.loansCreated, r.installmentsPaid, r.loansCompleted)
	return r
}

func (r *Recorder) LoanCreated()     { r.loansCreated.Inc() }
func (r *Recorder) InstallmentPaid() { r.installmentsPaid.Inc() }
func (r *Recorder) LoanCompleted()   { r.loansCompleted.Inc() }

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
