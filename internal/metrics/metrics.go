// Package metrics records planner activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives planner events.
type Recorder interface {
	// VisitOperation counts a successful mutation such as "add" or "complete".
	VisitOperation(op string)
	CapacityRejected()
	DayClosed(relocated int)
	// AddressLookup counts a postal code lookup by outcome.
	AddressLookup(result string)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) VisitOperation(string) {}
func (NopRecorder) CapacityRejected()     {}
func (NopRecorder) DayClosed(int)         {}
func (NopRecorder) AddressLookup(string)  {}

// PromRecorder records events in Prometheus metrics.
type PromRecorder struct {
	operations *prometheus.CounterVec
	rejected   prometheus.Counter
	closed     prometheus.Counter
	relocated  prometheus.Counter
	lookups    *prometheus.CounterVec
}

// NewPromRecorder registers the planner metrics on reg. A nil registerer
// defaults to the global Prometheus registerer. Metrics already present on
// reg are reused.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visit_operations_total",
		Help: "Total number of successful visit mutations",
	}, []string{"operation"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visit_capacity_rejections_total",
		Help: "Total number of visits rejected for exceeding day capacity",
	})
	closed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visit_days_closed_total",
		Help: "Total number of days closed",
	})
	relocated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visit_relocations_total",
		Help: "Total number of pending visits moved off closed days",
	})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "address_lookups_total",
		Help: "Total number of postal code lookups",
	}, []string{"result"})

	var err error
	if operations, err = register(reg, operations); err != nil {
		return nil, err
	}
	if rejected, err = register(reg, rejected); err != nil {
		return nil, err
	}
	if closed, err = register(reg, closed); err != nil {
		return nil, err
	}
	if relocated, err = register(reg, relocated); err != nil {
		return nil, err
	}
	if lookups, err = register(reg, lookups); err != nil {
		return nil, err
	}

	return &PromRecorder{
		operations: operations,
		rejected:   rejected,
		closed:     closed,
		relocated:  relocated,
		lookups:    lookups,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (p *PromRecorder) VisitOperation(op string) {
	p.operations.WithLabelValues(op).Inc()
}

func (p *PromRecorder) CapacityRejected() {
	p.rejected.Inc()
}

func (p *PromRecorder) DayClosed(relocated int) {
	p.closed.Inc()
	p.relocated.Add(float64(relocated))
}

func (p *PromRecorder) AddressLookup(result string) {
	p.lookups.WithLabelValues(result).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

