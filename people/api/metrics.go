package api

import (
	"context"
	"time"

	"peoplegomodule/people"

	"github.com/prometheus/client_golang/prometheus"
)

var _ people.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter *prometheus.CounterVec
	latency prometheus.ObserverVec
	svc     people.Service
}

// MakeMetrics registers the request counter and latency summary on reg
func MakeMetrics(reg prometheus.Registerer, namespace, subsystem string) (*prometheus.CounterVec, *prometheus.SummaryVec) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, []string{"method"})
	latency := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  namespace,
		Subsystem:  subsystem,
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		Name:       "request_latency_microseconds",
		Help:       "Total duration of requests in microseconds.",
	}, []string{"method"})

	reg.MustRegister(counter, latency)
	return counter, latency
}

// MetricsMiddleware instruments the people service by tracking request count and latency.
func MetricsMiddleware(svc people.Service, counter *prometheus.CounterVec, latency prometheus.ObserverVec) people.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) observe(method string, begin time.Time) {
	mm.counter.WithLabelValues(method).Inc()
	mm.latency.WithLabelValues(method).Observe(float64(time.Since(begin).Microseconds()))
}

func (mm *metricsMiddleware) Schema() people.Schema {
	return mm.svc.Schema()
}

func (mm *metricsMiddleware) CreateAndSavePerson(ctx context.Context) (people.Person, error) {
	defer mm.observe("create_and_save_person", time.Now())
	return mm.svc.CreateAndSavePerson(ctx)
}

func (mm *metricsMiddleware) CreateManyPeople(ctx context.Context, in []people.Person) ([]people.Person, error) {
	defer mm.observe("create_many_people", time.Now())
	return mm.svc.CreateManyPeople(ctx, in)
}

func (mm *metricsMiddleware) FindPeopleByName(ctx context.Context, name string) ([]people.Person, error) {
	defer mm.observe("find_people_by_name", time.Now())
	return mm.svc.FindPeopleByName(ctx, name)
}

func (mm *metricsMiddleware) FindOneByFood(ctx context.Context, food string) (people.Person, error) {
	defer mm.observe("find_one_by_food", time.Now())
	return mm.svc.FindOneByFood(ctx, food)
}

func (mm *metricsMiddleware) FindPersonByID(ctx context.Context, id string) (people.Person, error) {
	defer mm.observe("find_person_by_id", time.Now())
	return mm.svc.FindPersonByID(ctx, id)
}

func (mm *metricsMiddleware) FindEditThenSave(ctx context.Context, id string) (people.Person, error) {
	defer mm.observe("find_edit_then_save", time.Now())
	return mm.svc.FindEditThenSave(ctx, id)
}

func (mm *metricsMiddleware) FindAndUpdate(ctx context.Context, name string) (people.Person, error) {
	defer mm.observe("find_and_update", time.Now())
	return mm.svc.FindAndUpdate(ctx, name)
}

func (mm *metricsMiddleware) RemoveByID(ctx context.Context, id string) (people.Person, error) {
	defer mm.observe("remove_by_id", time.Now())
	return mm.svc.RemoveByID(ctx, id)
}

func (mm *metricsMiddleware) RemoveManyPeople(ctx context.Context, name string) (people.DeleteSummary, error) {
	defer mm.observe("remove_many_people", time.Now())
	return mm.svc.RemoveManyPeople(ctx, name)
}

func (mm *metricsMiddleware) QueryChain(ctx context.Context, food string) ([]people.Person, error) {
	defer mm.observe("query_chain", time.Now())
	return mm.svc.QueryChain(ctx, food)
}
