package events

import (
	"context"
	"time"

	"peoplegomodule/logging"
	"peoplegomodule/messagebus"
	"peoplegomodule/people"
	"peoplegomodule/utils"

	"github.com/bytedance/sonic"
)

const (
	// DefaultTopic is the stream people events go to when none is configured
	DefaultTopic = "people.events"
	// DefaultPublishTimeout bounds one publish when no timeout is configured
	DefaultPublishTimeout = 5 * time.Second
)

var _ people.Service = (*eventStore)(nil)

type eventStore struct {
	svc      people.Service
	producer messagebus.Producer
	topic    string
	timeout  time.Duration
	logger   logging.Logger
}

// NewEventStoreMiddleware returns a wrapper around the people service that
// publishes a change event after every successful mutation. Reads pass
// straight through. Publish failures are logged and never change the result.
// Each publish gets at most timeout; zero means DefaultPublishTimeout.
func NewEventStoreMiddleware(svc people.Service, producer messagebus.Producer, topic string, timeout time.Duration, logger logging.Logger) people.Service {
	if topic == "" {
		topic = DefaultTopic
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &eventStore{
		svc:      svc,
		producer: producer,
		topic:    topic,
		timeout:  timeout,
		logger:   logger,
	}
}

func (es *eventStore) publish(ctx context.Context, event Event) {
	logger := utils.WithTraceLogger(es.logger, ctx).WithField("operation", event.Operation())

	val, err := event.Encode()
	if err != nil {
		logger.WithError(err).Warn("failed to encode event")
		return
	}
	val["occurred_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := sonic.Marshal(val)
	if err != nil {
		logger.WithError(err).Warn("failed to marshal event")
		return
	}

	msg := &messagebus.Message{
		Topic:   es.topic,
		Key:     event.Key(),
		Value:   data,
		Headers: map[string]string{"operation": event.Operation()},
	}
	if traceID, ok := utils.GetTraceID(ctx); ok {
		msg.Headers[utils.TraceIDHeader] = traceID
	}

	sendCtx, cancel := context.WithTimeout(ctx, es.timeout)
	defer cancel()
	if _, _, err := es.producer.Send(sendCtx, msg); err != nil {
		logger.WithError(err).Warn("failed to publish event")
		return
	}
	logger.Debugw("published event", "key", msg.Key, "topic", es.topic)
}

func (es *eventStore) Schema() people.Schema {
	return es.svc.Schema()
}

func (es *eventStore) CreateAndSavePerson(ctx context.Context) (people.Person, error) {
	p, err := es.svc.CreateAndSavePerson(ctx)
	if err != nil {
		return p, err
	}
	es.publish(ctx, createPersonEvent{person: p})
	return p, nil
}

func (es *eventStore) CreateManyPeople(ctx context.Context, in []people.Person) ([]people.Person, error) {
	created, err := es.svc.CreateManyPeople(ctx, in)
	if err != nil {
		return created, err
	}
	for _, p := range created {
		es.publish(ctx, createPersonEvent{person: p})
	}
	return created, nil
}

func (es *eventStore) FindPeopleByName(ctx context.Context, name string) ([]people.Person, error) {
	return es.svc.FindPeopleByName(ctx, name)
}

func (es *eventStore) FindOneByFood(ctx context.Context, food string) (people.Person, error) {
	return es.svc.FindOneByFood(ctx, food)
}

func (es *eventStore) FindPersonByID(ctx context.Context, id string) (people.Person, error) {
	return es.svc.FindPersonByID(ctx, id)
}

func (es *eventStore) FindEditThenSave(ctx context.Context, id string) (people.Person, error) {
	p, err := es.svc.FindEditThenSave(ctx, id)
	if err != nil {
		return p, err
	}
	es.publish(ctx, updatePersonEvent{person: p, method: "find_edit_then_save"})
	return p, nil
}

func (es *eventStore) FindAndUpdate(ctx context.Context, name string) (people.Person, error) {
	p, err := es.svc.FindAndUpdate(ctx, name)
	if err != nil {
		return p, err
	}
	es.publish(ctx, updatePersonEvent{person: p, method: "find_and_update"})
	return p, nil
}

func (es *eventStore) RemoveByID(ctx context.Context, id string) (people.Person, error) {
	p, err := es.svc.RemoveByID(ctx, id)
	if err != nil {
		return p, err
	}
	es.publish(ctx, removePersonEvent{person: p})
	return p, nil
}

// RemoveManyPeople publishes only when something was deleted
func (es *eventStore) RemoveManyPeople(ctx context.Context, name string) (people.DeleteSummary, error) {
	summary, err := es.svc.RemoveManyPeople(ctx, name)
	if err != nil || summary.DeletedCount == 0 {
		return summary, err
	}
	es.publish(ctx, removeManyEvent{name: name, deleted: summary.DeletedCount})
	return summary, nil
}

func (es *eventStore) QueryChain(ctx context.Context, food string) ([]people.Person, error) {
	return es.svc.QueryChain(ctx, food)
}
