package api

import (
	"context"
	"fmt"
	"time"

	"peoplegomodule/logging"
	"peoplegomodule/people"
	"peoplegomodule/utils"
)

var _ people.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger logging.Logger
	svc    people.Service
}

// LoggingMiddleware adds logging facilities to the people service.
func LoggingMiddleware(svc people.Service, logger logging.Logger) people.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) done(ctx context.Context, begin time.Time, message string, err error) {
	logger := utils.WithTraceLogger(lm.logger, ctx)
	message = fmt.Sprintf("%s took %s to complete", message, time.Since(begin))
	if err != nil {
		logger.WithError(err).Warn(fmt.Sprintf("%s with error: %s.", message, err))
		return
	}
	logger.Info(fmt.Sprintf("%s without errors.", message))
}

func (lm *loggingMiddleware) Schema() people.Schema {
	return lm.svc.Schema()
}

func (lm *loggingMiddleware) CreateAndSavePerson(ctx context.Context) (p people.Person, err error) {
	defer func(begin time.Time) {
		lm.done(ctx, begin, fmt.Sprintf("Method create_and_save_person returned id %s", p.ID.Hex()), err)
	}(time.Now())

	return lm.svc.CreateAndSavePerson(ctx)
}

func (lm *loggingMiddleware) CreateManyPeople(ctx context.Context, in []people.Person) (out []people.Person, err error) {
	defer func(begin time.Time) {
		lm.done(ctx, begin, fmt.Sprintf("Method create_many_people for %d people", len(in)), err)
	}(time.Now())

	return lm.svc.CreateManyPeople(ctx, in)
}

func (lm *loggingMiddleware) FindPeopleByName(ctx context.Context, name string) (found []people.Person, err error) {
	defer func(begin time.Time) {
		lm.done(ctx, begin, fmt.Sprintf("Method find_people_by_name for name %q matched %d", name, len(found)), err)
	}(time.Now())

	return lm.svc.FindPeopleByName(ctx, name)
}

func (lm *loggingMiddleware) FindOneByFood(ctx context.Context, food string) (p people.Person, err error) {
	defer func(begin time.Time) {
		lm.done(ctx, begin, fmt.Sprintf("Method find_one_by_food for food %q", food), err)
	}(time.Now())

	return lm.svc.FindOneByFood(ctx, food)
}

func (lm *loggingMiddleware) FindPersonByID(ctx context.Context, id string) (p people.Person, err error) {
	defer func(begin time.Time) {
		lm.done(ctx, begin, fmt.Sprintf("Method find_person_by_id for id %s", id), err)
	}(time.Now())

	return lm.svc.FindPersonByID(ctx, id)
}

func (lm *loggingMiddleware) FindEditThenSave(ctx context.Context, id string) (p people.Person, err error) {
	defer func(begin time.Time) {
		lm.done(ctx, begin, fmt.Sprintf("Method find_edit_then_save for id %s", id), err)
	}(time.Now())

	return lm.svc.FindEditThenSave(ctx, id)
}

func (lm *loggingMiddleware) FindAndUpdate(ctx context.Context, name string) (p people.Person, err error) {
	defer func(begin time.Time) {
		lm.done(ctx, begin, fmt.Sprintf("Method find_and_update for name %q", name), err)
	}(time.Now())

	return lm.svc.FindAndUpdate(ctx, name)
}

func (lm *loggingMiddleware) RemoveByID(ctx context.Context, id string) (p people.Person, err error) {
	defer func(begin time.Time) {
		lm.done(ctx, begin, fmt.Sprintf("Method remove_by_id for id %s", id), err)
	}(time.Now())

	return lm.svc.RemoveByID(ctx, id)
}

func (lm *loggingMiddleware) RemoveManyPeople(ctx context.Context, name string) (summary people.DeleteSummary, err error) {
	defer func(begin time.Time) {
		lm.done(ctx, begin, fmt.Sprintf("Method remove_many_people for name %q removed %d", name, summary.DeletedCount), err)
	}(time.Now())

	return lm.svc.RemoveManyPeople(ctx, name)
}

func (lm *loggingMiddleware) QueryChain(ctx context.Context, food string) (found []people.Person, err error) {
	defer func(begin time.Time) {
		lm.done(ctx, begin, fmt.Sprintf("Method query_chain for food %q returned %d", food, len(found)), err)
	}(time.Now())

	return lm.svc.QueryChain(ctx, food)
}
