package main

import (
	"context"

	"peoplegomodule/people"
)

// demoStep is one entry of the demo output
type demoStep struct {
	Operation string      `json:"operation"`
	Result    interface{} `json:"result,omitempty"`
}

var demoPeople = []struct {
	name  string
	age   int
	foods []string
}{
	{people.NameToRemove, 31, []string{people.FoodToSearch, "salad"}},
	{people.NameToRemove, 27, []string{"sushi"}},
	{"Ann", 45, []string{people.FoodToSearch}},
	{"Bob", 19, []string{people.FoodToSearch, "pizza"}},
	{"Pablo", 38, []string{people.FoodToSearch}},
	{"Sam", 52, []string{people.FoodToSearch}},
	{"Zoe", 23, []string{people.FoodToSearch}},
}

func demoPeopleFor(schema people.Schema) []people.Person {
	out := make([]people.Person, 0, len(demoPeople))
	for _, d := range demoPeople {
		p := people.Person{Name: d.name, Age: d.age}
		if schema.Variant == people.MultiFood {
			p.FavoriteFoods = append([]string(nil), d.foods...)
		} else {
			p.FavoriteFood = d.foods[0]
		}
		out = append(out, p)
	}
	return out
}

// runDemo walks every operation once, in declaration order, against fresh data.
// It stops at the first failing step.
func runDemo(ctx context.Context, svc people.Service, _ []string) (interface{}, string, error) {
	var steps []demoStep
	record := func(op string, result interface{}) {
		steps = append(steps, demoStep{Operation: op, Result: result})
	}

	sample, err := svc.CreateAndSavePerson(ctx)
	if err != nil {
		return steps, "create failed", err
	}
	record("createAndSavePerson", sample)
	id := sample.ID.Hex()

	created, err := svc.CreateManyPeople(ctx, demoPeopleFor(svc.Schema()))
	if err != nil {
		return steps, "createManyPeople failed", err
	}
	record("createManyPeople", created)

	byName, err := svc.FindPeopleByName(ctx, people.NameToRemove)
	if err != nil {
		return steps, "findPeopleByName failed", err
	}
	record("findPeopleByName", byName)

	byFood, err := svc.FindOneByFood(ctx, people.SampleFood)
	if err != nil {
		return steps, "findOneByFood failed", err
	}
	record("findOneByFood", byFood)

	byID, err := svc.FindPersonByID(ctx, id)
	if err != nil {
		return steps, "findPersonById failed", err
	}
	record("findPersonById", byID)

	edited, err := svc.FindEditThenSave(ctx, id)
	if err != nil {
		return steps, "findEditThenSave failed", err
	}
	record("findEditThenSave", edited)

	updated, err := svc.FindAndUpdate(ctx, people.SampleName)
	if err != nil {
		return steps, "findAndUpdate failed", err
	}
	record("findAndUpdate", updated)

	removed, err := svc.RemoveByID(ctx, id)
	if err != nil {
		return steps, "removeById failed", err
	}
	record("removeById", removed)

	summary, err := svc.RemoveManyPeople(ctx, people.NameToRemove)
	if err != nil {
		return steps, "removeManyPeople failed", err
	}
	record("removeManyPeople", summary)

	chain, err := svc.QueryChain(ctx, people.FoodToSearch)
	if err != nil {
		return steps, "queryChain failed", err
	}
	record("queryChain", chain)

	return steps, "demo completed", nil
}
