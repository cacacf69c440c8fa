package events

import (
	"peoplegomodule/people"
)

const (
	personPrefix     = "person."
	personCreate     = personPrefix + "create"
	personUpdate     = personPrefix + "update"
	personRemove     = personPrefix + "remove"
	personRemoveMany = personPrefix + "remove_many"
)

// AllOperations lists every event operation the middleware emits.
var AllOperations = [...]string{
	personCreate,
	personUpdate,
	personRemove,
	personRemoveMany,
}

// Event is one change notification
type Event interface {
	// Operation is the event name, e.g. "person.create"
	Operation() string
	// Key partitions the stream; a person id where there is one
	Key() string
	Encode() (map[string]interface{}, error)
}

var (
	_ Event = (*createPersonEvent)(nil)
	_ Event = (*updatePersonEvent)(nil)
	_ Event = (*removePersonEvent)(nil)
	_ Event = (*removeManyEvent)(nil)
)

func encodePerson(p people.Person) map[string]interface{} {
	val := map[string]interface{}{
		"id":   p.ID.Hex(),
		"name": p.Name,
		"age":  p.Age,
	}
	if p.FavoriteFood != "" {
		val["favoriteFood"] = p.FavoriteFood
	}
	if len(p.FavoriteFoods) > 0 {
		val["favoriteFoods"] = p.FavoriteFoods
	}
	return val
}

type createPersonEvent struct {
	person people.Person
}

func (cpe createPersonEvent) Operation() string { return personCreate }
func (cpe createPersonEvent) Key() string       { return cpe.person.ID.Hex() }

func (cpe createPersonEvent) Encode() (map[string]interface{}, error) {
	val := encodePerson(cpe.person)
	val["operation"] = personCreate
	return val, nil
}

type updatePersonEvent struct {
	person people.Person
	method string
}

func (upe updatePersonEvent) Operation() string { return personUpdate }
func (upe updatePersonEvent) Key() string       { return upe.person.ID.Hex() }

func (upe updatePersonEvent) Encode() (map[string]interface{}, error) {
	val := encodePerson(upe.person)
	val["operation"] = personUpdate
	val["method"] = upe.method
	return val, nil
}

type removePersonEvent struct {
	person people.Person
}

func (rpe removePersonEvent) Operation() string { return personRemove }
func (rpe removePersonEvent) Key() string       { return rpe.person.ID.Hex() }

func (rpe removePersonEvent) Encode() (map[string]interface{}, error) {
	return map[string]interface{}{
		"operation": personRemove,
		"id":        rpe.person.ID.Hex(),
		"name":      rpe.person.Name,
	}, nil
}

type removeManyEvent struct {
	name    string
	deleted int64
}

func (rme removeManyEvent) Operation() string { return personRemoveMany }
func (rme removeManyEvent) Key() string       { return rme.name }

func (rme removeManyEvent) Encode() (map[string]interface{}, error) {
	return map[string]interface{}{
		"operation":     personRemoveMany,
		"name":          rme.name,
		"deleted_count": rme.deleted,
	}, nil
}
