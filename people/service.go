package people

import (
	"context"
	"fmt"

	"peoplegomodule/docstore"
	"peoplegomodule/types"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is the data-access surface for Person records. Every call is one
// document-store operation; store errors are returned unchanged.
type Service interface {
	// Schema returns the registered record schema
	Schema() Schema

	// CreateAndSavePerson stores the sample person and returns it with its id
	CreateAndSavePerson(ctx context.Context) (Person, error)
	// CreateManyPeople validates every input, then stores them in one ordered bulk insert
	CreateManyPeople(ctx context.Context, people []Person) ([]Person, error)

	// FindPeopleByName returns every person named exactly name, never nil
	FindPeopleByName(ctx context.Context, name string) ([]Person, error)
	// FindOneByFood returns the first person, in natural order, with food as a favorite
	FindOneByFood(ctx context.Context, food string) (Person, error)
	// FindPersonByID looks up a hex id; malformed ids are reported as docstore.ErrNotFound
	FindPersonByID(ctx context.Context, id string) (Person, error)

	// FindEditThenSave adds FoodToAdd to the person's favorites and saves the whole record
	FindEditThenSave(ctx context.Context, id string) (Person, error)
	// FindAndUpdate sets AgeToSet on the first person named name and returns the updated record
	FindAndUpdate(ctx context.Context, name string) (Person, error)

	// RemoveByID deletes one person and returns the removed record
	RemoveByID(ctx context.Context, id string) (Person, error)
	// RemoveManyPeople deletes everyone named name
	RemoveManyPeople(ctx context.Context, name string) (DeleteSummary, error)

	// QueryChain lists up to ChainLimit people with food as a favorite, sorted
	// by name, carrying only name and the food field
	QueryChain(ctx context.Context, food string) ([]Person, error)
}

type service struct {
	store  docstore.DocStore
	schema Schema
}

var _ Service = (*service)(nil)

// NewService returns the Service over store. The caller owns store.
func NewService(store docstore.DocStore, schema Schema) Service {
	return &service{store: store, schema: schema}
}

func (s *service) Schema() Schema {
	return s.schema
}

func (s *service) collection() string {
	return s.schema.Collection
}

func (s *service) CreateAndSavePerson(ctx context.Context) (Person, error) {
	p := s.schema.SamplePerson()
	if err := s.schema.Validate(p); err != nil {
		return Person{}, err
	}

	id, err := s.store.InsertOne(ctx, s.collection(), p)
	if err != nil {
		return Person{}, err
	}
	oid, err := objectID(id)
	if err != nil {
		return Person{}, err
	}
	p.ID = oid
	return p, nil
}

func (s *service) CreateManyPeople(ctx context.Context, people []Person) ([]Person, error) {
	if len(people) == 0 {
		return []Person{}, nil
	}

	ve := types.NewValidationErrors()
	docs := make([]interface{}, len(people))
	stored := make([]Person, len(people))
	for i, p := range people {
		p = s.schema.conform(p)
		ve.Errors = append(ve.Errors, s.schema.validate(p, fmt.Sprintf("%d.", i)).Errors...)
		stored[i] = p
		docs[i] = p
	}
	if err := ve.ErrOrNil(); err != nil {
		return nil, err
	}

	ids, err := s.store.InsertMany(ctx, s.collection(), docs)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(stored) {
		return nil, fmt.Errorf("inserted %d of %d people", len(ids), len(stored))
	}
	for i, id := range ids {
		oid, err := objectID(id)
		if err != nil {
			return nil, err
		}
		stored[i].ID = oid
	}
	return stored, nil
}

func (s *service) FindPeopleByName(ctx context.Context, name string) ([]Person, error) {
	var found []Person
	if err := s.store.FindMany(ctx, s.collection(), bson.M{"name": name}, &found, nil); err != nil {
		return nil, err
	}
	if found == nil {
		found = []Person{}
	}
	return found, nil
}

func (s *service) FindOneByFood(ctx context.Context, food string) (Person, error) {
	var p Person
	if err := s.store.FindOne(ctx, s.collection(), bson.M{s.schema.FoodField(): food}, &p); err != nil {
		return Person{}, err
	}
	return p, nil
}

func (s *service) FindPersonByID(ctx context.Context, id string) (Person, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Person{}, docstore.ErrNotFound
	}

	var p Person
	if err := s.store.FindOne(ctx, s.collection(), bson.M{"_id": oid}, &p); err != nil {
		return Person{}, err
	}
	return p, nil
}

func (s *service) FindEditThenSave(ctx context.Context, id string) (Person, error) {
	p, err := s.FindPersonByID(ctx, id)
	if err != nil {
		return Person{}, err
	}

	if s.schema.Variant == MultiFood {
		p.FavoriteFoods = append(p.FavoriteFoods, FoodToAdd)
	} else {
		p.FavoriteFood = FoodToAdd
	}
	p = s.schema.conform(p)
	if err := s.schema.Validate(p); err != nil {
		return Person{}, err
	}

	matched, err := s.store.ReplaceOne(ctx, s.collection(), bson.M{"_id": p.ID}, p)
	if err != nil {
		return Person{}, err
	}
	if matched == 0 {
		// removed between the read and the save
		return Person{}, docstore.ErrNotFound
	}
	return p, nil
}

func (s *service) FindAndUpdate(ctx context.Context, name string) (Person, error) {
	var p Person
	update := bson.M{"$set": bson.M{"age": AgeToSet}}
	if err := s.store.FindOneAndUpdate(ctx, s.collection(), bson.M{"name": name}, update, &p); err != nil {
		return Person{}, err
	}
	return p, nil
}

func (s *service) RemoveByID(ctx context.Context, id string) (Person, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Person{}, docstore.ErrNotFound
	}

	var p Person
	if err := s.store.FindOneAndDelete(ctx, s.collection(), bson.M{"_id": oid}, &p); err != nil {
		return Person{}, err
	}
	return p, nil
}

func (s *service) RemoveManyPeople(ctx context.Context, name string) (DeleteSummary, error) {
	n, err := s.store.DeleteMany(ctx, s.collection(), bson.M{"name": name})
	if err != nil {
		return DeleteSummary{}, err
	}
	return DeleteSummary{DeletedCount: n}, nil
}

func (s *service) QueryChain(ctx context.Context, food string) ([]Person, error) {
	foodField := s.schema.FoodField()
	opts := &docstore.FindOptions{
		Sort:  bson.D{{Key: "name", Value: 1}},
		Limit: ChainLimit,
		Projection: bson.D{
			{Key: "name", Value: 1},
			{Key: foodField, Value: 1},
			{Key: "_id", Value: 0},
		},
	}

	var found []Person
	if err := s.store.FindMany(ctx, s.collection(), bson.M{foodField: food}, &found, opts); err != nil {
		return nil, err
	}
	if found == nil {
		found = []Person{}
	}
	return found, nil
}

func objectID(id interface{}) (primitive.ObjectID, error) {
	oid, ok := id.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", id)
	}
	return oid, nil
}
