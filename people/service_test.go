package people

import (
	"context"
	"errors"
	"sort"
	"testing"

	"peoplegomodule/docstore"
	"peoplegomodule/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// storeFactory returns an empty store; the Mongo suite and the local suite
// share every case below.
type storeFactory func(t *testing.T) docstore.DocStore

func localStore(t *testing.T) docstore.DocStore {
	t.Helper()
	store, err := docstore.NewLocalDocStore("")
	require.NoError(t, err)
	return store
}

func person(schema Schema, name string, age int, foods ...string) Person {
	p := Person{Name: name, Age: age}
	if schema.Variant == MultiFood {
		p.FavoriteFoods = foods
	} else if len(foods) > 0 {
		p.FavoriteFood = foods[0]
	}
	return p
}

func foodsOf(schema Schema, p Person) []string {
	if schema.Variant == MultiFood {
		return p.FavoriteFoods
	}
	if p.FavoriteFood == "" {
		return nil
	}
	return []string{p.FavoriteFood}
}

func runServiceSuite(t *testing.T, newStore storeFactory) {
	for _, variant := range []FoodVariant{SingleFood, MultiFood} {
		variant := variant
		t.Run(string(variant), func(t *testing.T) {
			schema := NewSchema(variant)
			newService := func(t *testing.T) Service {
				return NewService(newStore(t), schema)
			}

			t.Run("CreateThenFindByID", func(t *testing.T) {
				testCreateThenFindByID(t, newService(t), schema)
			})
			t.Run("CreateManyThenFindByName", func(t *testing.T) {
				testCreateManyThenFindByName(t, newService(t), schema)
			})
			t.Run("FindOneByFood", func(t *testing.T) {
				testFindOneByFood(t, newService(t), schema)
			})
			t.Run("FindEditThenSave", func(t *testing.T) {
				testFindEditThenSave(t, newService(t), schema)
			})
			t.Run("FindAndUpdate", func(t *testing.T) {
				testFindAndUpdate(t, newService(t), schema)
			})
			t.Run("RemoveByID", func(t *testing.T) {
				testRemoveByID(t, newService(t), schema)
			})
			t.Run("RemoveManyPeople", func(t *testing.T) {
				testRemoveManyPeople(t, newService(t), schema)
			})
			t.Run("QueryChain", func(t *testing.T) {
				testQueryChain(t, newService(t), schema)
			})
		})
	}
}

func TestServiceWithLocalStore(t *testing.T) {
	runServiceSuite(t, localStore)
}

func testCreateThenFindByID(t *testing.T, svc Service, schema Schema) {
	ctx := context.Background()

	created, err := svc.CreateAndSavePerson(ctx)
	require.NoError(t, err)
	require.False(t, created.ID.IsZero())
	assert.Equal(t, SampleName, created.Name)
	assert.Equal(t, SampleAge, created.Age)
	assert.Equal(t, []string{SampleFood}, foodsOf(schema, created))

	found, err := svc.FindPersonByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = svc.FindPersonByID(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = svc.FindPersonByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testCreateManyThenFindByName(t *testing.T, svc Service, schema Schema) {
	ctx := context.Background()

	input := []Person{
		person(schema, "Mary", 30, "sushi"),
		person(schema, "Joe", 41, "tacos"),
		person(schema, "Mary", 22, "pasta", "burrito"),
	}
	created, err := svc.CreateManyPeople(ctx, input)
	require.NoError(t, err)
	require.Len(t, created, 3)
	for i, p := range created {
		assert.False(t, p.ID.IsZero())
		assert.Equal(t, input[i].Name, p.Name)
	}

	marys, err := svc.FindPeopleByName(ctx, "Mary")
	require.NoError(t, err)
	require.Len(t, marys, 2)
	assert.ElementsMatch(t, []primitive.ObjectID{created[0].ID, created[2].ID}, []primitive.ObjectID{marys[0].ID, marys[1].ID})

	nobody, err := svc.FindPeopleByName(ctx, "mary")
	require.NoError(t, err)
	assert.NotNil(t, nobody)
	assert.Empty(t, nobody)

	empty, err := svc.CreateManyPeople(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testFindOneByFood(t *testing.T, svc Service, schema Schema) {
	ctx := context.Background()

	created, err := svc.CreateManyPeople(ctx, []Person{
		person(schema, "Ann", 30, "sushi"),
		person(schema, "Bob", 41, "ramen", "sushi"),
	})
	require.NoError(t, err)

	got, err := svc.FindOneByFood(ctx, "sushi")
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, got.ID)

	if schema.Variant == MultiFood {
		got, err = svc.FindOneByFood(ctx, "ramen")
		require.NoError(t, err)
		assert.Equal(t, created[1].ID, got.ID)
	}

	_, err = svc.FindOneByFood(ctx, "haggis")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testFindEditThenSave(t *testing.T, svc Service, schema Schema) {
	ctx := context.Background()

	created, err := svc.CreateAndSavePerson(ctx)
	require.NoError(t, err)

	edited, err := svc.FindEditThenSave(ctx, created.ID.Hex())
	require.NoError(t, err)

	refetched, err := svc.FindPersonByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, edited, refetched)
	assert.Equal(t, created.Name, refetched.Name)
	assert.Equal(t, created.Age, refetched.Age)

	if schema.Variant == MultiFood {
		assert.Equal(t, []string{SampleFood, FoodToAdd}, refetched.FavoriteFoods)
	} else {
		assert.Equal(t, FoodToAdd, refetched.FavoriteFood)
	}

	_, err = svc.FindEditThenSave(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testFindAndUpdate(t *testing.T, svc Service, schema Schema) {
	ctx := context.Background()

	created, err := svc.CreateManyPeople(ctx, []Person{person(schema, "Ann", 30, "sushi")})
	require.NoError(t, err)

	updated, err := svc.FindAndUpdate(ctx, "Ann")
	require.NoError(t, err)
	assert.Equal(t, AgeToSet, updated.Age)

	refetched, err := svc.FindPersonByID(ctx, created[0].ID.Hex())
	require.NoError(t, err)
	want := created[0]
	want.Age = AgeToSet
	assert.Equal(t, want, refetched)

	_, err = svc.FindAndUpdate(ctx, "Nobody")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testRemoveByID(t *testing.T, svc Service, schema Schema) {
	ctx := context.Background()

	created, err := svc.CreateAndSavePerson(ctx)
	require.NoError(t, err)

	removed, err := svc.RemoveByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created, removed)

	_, err = svc.FindPersonByID(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = svc.RemoveByID(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = svc.RemoveByID(ctx, "zzz")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testRemoveManyPeople(t *testing.T, svc Service, schema Schema) {
	ctx := context.Background()

	_, err := svc.CreateManyPeople(ctx, []Person{
		person(schema, NameToRemove, 1, "a"),
		person(schema, NameToRemove, 2, "b"),
		person(schema, "Joe", 3, "c"),
	})
	require.NoError(t, err)

	summary, err := svc.RemoveManyPeople(ctx, NameToRemove)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.DeletedCount)

	left, err := svc.FindPeopleByName(ctx, NameToRemove)
	require.NoError(t, err)
	assert.Empty(t, left)

	joes, err := svc.FindPeopleByName(ctx, "Joe")
	require.NoError(t, err)
	assert.Len(t, joes, 1)

	summary, err = svc.RemoveManyPeople(ctx, NameToRemove)
	require.NoError(t, err)
	assert.Zero(t, summary.DeletedCount)
}

func testQueryChain(t *testing.T, svc Service, schema Schema) {
	ctx := context.Background()

	names := []string{"Zoe", "Pam", "Al", "Kim", "Bea", "Ed", "Max"}
	var input []Person
	for i, name := range names {
		input = append(input, person(schema, name, 20+i, FoodToSearch))
	}
	input = append(input, person(schema, "Aaron", 50, "salad"))
	_, err := svc.CreateManyPeople(ctx, input)
	require.NoError(t, err)

	got, err := svc.QueryChain(ctx, FoodToSearch)
	require.NoError(t, err)
	require.Len(t, got, ChainLimit)

	want := append([]string(nil), names...)
	sort.Strings(want)
	for i, p := range got {
		assert.Equal(t, want[i], p.Name)
		assert.True(t, p.ID.IsZero(), "_id is projected out")
		assert.Zero(t, p.Age, "age is projected out")
		assert.Equal(t, []string{FoodToSearch}, foodsOf(schema, p))
	}

	none, err := svc.QueryChain(ctx, "haggis")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCreateManyPeopleValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	store := localStore(t)
	svc := NewService(store, NewSchema(MultiFood))

	_, err := svc.CreateManyPeople(ctx, []Person{
		{Name: "Ann", Age: 3, FavoriteFoods: []string{"x"}},
		{Name: "", Age: -1},
	})
	var ve *types.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"1.name", "1.favoriteFoods"}, ve.Fields())

	n, err := store.CountDocuments(ctx, "people", bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateManyPeopleDropsOtherVariantField(t *testing.T) {
	ctx := context.Background()
	store := localStore(t)
	svc := NewService(store, NewSchema(SingleFood))

	created, err := svc.CreateManyPeople(ctx, []Person{{Name: "Ann", Age: 3, FavoriteFood: "x", FavoriteFoods: []string{"y"}}})
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, store.FindOne(ctx, "people", bson.M{"_id": created[0].ID}, &raw))
	assert.NotContains(t, raw, "favoriteFoods")
	assert.Equal(t, "x", raw["favoriteFood"])
}

type failingStore struct {
	docstore.DocStore
	err error
}

func (f failingStore) FindMany(context.Context, string, interface{}, interface{}, *docstore.FindOptions) error {
	return f.err
}

func (f failingStore) DeleteMany(context.Context, string, interface{}) (int64, error) {
	return 0, f.err
}

func TestStoreErrorsPassThrough(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(failingStore{err: boom}, NewSchema(SingleFood))

	_, err := svc.FindPeopleByName(context.Background(), "Ann")
	assert.Same(t, boom, err)

	_, err = svc.QueryChain(context.Background(), "x")
	assert.Same(t, boom, err)

	_, err = svc.RemoveManyPeople(context.Background(), "Ann")
	assert.Same(t, boom, err)
}
