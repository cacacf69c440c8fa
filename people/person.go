package people

import (
	"fmt"
	"strings"

	"peoplegomodule/types"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fixed values used by the Service operations
const (
	SampleName   = "John Doe"
	SampleAge    = 25
	SampleFood   = "Pizza"
	FoodToAdd    = "hamburger"
	AgeToSet     = 20
	ChainLimit   = 5
	NameToRemove = "Mary"
	FoodToSearch = "burrito"
)

// FoodVariant selects how a person's favorite food is stored
type FoodVariant string

const (
	// SingleFood stores one string under "favoriteFood"
	SingleFood FoodVariant = "single"
	// MultiFood stores a list under "favoriteFoods"
	MultiFood FoodVariant = "multi"
)

// ParseFoodVariant accepts "single" or "multi", case-insensitively
func ParseFoodVariant(s string) (FoodVariant, error) {
	switch FoodVariant(strings.ToLower(strings.TrimSpace(s))) {
	case SingleFood:
		return SingleFood, nil
	case MultiFood:
		return MultiFood, nil
	}
	return "", fmt.Errorf("unknown food variant %q (want %q or %q)", s, SingleFood, MultiFood)
}

// Person is one stored record. Only the food field of the schema's variant
// is persisted.
type Person struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty" yaml:"-"`
	Name          string             `bson:"name" json:"name" yaml:"name"`
	Age           int                `bson:"age" json:"age" yaml:"age"`
	FavoriteFood  string             `bson:"favoriteFood,omitempty" json:"favoriteFood,omitempty" yaml:"favoriteFood,omitempty"`
	FavoriteFoods []string           `bson:"favoriteFoods,omitempty" json:"favoriteFoods,omitempty" yaml:"favoriteFoods,omitempty"`
}

// DeleteSummary reports the outcome of a bulk delete
type DeleteSummary struct {
	DeletedCount int64 `json:"deletedCount"`
}

// Schema is the registered record definition for Person
type Schema struct {
	Model      string      `json:"model"`
	Collection string      `json:"collection"`
	Variant    FoodVariant `json:"variant"`
}

// NewSchema returns the Person schema for variant
func NewSchema(variant FoodVariant) Schema {
	return Schema{
		Model:      "Person",
		Collection: "people",
		Variant:    variant,
	}
}

// FoodField is the stored field name of the variant's food attribute
func (s Schema) FoodField() string {
	if s.Variant == MultiFood {
		return "favoriteFoods"
	}
	return "favoriteFood"
}

// Validate checks p against the schema. The error is a
// *types.ValidationErrors listing every violated field.
func (s Schema) Validate(p Person) error {
	return s.validate(p, "").ErrOrNil()
}

func (s Schema) validate(p Person, prefix string) *types.ValidationErrors {
	ve := types.NewValidationErrors()

	if p.Name == "" {
		ve.Add(prefix+"name", p.Name, "name is required", types.CodeRequired)
	}

	switch s.Variant {
	case MultiFood:
		if len(p.FavoriteFoods) == 0 {
			ve.Add(prefix+"favoriteFoods", "", "at least one favorite food is required", types.CodeRequired)
		}
	default:
		if p.FavoriteFood == "" {
			ve.Add(prefix+"favoriteFood", "", "favorite food is required", types.CodeRequired)
		}
	}
	return ve
}

// conform drops the food field that does not belong to the variant
func (s Schema) conform(p Person) Person {
	if s.Variant == MultiFood {
		p.FavoriteFood = ""
	} else {
		p.FavoriteFoods = nil
	}
	return p
}

// SamplePerson is the record CreateAndSavePerson stores
func (s Schema) SamplePerson() Person {
	p := Person{Name: SampleName, Age: SampleAge}
	if s.Variant == MultiFood {
		p.FavoriteFoods = []string{SampleFood}
	} else {
		p.FavoriteFood = SampleFood
	}
	return p
}
