package types

import (
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseToJSON(t *testing.T) {
	resp := NewSuccessResponse("findPeopleByName", []string{"Mary"}, "1 match")
	resp.TraceID = "trace-1"

	data, err := resp.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, sonic.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, "findPeopleByName", decoded["operation"])
	assert.Equal(t, "trace-1", decoded["traceId"])
	assert.NotContains(t, decoded, "error")
}

func TestErrorResponse(t *testing.T) {
	resp := NewErrorResponse("findPersonById", errors.New("mongo: no documents in result"))
	assert.False(t, resp.Success)
	assert.Equal(t, "mongo: no documents in result", resp.Error)

	data, err := resp.ToIndentedJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"success\": false")

	assert.Empty(t, NewErrorResponse("op", nil).Error)
}

func TestValidationErrors(t *testing.T) {
	ve := NewValidationErrors()
	assert.False(t, ve.HasErrors())
	assert.NoError(t, ve.ErrOrNil())
	assert.Equal(t, "no validation errors", ve.Error())

	ve.Add("name", "", "name is required", CodeRequired)
	ve.Add("favoriteFoods", "", "at least one favorite food is required", CodeRequired)

	require.True(t, ve.HasErrors())
	assert.Equal(t, []string{"name", "favoriteFoods"}, ve.Fields())
	assert.Equal(t, "validation failed: name: name is required; favoriteFoods: at least one favorite food is required", ve.Error())

	err := ve.ErrOrNil()
	var target *ValidationErrors
	require.True(t, errors.As(err, &target))
	assert.Len(t, target.Errors, 2)

	var nilErrs *ValidationErrors
	assert.NoError(t, nilErrs.ErrOrNil())
}
