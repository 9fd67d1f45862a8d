package validate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/inventory/pkg/validate"
)

type form struct {
	Name  string `validate:"notblank"`
	Price string `validate:"required,max=9"`
}

func TestVar(t *testing.T) {
	assert.NoError(t, validate.Var(int64(0), "gte=0"))
	assert.Error(t, validate.Var(int64(-1), "gte=0"))
	assert.Error(t, validate.Var("   ", "notblank"))
	assert.NoError(t, validate.Var(" x ", "notblank"))
}

func TestStructFailures(t *testing.T) {
	err := validate.Struct(form{Name: " ", Price: "1234567890"})
	require.Error(t, err)

	assert.Equal(t, []validate.Failure{
		{Field: "Name", Tag: "notblank"},
		{Field: "Price", Tag: "max"},
	}, validate.Failures(err))

	assert.NoError(t, validate.Struct(form{Name: "Widget", Price: "500"}))
	assert.Nil(t, validate.Failures(errors.New("other")))
}
