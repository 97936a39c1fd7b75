package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type sampleCommand struct {
	Title   string `validate:"required,max=10"`
	Minutes int    `validate:"gt=0"`
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(sampleCommand{Title: "ok", Minutes: 5}))

	err := Validate(sampleCommand{Title: "", Minutes: 0})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorContains(t, err, "Title must satisfy required")
	assert.ErrorContains(t, err, "Minutes must satisfy gt=0")
}

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, uuid.Nil, CorrelationIDFromContext(ctx))

	id := uuid.New()
	assert.Equal(t, id, CorrelationIDFromContext(WithCorrelationID(ctx, id)))
}
