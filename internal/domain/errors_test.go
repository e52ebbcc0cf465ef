package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_UnwrapsInvalidInput(t *testing.T) {
	err := fmt.Errorf("crear artículo: %w", NewValidationError("price", "no puede ser negativo"))

	assert.ErrorIs(t, err, ErrInvalidInput)

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "price", ve.Field)
	assert.Equal(t, "price: no puede ser negativo", ve.Error())
}

func TestInsufficientStockError_UnwrapsSentinel(t *testing.T) {
	var err error = &InsufficientStockError{ItemID: "it-1", Requested: 6, Available: 5}

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.NotErrorIs(t, err, ErrInsufficientWarehouseStock)
	assert.Contains(t, err.Error(), "solicitado 6")
}
