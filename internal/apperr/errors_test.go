package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("Artikel %q", "x"), fiber.StatusNotFound},
		{"forbidden", fmt.Errorf("wrap: %w", ErrForbidden), fiber.StatusForbidden},
		{"invalid", InvalidArgument("menge"), fiber.StatusBadRequest},
		{"conflict", Conflict("name"), fiber.StatusConflict},
		{"unauthenticated", ErrUnauthenticated, fiber.StatusUnauthorized},
		{"storage", errors.New("disk full"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Status(tc.err))
		})
	}
}

func TestToFiberHidesStorageErrors(t *testing.T) {
	err := ToFiber(errors.New("write /data/db.json: no space left"))

	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusInternalServerError, fe.Code)
	assert.NotContains(t, fe.Message, "db.json")
}

func TestToFiberKeepsDomainMessage(t *testing.T) {
	err := ToFiber(NotFound("Artikel %q", "Schrauben"))

	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)
	assert.Contains(t, fe.Message, "Schrauben")
}

func TestToFiberPassesFiberErrors(t *testing.T) {
	in := fiber.NewError(fiber.StatusTeapot, "tea")
	assert.Same(t, in, ToFiber(in))
	assert.NoError(t, ToFiber(nil))
}
