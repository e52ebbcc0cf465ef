package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
)

func TestWriteError_Mapeo(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"cuerpo", fmt.Errorf("%w: eof", errInvalidBody), http.StatusBadRequest, "INVALID_BODY"},
		{"validación", domain.NewValidationError("price", "negativo"), http.StatusBadRequest, "VALIDATION"},
		{"stock lugar", &domain.InsufficientStockError{ItemID: "x", Requested: 3, Available: 1}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"no existe", fmt.Errorf("lugar: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"prohibido", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"bodega", domain.ErrInsufficientWarehouseStock, http.StatusConflict, "INSUFFICIENT_WAREHOUSE_STOCK"},
		{"pago", domain.ErrInsufficientPayment, http.StatusPaymentRequired, "INSUFFICIENT_PAYMENT"},
		{"en curso", domain.ErrIdempotencyInProgress, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS"},
		{"duplicado", domain.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{"conflicto", domain.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"transitorio", fmt.Errorf("insert receipt: %w: %w", domain.ErrTransient, errors.New("40001")), http.StatusServiceUnavailable, "RETRYABLE"},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable, "RETRYABLE"},
		{"otro", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, tc.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestWriteError_ValidacionIncluyeCampo(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return writeError(c, fmt.Errorf("crear: %w", domain.NewValidationError("items[1].quantity", "debe ser mayor que 0")))
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "items[1].quantity", body.Field)
}

func TestRequestTimeout_FijaDeadline(t *testing.T) {
	app := fiber.New()
	app.Get("/", RequestTimeout(time.Second), func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		return c.JSON(fiber.Map{"deadline": ok})
	})
	app.Get("/libre", RequestTimeout(0), func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		return c.JSON(fiber.Map{"deadline": ok})
	})

	for path, want := range map[string]bool{"/": true, "/libre": false} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		var body map[string]bool
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, want, body["deadline"], path)
	}
}

func TestPagination_Topes(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		l, o := pagination(c)
		return c.JSON(fiber.Map{"limit": l, "offset": o})
	})
	cases := map[string][2]int{
		"/":                     {dto.DefaultLimit, 0},
		"/?limit=500&offset=-3": {dto.MaxLimit, 0},
		"/?limit=0&offset=40":   {dto.DefaultLimit, 40},
		"/?limit=abc":           {dto.DefaultLimit, 0},
	}
	for path, want := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		var body map[string]int
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, want[0], body["limit"], path)
		assert.Equal(t, want[1], body["offset"], path)
	}
}
