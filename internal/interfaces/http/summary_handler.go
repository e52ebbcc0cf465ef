package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/puntoventa-api/internal/application/analytics"
)

// SummaryHandler resumen de ventas por lugar.
type SummaryHandler struct {
	uc *appanalytics.SummaryUseCase
}

// NewSummaryHandler construye el handler.
func NewSummaryHandler(uc *appanalytics.SummaryUseCase) *SummaryHandler {
	return &SummaryHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen de ventas del lugar
// @Description  Totales por forma de pago y artículos más vendidos en [from, to). Sin fechas, el día actual (UTC).
// @Tags         places
// @Security     Bearer
// @Produce      json
// @Param        placeId  path   string  true   "ID del lugar"
// @Param        from     query  string  false  "AAAA-MM-DD o RFC3339"
// @Param        to       query  string  false  "AAAA-MM-DD (inclusive) o RFC3339"
// @Success      200      {object}  dto.SalesSummaryResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/places/{placeId}/summary [get]
func (h *SummaryHandler) GetSummary(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	from, to, err := summaryRange(c.Query("from"), c.Query("to"), time.Now().UTC())
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetSummary(c.UserContext(), teamID, c.Params("placeId"), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// summaryRange sin fechas devuelve el día de now; con una sola, exige la otra.
func summaryRange(rawFrom, rawTo string, now time.Time) (time.Time, time.Time, error) {
	if rawFrom == "" && rawTo == "" {
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 1), nil
	}
	from, err := parseDate("from", rawFrom, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate("to", rawTo, true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
