package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/puntoventa-api/internal/application/checkout"
	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
)

// HeaderIdempotencyKey cabecera opcional que hace seguro reintentar un cobro.
const HeaderIdempotencyKey = "Idempotency-Key"

// ReceiptHandler cobro y consulta de recibos (protegido).
type ReceiptHandler struct {
	checkout *checkout.CheckoutUseCase
	receipts *checkout.ReceiptUseCase
}

// NewReceiptHandler construye el handler.
func NewReceiptHandler(co *checkout.CheckoutUseCase, receipts *checkout.ReceiptUseCase) *ReceiptHandler {
	return &ReceiptHandler{checkout: co, receipts: receipts}
}

// Checkout godoc
// @Summary      Cobrar (o devolver) en un lugar
// @Description  Todo o nada. Con Idempotency-Key un reintento con el mismo cuerpo devuelve el recibo original (200).
// @Tags         receipts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "Llave de idempotencia"
// @Param        body             body    dto.CheckoutRequest  true   "Líneas y forma de pago"
// @Success      201  {object}  dto.ReceiptResponse
// @Success      200  {object}  dto.ReceiptResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      402  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *ReceiptHandler) Checkout(c *fiber.Ctx) error {
	teamID, userID := GetTeamID(c), GetUserID(c)
	if teamID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CheckoutRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	cashier := checkout.Cashier{TeamID: teamID, UserID: userID, Role: GetRole(c)}
	res, err := h.checkout.Checkout(c.UserContext(), cashier, strings.TrimSpace(c.Get(HeaderIdempotencyKey)), in)
	if err != nil {
		return writeError(c, err)
	}
	if res.Replayed {
		c.Set("Idempotent-Replayed", "true")
		return c.JSON(res.Receipt)
	}
	return c.Status(fiber.StatusCreated).JSON(res.Receipt)
}

// List godoc
// @Summary      Recibos de un lugar
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        placeId  query  string  true   "ID del lugar"
// @Param        page     query  int     false  "Página (desde 1)"  default(1)
// @Param        limit    query  int     false  "Límite"            default(20)
// @Success      200      {object}  dto.ReceiptListResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Router       /api/receipts [get]
func (h *ReceiptHandler) List(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	placeID := c.Query("placeId")
	if placeID == "" {
		return writeError(c, domain.NewValidationError("placeId", "es obligatorio"))
	}
	limit, _ := pagination(c)
	out, err := h.receipts.List(c.UserContext(), teamID, placeID, c.QueryInt("page", 1), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener recibo
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del recibo"
// @Success      200  {object}  dto.ReceiptResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	out, err := h.receipts.Get(c.UserContext(), teamID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Comprobante PDF del recibo
// @Tags         receipts
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del recibo"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/pdf [get]
func (h *ReceiptHandler) PDF(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	content, filename, err := h.receipts.PDF(c.UserContext(), teamID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(content)
}

// Export godoc
// @Summary      Exportar recibos a XLSX
// @Description  from y to aceptan RFC3339 o AAAA-MM-DD; una fecha sin hora en to incluye todo ese día.
// @Tags         receipts
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        placeId  query  string  true  "ID del lugar"
// @Param        from     query  string  true  "Desde"
// @Param        to       query  string  true  "Hasta"
// @Success      200      {file}  binary
// @Failure      400      {object}  dto.ErrorResponse
// @Router       /api/receipts/export [get]
func (h *ReceiptHandler) Export(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	placeID := c.Query("placeId")
	if placeID == "" {
		return writeError(c, domain.NewValidationError("placeId", "es obligatorio"))
	}
	from, err := parseDate("from", c.Query("from"), false)
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseDate("to", c.Query("to"), true)
	if err != nil {
		return writeError(c, err)
	}
	content, filename, err := h.receipts.Export(c.UserContext(), teamID, placeID, from, to)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(content)
}

// parseDate acepta RFC3339 o AAAA-MM-DD (UTC). endOfDay desplaza una fecha sin hora al día siguiente.
func parseDate(field, raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.NewValidationError(field, "es obligatorio")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "formato esperado AAAA-MM-DD o RFC3339")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
