package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/puntoventa-api/internal/application/checkout"
	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/application/stock"
	"github.com/jhoicas/puntoventa-api/internal/application/usecase"
)

// PlaceHandler lugares de venta, sus asignaciones y la cotización del carrito (protegido).
type PlaceHandler struct {
	uc     *usecase.PlaceUseCase
	ledger *stock.LedgerUseCase
	groups *usecase.GroupUseCase
	quote  *checkout.QuoteUseCase
}

// NewPlaceHandler construye el handler.
func NewPlaceHandler(uc *usecase.PlaceUseCase, ledger *stock.LedgerUseCase, groups *usecase.GroupUseCase, quote *checkout.QuoteUseCase) *PlaceHandler {
	return &PlaceHandler{uc: uc, ledger: ledger, groups: groups, quote: quote}
}

// Create godoc
// @Summary      Crear lugar de venta
// @Tags         places
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePlaceRequest  true  "Nombre y moneda ISO 4217"
// @Success      201   {object}  dto.PlaceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/places [post]
func (h *PlaceHandler) Create(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	var in dto.CreatePlaceRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), teamID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar lugares
// @Tags         places
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.PlaceListResponse
// @Router       /api/places [get]
func (h *PlaceHandler) List(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	limit, offset := pagination(c)
	out, err := h.uc.List(c.UserContext(), teamID, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener lugar
// @Tags         places
// @Security     Bearer
// @Produce      json
// @Param        placeId  path  string  true  "ID del lugar"
// @Success      200      {object}  dto.PlaceResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/places/{placeId} [get]
func (h *PlaceHandler) GetByID(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetByID(c.UserContext(), teamID, c.Params("placeId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar lugar
// @Tags         places
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        placeId  path  string                  true  "ID del lugar"
// @Param        body     body  dto.UpdatePlaceRequest  true  "Campos a actualizar"
// @Success      200      {object}  dto.PlaceResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/places/{placeId} [put]
func (h *PlaceHandler) Update(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	var in dto.UpdatePlaceRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), teamID, c.Params("placeId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Items godoc
// @Summary      Artículos asignados al lugar
// @Tags         places
// @Security     Bearer
// @Produce      json
// @Param        placeId  path  string  true  "ID del lugar"
// @Success      200      {array}  dto.AllocationResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/places/{placeId}/items [get]
func (h *PlaceHandler) Items(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	out, err := h.ledger.ListAllocations(c.UserContext(), teamID, c.Params("placeId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Allocate godoc
// @Summary      Asignar stock de bodega al lugar
// @Description  quantity es canónica salvo que se indique unit (p. ej. "kilogram").
// @Tags         places
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        placeId  path  string               true  "ID del lugar"
// @Param        body     body  dto.AllocateRequest  true  "Artículo y cantidad"
// @Success      200      {object}  dto.AllocationResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Failure      409      {object}  dto.ErrorResponse
// @Router       /api/places/{placeId}/items [post]
func (h *PlaceHandler) Allocate(c *fiber.Ctx) error {
	teamID, userID := GetTeamID(c), GetUserID(c)
	if teamID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.AllocateRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.ledger.Allocate(c.UserContext(), teamID, userID, c.Params("placeId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Deallocate godoc
// @Summary      Retirar artículo del lugar
// @Description  El stock asignado no vuelve a bodega.
// @Tags         places
// @Security     Bearer
// @Accept       json
// @Param        placeId  path  string                 true  "ID del lugar"
// @Param        body     body  dto.DeallocateRequest  true  "Artículo a retirar"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/places/{placeId}/items [delete]
func (h *PlaceHandler) Deallocate(c *fiber.Ctx) error {
	var in dto.DeallocateRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.deallocate(c, in.ItemID)
}

// DeallocateByPath godoc
// @Summary      Retirar artículo del lugar (artículo en la ruta)
// @Tags         places
// @Security     Bearer
// @Param        placeId  path  string  true  "ID del lugar"
// @Param        itemId   path  string  true  "ID del artículo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/places/{placeId}/items/{itemId} [delete]
func (h *PlaceHandler) DeallocateByPath(c *fiber.Ctx) error {
	return h.deallocate(c, c.Params("itemId"))
}

func (h *PlaceHandler) deallocate(c *fiber.Ctx, itemID string) error {
	teamID, userID := GetTeamID(c), GetUserID(c)
	if teamID == "" || userID == "" {
		return unauthorized(c)
	}
	if err := h.ledger.Deallocate(c.UserContext(), teamID, userID, c.Params("placeId"), itemID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Groups godoc
// @Summary      Artículos del lugar agrupados por variante
// @Tags         places
// @Security     Bearer
// @Produce      json
// @Param        placeId  path  string  true  "ID del lugar"
// @Success      200      {array}  dto.GroupResponse
// @Router       /api/places/{placeId}/groups [get]
func (h *PlaceHandler) Groups(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	out, err := h.groups.PlaceGroups(c.UserContext(), teamID, c.Params("placeId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Quote godoc
// @Summary      Cotizar carrito
// @Description  Recalcula el carrito contra las asignaciones actuales; no escribe nada.
// @Tags         places
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        placeId  path  string                true  "ID del lugar"
// @Param        body     body  dto.CartQuoteRequest  true  "Intenciones de compra"
// @Success      200      {object}  dto.CartQuoteResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/places/{placeId}/cart/quote [post]
func (h *PlaceHandler) Quote(c *fiber.Ctx) error {
	teamID := GetTeamID(c)
	if teamID == "" {
		return unauthorized(c)
	}
	var in dto.CartQuoteRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.quote.Quote(c.UserContext(), teamID, c.Params("placeId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
