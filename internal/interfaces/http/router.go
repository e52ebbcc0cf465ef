package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/puntoventa-api/internal/application/analytics"
	"github.com/jhoicas/puntoventa-api/internal/application/auth"
	"github.com/jhoicas/puntoventa-api/internal/application/checkout"
	"github.com/jhoicas/puntoventa-api/internal/application/stock"
	"github.com/jhoicas/puntoventa-api/internal/application/usecase"
	"github.com/jhoicas/puntoventa-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	ItemUC         *usecase.ItemUseCase
	PlaceUC        *usecase.PlaceUseCase
	GroupUC        *usecase.GroupUseCase
	Ledger         *stock.LedgerUseCase
	Checkout       *checkout.CheckoutUseCase
	Receipts       *checkout.ReceiptUseCase
	Quote          *checkout.QuoteUseCase
	Summary        *appanalytics.SummaryUseCase
	JWTSecret      string
	RequestTimeout time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Todas las rutas requieren Bearer Token y rol; cualquier rol puede leer y cobrar.
	protected := api.Group("/",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor),
		RequestTimeout(deps.RequestTimeout),
	)
	stockKeeper := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Users
	users := protected.Group("/users", adminOnly)
	users.Post("/", authHandler.CreateUser)
	users.Get("/", authHandler.ListUsers)
	users.Put("/:id", authHandler.UpdateUser)

	// Items
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC, deps.Ledger, deps.GroupUC)
	items.Get("/groups", itemHandler.Groups)
	items.Post("/box", stockKeeper, itemHandler.SubmitBox)
	items.Post("/", stockKeeper, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", stockKeeper, itemHandler.Update)
	items.Delete("/:id", stockKeeper, itemHandler.Delete)
	items.Post("/:id/deactivate", stockKeeper, itemHandler.Deactivate)
	items.Post("/:id/stock-adjustments", stockKeeper, itemHandler.AdjustStock)
	items.Get("/:id/movements", itemHandler.Movements)

	// Places
	places := protected.Group("/places")
	placeHandler := NewPlaceHandler(deps.PlaceUC, deps.Ledger, deps.GroupUC, deps.Quote)
	places.Post("/", stockKeeper, placeHandler.Create)
	places.Get("/", placeHandler.List)
	places.Get("/:placeId", placeHandler.GetByID)
	places.Put("/:placeId", stockKeeper, placeHandler.Update)
	places.Get("/:placeId/items", placeHandler.Items)
	places.Post("/:placeId/items", stockKeeper, placeHandler.Allocate)
	places.Delete("/:placeId/items", stockKeeper, placeHandler.Deallocate)
	places.Delete("/:placeId/items/:itemId", stockKeeper, placeHandler.DeallocateByPath)
	places.Get("/:placeId/groups", placeHandler.Groups)
	places.Post("/:placeId/cart/quote", placeHandler.Quote)
	places.Get("/:placeId/summary", stockKeeper, NewSummaryHandler(deps.Summary).GetSummary)

	// Receipts (REFUND exige admin; lo decide el caso de uso)
	receipts := protected.Group("/receipts")
	receiptHandler := NewReceiptHandler(deps.Checkout, deps.Receipts)
	receipts.Get("/export", stockKeeper, receiptHandler.Export)
	receipts.Post("/", receiptHandler.Checkout)
	receipts.Get("/", receiptHandler.List)
	receipts.Get("/:id", receiptHandler.GetByID)
	receipts.Get("/:id/pdf", receiptHandler.PDF)
}
