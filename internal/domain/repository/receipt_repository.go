package repository

import (
	"context"
	"time"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
)

// ReceiptRepository define el puerto de persistencia para recibos. Solo inserción y lectura:
// un recibo nunca se modifica ni se elimina.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	GetByID(ctx context.Context, id string) (*entity.Receipt, error)
	// ListByPlace devuelve la página solicitada (más recientes primero) y el total de recibos del lugar.
	ListByPlace(ctx context.Context, placeID string, limit, offset int) ([]*entity.Receipt, int, error)
	// ListByPlaceBetween recibos del lugar con created_at en [from, to).
	ListByPlaceBetween(ctx context.Context, placeID string, from, to time.Time) ([]*entity.Receipt, error)
	// NetSoldQuantity unidades canónicas vendidas del artículo en el lugar menos las ya devueltas.
	NetSoldQuantity(ctx context.Context, placeID, itemID string) (int64, error)
}
