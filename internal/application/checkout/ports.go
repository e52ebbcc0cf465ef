package checkout

import (
	"context"
	"time"

	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// Locker bloqueo distribuido de corta duración. Obtain devuelve domain.ErrIdempotencyInProgress
// si otro proceso ya tiene la llave.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// ReceiptPDFGenerator genera la representación imprimible de un recibo.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, receipt *entity.Receipt, place *entity.Place) ([]byte, error)
}

// ReceiptExporter genera un libro de cálculo con los recibos de un lugar.
type ReceiptExporter interface {
	ExportReceipts(ctx context.Context, place *entity.Place, receipts []*entity.Receipt) ([]byte, error)
}
