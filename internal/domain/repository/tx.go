package repository

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Items       ItemRepository
	Places      PlaceRepository
	Allocations AllocationRepository
	Receipts    ReceiptRepository
	Idempotency IdempotencyRepository
	Movements   StockMovementRepository
	Users       UserRepository
}
