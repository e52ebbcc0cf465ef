package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/measure"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo recibos sobre PostgreSQL. Solo INSERT y SELECT.
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador de persistencia para recibos.
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

const receiptColumns = `id, team_id, place_id, cashier_id, payment_method, total_amount, tax_amount,
	amount_given, change_amount, currency, idempotency_key, created_at`

func scanReceipt(row rowScanner) (*entity.Receipt, error) {
	var (
		rc     entity.Receipt
		method string
		key    *string
	)
	err := row.Scan(&rc.ID, &rc.TeamID, &rc.PlaceID, &rc.CashierID, &method, &rc.TotalAmount, &rc.TaxAmount,
		&rc.AmountGiven, &rc.ChangeAmount, &rc.Currency, &key, &rc.CreatedAt)
	if err != nil {
		return nil, err
	}
	rc.PaymentMethod = entity.PaymentMethod(method)
	rc.IdempotencyKey = deref(key)
	return &rc, nil
}

// Create inserta cabecera y líneas. Las líneas van en un pgx.Batch: un solo viaje a la DB.
func (r *ReceiptRepo) Create(ctx context.Context, receipt *entity.Receipt) error {
	header := `
		INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, header,
		receipt.ID, receipt.TeamID, receipt.PlaceID, receipt.CashierID, string(receipt.PaymentMethod),
		receipt.TotalAmount, receipt.TaxAmount, receipt.AmountGiven, receipt.ChangeAmount, receipt.Currency,
		nullable(receipt.IdempotencyKey), receipt.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert receipt", err)
	}
	if len(receipt.Lines) == 0 {
		return nil
	}

	line := `
		INSERT INTO receipt_line_items (id, receipt_id, line_no, item_id, item_name, quantity, measurement_type,
			unit_price, tax_rate_bps, line_total, line_tax)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	batch := &pgx.Batch{}
	for i := range receipt.Lines {
		l := &receipt.Lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.ReceiptID = receipt.ID
		batch.Queue(line, l.ID, receipt.ID, i, l.ItemID, l.ItemName, l.Quantity, string(l.MeasurementType),
			l.UnitPrice, l.TaxRateBps, l.LineTotal, l.LineTax)
	}
	br := r.q.SendBatch(ctx, batch)
	for range receipt.Lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return wrap("insert receipt line", err)
		}
	}
	if err := br.Close(); err != nil {
		return wrap("insert receipt lines", err)
	}
	return nil
}

func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*entity.Receipt, error) {
	rc, err := scanReceipt(r.q.QueryRow(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get receipt", err)
	}
	if err := r.attachLines(ctx, []*entity.Receipt{rc}); err != nil {
		return nil, err
	}
	return rc, nil
}

// ListByPlace página de recibos (más recientes primero) y total del lugar.
func (r *ReceiptRepo) ListByPlace(ctx context.Context, placeID string, limit, offset int) ([]*entity.Receipt, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM receipts WHERE place_id = $1`, placeID).Scan(&total); err != nil {
		return nil, 0, wrap("count receipts", err)
	}
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE place_id = $1
		ORDER BY created_at DESC, id DESC LIMIT NULLIF($2, 0) OFFSET $3`
	list, err := r.query(ctx, query, placeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByPlaceBetween recibos con created_at en [from, to), en orden cronológico.
func (r *ReceiptRepo) ListByPlaceBetween(ctx context.Context, placeID string, from, to time.Time) ([]*entity.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts
		WHERE place_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at, id`
	return r.query(ctx, query, placeID, from, to)
}

// NetSoldQuantity ventas menos devoluciones del artículo en el lugar. Se llama con la asignación
// ya bloqueada, así dos devoluciones concurrentes no descuentan del mismo saldo.
func (r *ReceiptRepo) NetSoldQuantity(ctx context.Context, placeID, itemID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN r.payment_method = 'REFUND' THEN -l.quantity ELSE l.quantity END), 0)::bigint
		FROM receipt_line_items l
		JOIN receipts r ON r.id = l.receipt_id
		WHERE r.place_id = $1 AND l.item_id = $2`
	var net int64
	if err := r.q.QueryRow(ctx, query, placeID, itemID).Scan(&net); err != nil {
		return 0, wrap("net sold quantity", err)
	}
	return net, nil
}

func (r *ReceiptRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Receipt, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list receipts", err)
	}
	list := make([]*entity.Receipt, 0)
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			rows.Close()
			return nil, wrap("scan receipt", err)
		}
		list = append(list, rc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrap("list receipts", err)
	}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachLines carga las líneas de todos los recibos en una sola consulta.
func (r *ReceiptRepo) attachLines(ctx context.Context, receipts []*entity.Receipt) error {
	if len(receipts) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Receipt, len(receipts))
	ids := make([]string, 0, len(receipts))
	for _, rc := range receipts {
		byID[rc.ID] = rc
		ids = append(ids, rc.ID)
	}
	query := `
		SELECT id, receipt_id, item_id, item_name, quantity, measurement_type, unit_price, tax_rate_bps, line_total, line_tax
		FROM receipt_line_items WHERE receipt_id = ANY($1)
		ORDER BY receipt_id, line_no`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return wrap("list receipt lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			l  entity.ReceiptLineItem
			mt string
		)
		if err := rows.Scan(&l.ID, &l.ReceiptID, &l.ItemID, &l.ItemName, &l.Quantity, &mt,
			&l.UnitPrice, &l.TaxRateBps, &l.LineTotal, &l.LineTax); err != nil {
			return wrap("scan receipt line", err)
		}
		l.MeasurementType = measure.Type(mt)
		if rc := byID[l.ReceiptID]; rc != nil {
			rc.Lines = append(rc.Lines, l)
		}
	}
	return rows.Err()
}
