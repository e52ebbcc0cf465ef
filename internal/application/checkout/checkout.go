// Package checkout convierte asignaciones de un lugar en recibos inmutables. Es la única
// autoridad de precios: el carrito del cliente llega como intenciones (artículo, cantidad).
package checkout

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/pricing"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
	"github.com/jhoicas/puntoventa-api/pkg/jwt"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

const maxIdempotencyKeyLen = 128

// errKeyTaken la llave de idempotencia se insertó en otra transacción mientras corría esta.
var errKeyTaken = errors.New("checkout: llave de idempotencia tomada")

// Cashier identidad de quien cobra, tomada del token.
type Cashier struct {
	TeamID string
	UserID string
	Role   string
}

// Result recibo creado o, si Replayed, el recibo original de un reintento.
type Result struct {
	Receipt  dto.ReceiptResponse
	Replayed bool
}

// CheckoutUseCase procesa cobros y devoluciones en una sola transacción.
type CheckoutUseCase struct {
	txRunner TxRunner
	repos    repository.TxRepos
	locker   Locker
	lockTTL  time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// NewCheckoutUseCase construye el caso de uso. locker puede ser nil: la fila única de la llave
// de idempotencia sigue serializando los duplicados.
func NewCheckoutUseCase(txRunner TxRunner, repos repository.TxRepos, locker Locker, lockTTL time.Duration, log *logger.Logger) *CheckoutUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &CheckoutUseCase{txRunner: txRunner, repos: repos, locker: locker, lockTTL: lockTTL, log: log, now: time.Now}
}

type line struct {
	itemID   string
	quantity int64
	pos      int // índice de la primera aparición en la petición
}

type request struct {
	placeID     string
	method      entity.PaymentMethod
	amountGiven decimal.Decimal
	lines       []line // orden de primera aparición, sin repetidos
}

// normalize valida la entrada y une las líneas repetidas del mismo artículo.
func normalize(c Cashier, in dto.CheckoutRequest) (*request, error) {
	placeID := strings.TrimSpace(in.PlaceID)
	if placeID == "" {
		return nil, domain.NewValidationError("placeId", "es obligatorio")
	}
	method := entity.PaymentMethod(strings.ToUpper(strings.TrimSpace(in.PaymentOption)))
	if !method.Valid() {
		return nil, domain.NewValidationError("paymentOption", "debe ser CASH, CARD o REFUND")
	}
	if method == entity.PaymentRefund && c.Role != jwt.RoleAdmin {
		return nil, fmt.Errorf("devolución: %w", domain.ErrForbidden)
	}
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "debe incluir al menos una línea")
	}

	req := &request{placeID: placeID, method: method}
	index := make(map[string]int, len(in.Items))
	for i, it := range in.Items {
		id := strings.TrimSpace(it.ItemID)
		if id == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].itemId", i), "es obligatorio")
		}
		if it.Quantity <= 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor a cero")
		}
		if j, ok := index[id]; ok {
			if req.lines[j].quantity > math.MaxInt64-it.Quantity {
				return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "cantidad fuera de rango")
			}
			req.lines[j].quantity += it.Quantity
			continue
		}
		index[id] = len(req.lines)
		req.lines = append(req.lines, line{itemID: id, quantity: it.Quantity, pos: i})
	}

	if in.AmountGiven != nil && in.AmountGiven.IsNegative() {
		return nil, domain.NewValidationError("amountGiven", "no puede ser negativo")
	}
	if method == entity.PaymentCash {
		if in.AmountGiven == nil {
			return nil, domain.NewValidationError("amountGiven", "es obligatorio para pagos en efectivo")
		}
		req.amountGiven = *in.AmountGiven
	}
	return req, nil
}

// fingerprint huella estable de la petición normalizada; liga la llave de idempotencia a un único cuerpo.
func (r *request) fingerprint() string {
	parts := make([]string, 0, len(r.lines))
	for _, l := range r.lines {
		parts = append(parts, fmt.Sprintf("%s:%d", l.itemID, l.quantity))
	}
	sort.Strings(parts)
	raw := strings.Join([]string{r.placeID, string(r.method), r.amountGiven.String(), strings.Join(parts, ",")}, "|")
	sum := blake2b.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Checkout ejecuta el cobro: bloquea las asignaciones del lugar en orden de artículo, verifica
// que todas alcancen, congela precio e impuesto de cada artículo, aplica la regla de pago,
// descuenta (o en REFUND devuelve) las asignaciones y guarda el recibo. Todo o nada.
//
// Con idempotencyKey, un reintento con el mismo cuerpo devuelve el recibo original sin tocar
// stock y un cuerpo distinto con la misma llave es ErrConflict.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, c Cashier, idempotencyKey string, in dto.CheckoutRequest) (*Result, error) {
	req, err := normalize(c, in)
	if err != nil {
		return nil, err
	}
	key := strings.TrimSpace(idempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		return nil, domain.NewValidationError("Idempotency-Key", fmt.Sprintf("máximo %d caracteres", maxIdempotencyKeyLen))
	}
	fp := req.fingerprint()

	if key != "" {
		if res, err := uc.replay(ctx, uc.repos, c.TeamID, key, fp); res != nil || err != nil {
			return res, err
		}
		if uc.locker != nil {
			release, err := uc.locker.Obtain(ctx, "checkout:"+c.TeamID+":"+key, uc.lockTTL)
			if err != nil {
				return nil, err
			}
			defer release()
		}
	}

	place, err := uc.repos.Places.GetByID(ctx, req.placeID)
	if err != nil {
		return nil, err
	}
	if place == nil || place.TeamID != c.TeamID {
		return nil, fmt.Errorf("lugar %s: %w", req.placeID, domain.ErrNotFound)
	}
	if !place.Active {
		return nil, domain.NewValidationError("placeId", "el lugar está inactivo")
	}

	var (
		receipt *entity.Receipt
		replay  *Result
	)
	err = uc.txRunner.Run(ctx, func(r repository.TxRepos) error {
		if key != "" {
			res, err := uc.replay(ctx, r, c.TeamID, key, fp)
			if err != nil {
				return err
			}
			if res != nil {
				replay = res
				return nil
			}
		}
		receiptID := uuid.New().String()
		if key != "" {
			// La fila única va primero: un duplicado concurrente espera aquí, antes de bloquear stock.
			if err := r.Idempotency.Create(ctx, &entity.IdempotencyRecord{
				TeamID:      c.TeamID,
				Key:         key,
				Fingerprint: fp,
				ReceiptID:   receiptID,
				CreatedAt:   uc.now(),
			}); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					return errKeyTaken
				}
				return err
			}
		}
		rc, err := uc.apply(ctx, r, c, place, req, receiptID)
		if err != nil {
			return err
		}
		rc.IdempotencyKey = key
		if err := r.Receipts.Create(ctx, rc); err != nil {
			return err
		}
		receipt = rc
		return nil
	})
	if errors.Is(err, errKeyTaken) {
		// Otra petición con la misma llave confirmó primero.
		res, rerr := uc.replay(ctx, uc.repos, c.TeamID, key, fp)
		if rerr != nil {
			return nil, rerr
		}
		if res != nil {
			return res, nil
		}
		return nil, domain.ErrIdempotencyInProgress
	}
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	uc.log.Info().Str("team_id", c.TeamID).Str("user_id", c.UserID).Str("place_id", place.ID).
		Str("receipt_id", receipt.ID).Str("payment", string(receipt.PaymentMethod)).
		Str("total", receipt.TotalAmount.StringFixed(2)).Int("lines", len(receipt.Lines)).Msg("recibo registrado")
	return &Result{Receipt: dto.ReceiptFromEntity(receipt)}, nil
}

// replay busca un recibo previo para la llave. (nil, nil) si la llave no se ha usado.
func (uc *CheckoutUseCase) replay(ctx context.Context, r repository.TxRepos, teamID, key, fp string) (*Result, error) {
	rec, err := r.Idempotency.Get(ctx, teamID, key)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.Fingerprint != fp {
		return nil, fmt.Errorf("%w: la llave de idempotencia ya se usó con otro cobro", domain.ErrConflict)
	}
	rc, err := r.Receipts.GetByID(ctx, rec.ReceiptID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, fmt.Errorf("recibo %s de la llave %s: %w", rec.ReceiptID, key, domain.ErrNotFound)
	}
	return &Result{Receipt: dto.ReceiptFromEntity(rc), Replayed: true}, nil
}

// apply corre dentro de la transacción: bloqueos, verificación, precios, pago y escrituras.
// El recibo se devuelve sin persistir; los movimientos ya quedan escritos.
func (uc *CheckoutUseCase) apply(ctx context.Context, r repository.TxRepos, c Cashier, place *entity.Place, req *request, receiptID string) (*entity.Receipt, error) {
	refund := req.method == entity.PaymentRefund

	// Orden de bloqueo ascendente por artículo: dos cajas concurrentes no se bloquean mutuamente.
	order := make([]int, len(req.lines))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return req.lines[order[a]].itemID < req.lines[order[b]].itemID })

	allocs := make([]*entity.PlaceAllocation, len(req.lines))
	items := make([]*entity.Item, len(req.lines))
	for _, i := range order {
		l := req.lines[i]
		it, err := r.Items.GetByID(ctx, l.itemID)
		if err != nil {
			return nil, err
		}
		if it == nil || it.TeamID != c.TeamID {
			return nil, fmt.Errorf("artículo %s: %w", l.itemID, domain.ErrNotFound)
		}
		if !it.Active && !refund {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].itemId", l.pos), "el artículo está inactivo")
		}
		items[i] = it

		var a *entity.PlaceAllocation
		if refund {
			a, err = r.Allocations.EnsureForUpdate(ctx, place.ID, l.itemID)
		} else {
			a, err = r.Allocations.GetForUpdate(ctx, place.ID, l.itemID)
		}
		if err != nil {
			return nil, err
		}
		available := int64(0)
		if a != nil {
			available = a.AllocatedQuantity
		}
		if !refund && available < l.quantity {
			return nil, &domain.InsufficientStockError{ItemID: l.itemID, Requested: l.quantity, Available: available}
		}
		if refund {
			// Con la asignación bloqueada, el saldo vendido no cambia hasta el commit.
			sold, err := r.Receipts.NetSoldQuantity(ctx, place.ID, l.itemID)
			if err != nil {
				return nil, err
			}
			if l.quantity > sold {
				return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", l.pos),
					fmt.Sprintf("supera lo vendido en el lugar (%d)", max(sold, 0)))
			}
			if available > math.MaxInt64-l.quantity {
				return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", l.pos), "cantidad fuera de rango")
			}
		}
		allocs[i] = a
	}

	now := uc.now()
	rc := &entity.Receipt{
		ID:            receiptID,
		TeamID:        c.TeamID,
		PlaceID:       place.ID,
		CashierID:     c.UserID,
		PaymentMethod: req.method,
		Currency:      place.Currency,
		CreatedAt:     now,
	}
	priced := make([]pricing.Line, 0, len(req.lines))
	for i, l := range req.lines {
		it := items[i]
		pl := pricing.Compute(it.Price, l.quantity, it.MeasurementType, it.TaxRateBps)
		if refund {
			pl = pl.Negate()
		}
		priced = append(priced, pl)
		rc.Lines = append(rc.Lines, entity.ReceiptLineItem{
			ID:              uuid.New().String(),
			ReceiptID:       rc.ID,
			ItemID:          it.ID,
			ItemName:        it.Name,
			Quantity:        l.quantity,
			MeasurementType: it.MeasurementType,
			UnitPrice:       it.Price,
			TaxRateBps:      it.TaxRateBps,
			LineTotal:       pl.Total,
			LineTax:         pl.Tax,
		})
	}
	totals := pricing.Sum(priced...)
	rc.TotalAmount, rc.TaxAmount = totals.Total, totals.Tax

	switch req.method {
	case entity.PaymentCash:
		if req.amountGiven.LessThan(rc.TotalAmount) {
			return nil, fmt.Errorf("%w: total %s, entregado %s", domain.ErrInsufficientPayment,
				rc.TotalAmount.StringFixed(2), req.amountGiven.StringFixed(2))
		}
		rc.AmountGiven = req.amountGiven
		rc.ChangeAmount = req.amountGiven.Sub(rc.TotalAmount)
	default:
		rc.AmountGiven = rc.TotalAmount
		rc.ChangeAmount = decimal.Zero
	}

	movementType, sign := entity.MovementSale, int64(-1)
	if refund {
		movementType, sign = entity.MovementRefund, 1
	}
	for _, i := range order {
		l := req.lines[i]
		a := allocs[i]
		if err := r.Allocations.SetQuantity(ctx, a.ID, a.AllocatedQuantity+sign*l.quantity); err != nil {
			return nil, err
		}
	}
	for _, l := range req.lines {
		if err := r.Movements.Create(ctx, &entity.StockMovement{
			TeamID:          c.TeamID,
			ItemID:          l.itemID,
			PlaceID:         place.ID,
			Type:            movementType,
			AllocationDelta: sign * l.quantity,
			ReferenceID:     rc.ID,
			CreatedBy:       c.UserID,
			CreatedAt:       now,
		}); err != nil {
			return nil, err
		}
	}
	return rc, nil
}
