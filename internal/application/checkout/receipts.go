package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// maxExportRange rango máximo de fechas de una exportación.
const maxExportRange = 366 * 24 * time.Hour

// ReceiptUseCase consultas y documentos de recibos ya emitidos.
type ReceiptUseCase struct {
	repos     repository.TxRepos
	generator ReceiptPDFGenerator
	exporter  ReceiptExporter
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(repos repository.TxRepos, generator ReceiptPDFGenerator, exporter ReceiptExporter) *ReceiptUseCase {
	return &ReceiptUseCase{repos: repos, generator: generator, exporter: exporter}
}

func (uc *ReceiptUseCase) place(ctx context.Context, teamID, placeID string) (*entity.Place, error) {
	if placeID == "" {
		return nil, domain.NewValidationError("placeId", "es obligatorio")
	}
	p, err := uc.repos.Places.GetByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.TeamID != teamID {
		return nil, fmt.Errorf("lugar %s: %w", placeID, domain.ErrNotFound)
	}
	return p, nil
}

func (uc *ReceiptUseCase) receipt(ctx context.Context, teamID, id string) (*entity.Receipt, error) {
	rc, err := uc.repos.Receipts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rc == nil || rc.TeamID != teamID {
		return nil, fmt.Errorf("recibo %s: %w", id, domain.ErrNotFound)
	}
	return rc, nil
}

// maxReceiptPage tope de page; con limit <= dto.MaxLimit el offset no desborda.
const maxReceiptPage = 1_000_000

// List historial paginado del lugar, más recientes primero. page empieza en 1.
func (uc *ReceiptUseCase) List(ctx context.Context, teamID, placeID string, page, limit int) (*dto.ReceiptListResponse, error) {
	if _, err := uc.place(ctx, teamID, placeID); err != nil {
		return nil, err
	}
	page = min(max(page, 1), maxReceiptPage)
	p := dto.PageRequest{Limit: limit}
	p.DefaultPage()
	limit = p.Limit
	offset := (page - 1) * limit
	list, total, err := uc.repos.Receipts.ListByPlace(ctx, placeID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReceiptResponse, 0, len(list))
	for _, rc := range list {
		items = append(items, dto.ReceiptFromEntity(rc))
	}
	return &dto.ReceiptListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Page: page, Total: total},
	}, nil
}

// Get recibo por ID dentro del equipo.
func (uc *ReceiptUseCase) Get(ctx context.Context, teamID, id string) (*dto.ReceiptResponse, error) {
	rc, err := uc.receipt(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	out := dto.ReceiptFromEntity(rc)
	return &out, nil
}

// PDF genera el comprobante imprimible del recibo.
func (uc *ReceiptUseCase) PDF(ctx context.Context, teamID, id string) (pdfBytes []byte, filename string, err error) {
	rc, err := uc.receipt(ctx, teamID, id)
	if err != nil {
		return nil, "", err
	}
	p, err := uc.place(ctx, teamID, rc.PlaceID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateReceiptPDF(ctx, rc, p)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("recibo_%s.pdf", rc.ID), nil
}

// Export recibos del lugar con created_at en [from, to) como XLSX.
func (uc *ReceiptUseCase) Export(ctx context.Context, teamID, placeID string, from, to time.Time) ([]byte, string, error) {
	if !to.After(from) {
		return nil, "", domain.NewValidationError("to", "debe ser posterior a from")
	}
	if to.Sub(from) > maxExportRange {
		return nil, "", domain.NewValidationError("to", "el rango no puede superar un año")
	}
	p, err := uc.place(ctx, teamID, placeID)
	if err != nil {
		return nil, "", err
	}
	list, err := uc.repos.Receipts.ListByPlaceBetween(ctx, placeID, from, to)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.exporter.ExportReceipts(ctx, p, list)
	if err != nil {
		return nil, "", fmt.Errorf("xlsx: exportación fallida: %w", err)
	}
	name := fmt.Sprintf("recibos_%s_%s_%s.xlsx", p.ID, from.Format("20060102"), to.Format("20060102"))
	return data, name, nil
}
