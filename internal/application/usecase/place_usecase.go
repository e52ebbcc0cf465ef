package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// PlaceUseCase casos de uso CRUD para lugares de venta.
type PlaceUseCase struct {
	repo repository.PlaceRepository
}

// NewPlaceUseCase construye el caso de uso.
func NewPlaceUseCase(repo repository.PlaceRepository) *PlaceUseCase {
	return &PlaceUseCase{repo: repo}
}

// parseCurrency valida un código ISO 4217 ("eur" -> "EUR"). La moneda solo se muestra, no se convierte.
func parseCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", domain.NewValidationError("currency", fmt.Sprintf("moneda ISO 4217 desconocida %q", code))
	}
	return unit.String(), nil
}

// Create crea un lugar activo.
func (uc *PlaceUseCase) Create(ctx context.Context, teamID string, in dto.CreatePlaceRequest) (*dto.PlaceResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "es obligatorio")
	}
	cur, err := parseCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	place := &entity.Place{
		ID:        uuid.New().String(),
		TeamID:    teamID,
		Name:      name,
		Currency:  cur,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, place); err != nil {
		return nil, err
	}
	out := dto.PlaceFromEntity(place)
	return &out, nil
}

func (uc *PlaceUseCase) owned(ctx context.Context, teamID, id string) (*entity.Place, error) {
	place, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if place == nil || place.TeamID != teamID {
		return nil, fmt.Errorf("lugar %s: %w", id, domain.ErrNotFound)
	}
	return place, nil
}

// GetByID obtiene un lugar del equipo.
func (uc *PlaceUseCase) GetByID(ctx context.Context, teamID, id string) (*dto.PlaceResponse, error) {
	place, err := uc.owned(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	out := dto.PlaceFromEntity(place)
	return &out, nil
}

// Update actualiza un lugar.
func (uc *PlaceUseCase) Update(ctx context.Context, teamID, id string, in dto.UpdatePlaceRequest) (*dto.PlaceResponse, error) {
	place, err := uc.owned(ctx, teamID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "no puede quedar vacío")
		}
		place.Name = name
	}
	if in.Currency != nil {
		cur, err := parseCurrency(*in.Currency)
		if err != nil {
			return nil, err
		}
		place.Currency = cur
	}
	if in.Active != nil {
		place.Active = *in.Active
	}
	place.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, place); err != nil {
		return nil, err
	}
	out := dto.PlaceFromEntity(place)
	return &out, nil
}

// List lista lugares del equipo con paginación.
func (uc *PlaceUseCase) List(ctx context.Context, teamID string, limit, offset int) (*dto.PlaceListResponse, error) {
	list, err := uc.repo.ListByTeam(ctx, teamID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PlaceResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.PlaceFromEntity(p))
	}
	return &dto.PlaceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}
