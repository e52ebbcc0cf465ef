package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/grouping"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
)

// GroupUseCase vistas agrupadas por caja. Se recalculan en cada lectura; no hay entidad "caja".
type GroupUseCase struct {
	repos repository.TxRepos
}

// NewGroupUseCase construye el caso de uso.
func NewGroupUseCase(repos repository.TxRepos) *GroupUseCase {
	return &GroupUseCase{repos: repos}
}

// WarehouseGroups agrupa el catálogo del equipo con el stock de bodega.
func (uc *GroupUseCase) WarehouseGroups(ctx context.Context, teamID string, activeOnly bool) ([]dto.GroupResponse, error) {
	items, err := uc.repos.Items.List(ctx, teamID, repository.ItemFilter{ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	members := make([]grouping.Member, 0, len(items))
	for _, it := range items {
		members = append(members, grouping.FromItem(it))
	}
	return dto.GroupsFromDomain(grouping.Build(members)), nil
}

// PlaceGroups agrupa lo asignado a un lugar con la cantidad asignada.
func (uc *GroupUseCase) PlaceGroups(ctx context.Context, teamID, placeID string) ([]dto.GroupResponse, error) {
	place, err := uc.repos.Places.GetByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if place == nil || place.TeamID != teamID {
		return nil, fmt.Errorf("lugar %s: %w", placeID, domain.ErrNotFound)
	}
	assigned, err := uc.repos.Allocations.ListByPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	members := make([]grouping.Member, 0, len(assigned))
	for _, a := range assigned {
		members = append(members, grouping.FromAllocation(a))
	}
	return dto.GroupsFromDomain(grouping.Build(members)), nil
}
