package dto

import "time"

// CreatePlaceRequest entrada para crear un lugar de venta.
type CreatePlaceRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Currency string `json:"currency" validate:"required,len=3"`
}

// UpdatePlaceRequest entrada para actualizar un lugar.
type UpdatePlaceRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Currency *string `json:"currency" validate:"omitempty,len=3"`
	Active   *bool   `json:"active"`
}

// PlaceResponse salida de un lugar.
type PlaceResponse struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlaceListResponse lista paginada de lugares.
type PlaceListResponse struct {
	Items []PlaceResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
