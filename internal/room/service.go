package room

import (
	"context"
	"strings"
)

type CreateRequest struct {
	HotelID          string
	Name             string
	Type             string
	Description      string
	MaxOccupancy     Occupancy
	BedConfiguration BedConfiguration
	SizeSqm          float64
	Amenities        []string
	BasePrice        float64
	TotalInventory   int
}

type UpdateRequest struct {
	Name           *string
	Description    *string
	BasePrice      *float64
	TotalInventory *int
	Amenities      []string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*RoomType, error)
	GetByID(ctx context.Context, id string) (*RoomType, error)
	ListByHotel(ctx context.Context, hotelID string) ([]*RoomType, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*RoomType, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*RoomType, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.BasePrice <= 0 {
		return nil, ErrInvalidPrice
	}

	rt := &RoomType{
		HotelID:          req.HotelID,
		Name:             req.Name,
		Type:             req.Type,
		Description:      req.Description,
		MaxOccupancy:     req.MaxOccupancy,
		BedConfiguration: req.BedConfiguration,
		SizeSqm:          req.SizeSqm,
		Amenities:        req.Amenities,
		BasePrice:        req.BasePrice,
		TotalInventory:   req.TotalInventory,
	}

	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*RoomType, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByHotel(ctx context.Context, hotelID string) ([]*RoomType, error) {
	return s.repo.ListByHotel(ctx, hotelID)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*RoomType, error) {
	rt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		rt.Name = *req.Name
	}
	if req.Description != nil {
		rt.Description = *req.Description
	}
	if req.BasePrice != nil {
		if *req.BasePrice <= 0 {
			return nil, ErrInvalidPrice
		}
		rt.BasePrice = *req.BasePrice
	}
	if req.TotalInventory != nil {
		rt.TotalInventory = *req.TotalInventory
	}
	if req.Amenities != nil {
		rt.Amenities = req.Amenities
	}

	if err := s.repo.Update(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
