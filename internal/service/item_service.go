package service

import (
	"context"
	"fmt"
	"strings"

	"buyinbuyout/internal/model"
	"buyinbuyout/internal/repository"
	"buyinbuyout/pkg/apperror"

	"github.com/shopspring/decimal"
)

type CreateItemRequest struct {
	ItemName string          `json:"itemName" binding:"required"`
	ItemCost decimal.Decimal `json:"itemCost"`
}

type ItemResponse struct {
	ID   uint            `json:"id"`
	Name string          `json:"name"`
	Cost decimal.Decimal `json:"cost"`
}

type ItemService interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResponse, error)
}

type itemService struct {
	repo repository.ItemRepository
}

func NewItemService(repo repository.ItemRepository) ItemService {
	return &itemService{repo: repo}
}

func (s *itemService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	name := strings.TrimSpace(req.ItemName)
	if name == "" {
		return nil, apperror.BadRequest("Missing item name")
	}
	if req.ItemCost.IsNegative() {
		return nil, apperror.BadRequest("Item cost must not be negative")
	}

	item := model.Item{
		Name: name,
		Cost: req.ItemCost.Round(2),
	}
	if err := s.repo.Create(ctx, &item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return &ItemResponse{ID: item.ID, Name: item.Name, Cost: item.Cost}, nil
}
