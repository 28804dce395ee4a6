package repository

import (
	"context"

	"buyinbuyout/internal/model"

	"gorm.io/gorm"
)

// PurchaseRequestRepository persists purchase requests and their item links
type PurchaseRequestRepository interface {
	Create(ctx context.Context, req *model.PurchaseRequest) error
	CreateRequestItem(ctx context.Context, link *model.RequestItem) error
	FindByID(ctx context.Context, id uint) (*model.PurchaseRequest, error)
	FindOwned(ctx context.Context, id, ownerID uint) (*model.PurchaseRequest, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.PurchaseRequest, error)
	UpdateOwned(ctx context.Context, id, ownerID uint, fields map[string]interface{}) (int64, error)
	UpdateStatus(ctx context.Context, id uint, status model.RequestStatus) error
	CountByStatus(ctx context.Context) ([]model.StatusCount, error)
}

type purchaseRequestRepository struct {
	db *gorm.DB
}

func NewPurchaseRequestRepository(db *gorm.DB) PurchaseRequestRepository {
	return &purchaseRequestRepository{db: db}
}

func (r *purchaseRequestRepository) Create(ctx context.Context, req *model.PurchaseRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *purchaseRequestRepository) CreateRequestItem(ctx context.Context, link *model.RequestItem) error {
	return GetDB(ctx, r.db).Create(link).Error
}

func (r *purchaseRequestRepository) FindByID(ctx context.Context, id uint) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *purchaseRequestRepository) FindOwned(ctx context.Context, id, ownerID uint) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, ownerID).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *purchaseRequestRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.PurchaseRequest, error) {
	var requests []model.PurchaseRequest
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// UpdateOwned applies fields to the row matching both id and owner, returning the matched row count
func (r *purchaseRequestRepository) UpdateOwned(ctx context.Context, id, ownerID uint, fields map[string]interface{}) (int64, error) {
	result := GetDB(ctx, r.db).
		Model(&model.PurchaseRequest{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *purchaseRequestRepository) UpdateStatus(ctx context.Context, id uint, status model.RequestStatus) error {
	return GetDB(ctx, r.db).
		Model(&model.PurchaseRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *purchaseRequestRepository) CountByStatus(ctx context.Context) ([]model.StatusCount, error) {
	var rows []model.StatusCount
	if err := GetDB(ctx, r.db).
		Model(&model.PurchaseRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
