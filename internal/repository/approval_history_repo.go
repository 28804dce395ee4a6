package repository

import (
	"context"

	"buyinbuyout/internal/model"

	"gorm.io/gorm"
)

type ApprovalHistoryRepository interface {
	Append(ctx context.Context, entry *model.ApprovalHistory) error
	ListByRequest(ctx context.Context, purchaseRequestID uint, offset, limit int) ([]model.ApprovalHistory, int64, error)
}

type approvalHistoryRepository struct {
	db *gorm.DB
}

func NewApprovalHistoryRepository(db *gorm.DB) ApprovalHistoryRepository {
	return &approvalHistoryRepository{db: db}
}

func (r *approvalHistoryRepository) Append(ctx context.Context, entry *model.ApprovalHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *approvalHistoryRepository) ListByRequest(ctx context.Context, purchaseRequestID uint, offset, limit int) ([]model.ApprovalHistory, int64, error) {
	var entries []model.ApprovalHistory
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ApprovalHistory{}).
		Where("purchase_request_id = ?", purchaseRequestID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Where("purchase_request_id = ?", purchaseRequestID).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
