package model

import (
	"time"
)

const (
	ChangeApproved = "Purchase request changed to approved"
	ChangeRejected = "Purchase request changed to rejected"
)

// ApprovalHistory is the append-only trail of approve/reject decisions
type ApprovalHistory struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	PurchaseRequestID uint             `gorm:"not null;index" json:"purchaseRequestId"`
	PurchaseRequest   *PurchaseRequest `gorm:"foreignKey:PurchaseRequestID" json:"-"`
	ChangedBy         *uint            `gorm:"index" json:"changedBy"`
	Change            string           `gorm:"type:text;not null" json:"change"`
	CreatedAt         time.Time        `gorm:"index" json:"timestamp"`
}

func (ApprovalHistory) TableName() string {
	return "approval_history"
}
