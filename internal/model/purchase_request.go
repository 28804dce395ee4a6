package model

import (
	"time"
)

type RequestStatus string

// Purchase request lifecycle: DRAFT -> SUBMITTED -> APPROVED | REJECTED
const (
	StatusDraft     RequestStatus = "DRAFT"
	StatusSubmitted RequestStatus = "SUBMITTED"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// PurchaseRequest is owned by exactly one user; UserID is fixed at creation.
type PurchaseRequest struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"type:varchar(255);not null" json:"name"`
	Status    RequestStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	UserID    uint          `gorm:"not null;index" json:"userId"`
	User      *User         `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Items     []RequestItem `gorm:"foreignKey:PurchaseRequestID" json:"-"`
	CreatedAt time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// RequestItem links an Item to a PurchaseRequest
type RequestItem struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	PurchaseRequestID uint             `gorm:"not null;uniqueIndex:idx_request_item" json:"purchaseRequestId"`
	PurchaseRequest   *PurchaseRequest `gorm:"foreignKey:PurchaseRequestID" json:"-"`
	ItemID            uint             `gorm:"not null;uniqueIndex:idx_request_item" json:"itemId"`
	Item              *Item            `gorm:"foreignKey:ItemID" json:"-"`
}

// StatusCount is one row of the per-status summary
type StatusCount struct {
	Status RequestStatus
	Count  int64
}
