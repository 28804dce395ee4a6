package model

import "time"

// StatusChangeEvent is pushed after a committed status change to the request
// owner and to approvers
type StatusChangeEvent struct {
	Type              string        `json:"type"`
	PurchaseRequestID uint          `json:"purchaseRequestId"`
	OwnerID           uint          `json:"ownerId"`
	Status            RequestStatus `json:"status"`
	ActorID           uint          `json:"actorId"`
	OccurredAt        time.Time     `json:"occurredAt"`
}

const EventStatusChanged = "purchase_request.status_changed"
