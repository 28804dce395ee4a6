package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buyinbuyout/internal/metrics"
	"buyinbuyout/internal/model"
	"buyinbuyout/internal/repository"
	"buyinbuyout/pkg/apperror"
	"buyinbuyout/pkg/pagination"

	"gorm.io/gorm"
)

const (
	msgRequestNotFound = "Purchase request not found."
	msgItemNotFound    = "Item not found."
	msgForbidden       = "Forbidden"
)

// --- DTOs ---

// CreatePurchaseRequestDTO; a blank name is rejected by the service
type CreatePurchaseRequestDTO struct {
	Name string `json:"name"`
	Item *uint  `json:"item"`
}

// UpdatePurchaseRequestDTO fields left empty are not touched
type UpdatePurchaseRequestDTO struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type RequestItemResponse struct {
	PurchaseRequestID uint `json:"purchaseRequestId"`
	ItemID            uint `json:"itemId"`
}

type PurchaseRequestResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Status      model.RequestStatus  `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	RequestItem *RequestItemResponse `json:"requestItem,omitempty"`
}

type ApprovalHistoryResponse struct {
	ID                uint      `json:"id"`
	PurchaseRequestID uint      `json:"purchaseRequestId"`
	ChangedBy         *uint     `json:"changedBy"`
	Change            string    `json:"change"`
	Timestamp         time.Time `json:"timestamp"`
}

// StatusNotifier receives committed status changes. Implementations must not block.
type StatusNotifier interface {
	NotifyStatusChange(event model.StatusChangeEvent)
}

// --- Interface ---

type PurchaseRequestService interface {
	Create(ctx context.Context, ownerID uint, req CreatePurchaseRequestDTO) (*PurchaseRequestResponse, error)
	ListMine(ctx context.Context, ownerID uint) ([]PurchaseRequestResponse, error)
	GetMine(ctx context.Context, id, ownerID uint) (*PurchaseRequestResponse, error)
	UpdateMine(ctx context.Context, id, ownerID uint, req UpdatePurchaseRequestDTO) (*PurchaseRequestResponse, error)
	Submit(ctx context.Context, id, ownerID uint) (*PurchaseRequestResponse, error)
	Approve(ctx context.Context, id, callerID uint) (*PurchaseRequestResponse, error)
	Reject(ctx context.Context, id, callerID uint) (*PurchaseRequestResponse, error)
	Summary(ctx context.Context) (map[string]int64, error)
	History(ctx context.Context, id, callerID uint, page pagination.Params) ([]ApprovalHistoryResponse, int64, error)
}

type purchaseRequestService struct {
	requests repository.PurchaseRequestRepository
	users    repository.UserRepository
	items    repository.ItemRepository
	history  repository.ApprovalHistoryRepository
	tx       repository.TransactionManager
	notifier StatusNotifier
	now      func() time.Time
}

func NewPurchaseRequestService(
	requests repository.PurchaseRequestRepository,
	users repository.UserRepository,
	items repository.ItemRepository,
	history repository.ApprovalHistoryRepository,
	tx repository.TransactionManager,
	notifier StatusNotifier,
) PurchaseRequestService {
	return &purchaseRequestService{
		requests: requests,
		users:    users,
		items:    items,
		history:  history,
		tx:       tx,
		notifier: notifier,
		now:      time.Now,
	}
}

// --- Implementation ---

func (s *purchaseRequestService) Create(ctx context.Context, ownerID uint, req CreatePurchaseRequestDTO) (*PurchaseRequestResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.BadRequest("Missing name")
	}

	pr := model.PurchaseRequest{
		Name:   name,
		Status: model.StatusDraft,
		UserID: ownerID,
	}
	var link *model.RequestItem

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if req.Item != nil {
			ok, err := s.items.Exists(txCtx, *req.Item)
			if err != nil {
				return fmt.Errorf("failed to look up item: %w", err)
			}
			if !ok {
				return apperror.NotFound(msgItemNotFound)
			}
		}

		if err := s.requests.Create(txCtx, &pr); err != nil {
			return fmt.Errorf("failed to create purchase request: %w", err)
		}

		if req.Item != nil {
			link = &model.RequestItem{PurchaseRequestID: pr.ID, ItemID: *req.Item}
			if err := s.requests.CreateRequestItem(txCtx, link); err != nil {
				return fmt.Errorf("failed to link item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toPurchaseRequestResponse(&pr)
	if link != nil {
		resp.RequestItem = &RequestItemResponse{PurchaseRequestID: link.PurchaseRequestID, ItemID: link.ItemID}
	}
	return &resp, nil
}

func (s *purchaseRequestService) ListMine(ctx context.Context, ownerID uint) ([]PurchaseRequestResponse, error) {
	requests, err := s.requests.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase requests: %w", err)
	}

	result := make([]PurchaseRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, toPurchaseRequestResponse(&requests[i]))
	}
	return result, nil
}

func (s *purchaseRequestService) GetMine(ctx context.Context, id, ownerID uint) (*PurchaseRequestResponse, error) {
	pr, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	resp := toPurchaseRequestResponse(pr)
	return &resp, nil
}

// UpdateMine patches name and/or status. Status is checked against the known
// values but the transition itself is not validated.
func (s *purchaseRequestService) UpdateMine(ctx context.Context, id, ownerID uint, req UpdatePurchaseRequestDTO) (*PurchaseRequestResponse, error) {
	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	status := model.RequestStatus(req.Status)
	if req.Status != "" {
		if !status.Valid() {
			return nil, apperror.BadRequest("Invalid status.")
		}
		fields["status"] = status
	}

	if len(fields) > 0 {
		affected, err := s.requests.UpdateOwned(ctx, id, ownerID, fields)
		if err != nil {
			return nil, fmt.Errorf("failed to update purchase request: %w", err)
		}
		if affected == 0 {
			return nil, apperror.NotFound(msgRequestNotFound)
		}
	}

	pr, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if _, ok := fields["status"]; ok {
		s.notify(pr, ownerID)
	}
	resp := toPurchaseRequestResponse(pr)
	return &resp, nil
}

// Submit moves an owned request to SUBMITTED regardless of its current status
func (s *purchaseRequestService) Submit(ctx context.Context, id, ownerID uint) (*PurchaseRequestResponse, error) {
	if _, err := s.findOwned(ctx, id, ownerID); err != nil {
		return nil, err
	}

	if err := s.requests.UpdateStatus(ctx, id, model.StatusSubmitted); err != nil {
		return nil, fmt.Errorf("failed to submit purchase request: %w", err)
	}

	pr, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	s.notify(pr, ownerID)
	resp := toPurchaseRequestResponse(pr)
	return &resp, nil
}

func (s *purchaseRequestService) Approve(ctx context.Context, id, callerID uint) (*PurchaseRequestResponse, error) {
	return s.decide(ctx, id, callerID, model.StatusApproved, model.ChangeApproved)
}

func (s *purchaseRequestService) Reject(ctx context.Context, id, callerID uint) (*PurchaseRequestResponse, error) {
	return s.decide(ctx, id, callerID, model.StatusRejected, model.ChangeRejected)
}

// decide applies an approver decision to any user's request and appends one history row
func (s *purchaseRequestService) decide(ctx context.Context, id, callerID uint, status model.RequestStatus, change string) (*PurchaseRequestResponse, error) {
	isApprover, err := s.isApprover(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !isApprover {
		return nil, apperror.Forbidden(msgForbidden)
	}

	var pr *model.PurchaseRequest
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.requests.FindByID(txCtx, id); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound(msgRequestNotFound)
			}
			return fmt.Errorf("failed to load purchase request: %w", findErr)
		}

		if updateErr := s.requests.UpdateStatus(txCtx, id, status); updateErr != nil {
			return fmt.Errorf("failed to update purchase request status: %w", updateErr)
		}

		actor := callerID
		entry := &model.ApprovalHistory{
			PurchaseRequestID: id,
			ChangedBy:         &actor,
			Change:            change,
		}
		if historyErr := s.history.Append(txCtx, entry); historyErr != nil {
			return fmt.Errorf("failed to write approval history: %w", historyErr)
		}

		updated, reloadErr := s.requests.FindByID(txCtx, id)
		if reloadErr != nil {
			return fmt.Errorf("failed to reload purchase request: %w", reloadErr)
		}
		pr = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(pr, callerID)
	resp := toPurchaseRequestResponse(pr)
	return &resp, nil
}

func (s *purchaseRequestService) Summary(ctx context.Context) (map[string]int64, error) {
	rows, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise purchase requests: %w", err)
	}

	summary := make(map[string]int64, len(rows))
	for _, r := range rows {
		summary[string(r.Status)] = r.Count
	}
	return summary, nil
}

// History lists decisions on a request; visible to its owner and to approvers
func (s *purchaseRequestService) History(ctx context.Context, id, callerID uint, page pagination.Params) ([]ApprovalHistoryResponse, int64, error) {
	pr, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperror.NotFound(msgRequestNotFound)
		}
		return nil, 0, fmt.Errorf("failed to load purchase request: %w", err)
	}

	if pr.UserID != callerID {
		isApprover, err := s.isApprover(ctx, callerID)
		if err != nil {
			return nil, 0, err
		}
		if !isApprover {
			return nil, 0, apperror.NotFound(msgRequestNotFound)
		}
	}

	entries, total, err := s.history.ListByRequest(ctx, id, page.Offset, page.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list approval history: %w", err)
	}

	result := make([]ApprovalHistoryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, ApprovalHistoryResponse{
			ID:                e.ID,
			PurchaseRequestID: e.PurchaseRequestID,
			ChangedBy:         e.ChangedBy,
			Change:            e.Change,
			Timestamp:         e.CreatedAt,
		})
	}
	return result, total, nil
}

func (s *purchaseRequestService) findOwned(ctx context.Context, id, ownerID uint) (*model.PurchaseRequest, error) {
	pr, err := s.requests.FindOwned(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgRequestNotFound)
		}
		return nil, fmt.Errorf("failed to load purchase request: %w", err)
	}
	return pr, nil
}

// isApprover treats an unknown caller as not an approver
func (s *purchaseRequestService) isApprover(ctx context.Context, userID uint) (bool, error) {
	role, err := s.users.GetRole(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load caller role: %w", err)
	}
	return role.IsApprover(), nil
}

func (s *purchaseRequestService) notify(pr *model.PurchaseRequest, actorID uint) {
	metrics.RecordStatusChange(string(pr.Status))
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyStatusChange(model.StatusChangeEvent{
		Type:              model.EventStatusChanged,
		PurchaseRequestID: pr.ID,
		OwnerID:           pr.UserID,
		Status:            pr.Status,
		ActorID:           actorID,
		OccurredAt:        s.now(),
	})
}

func toPurchaseRequestResponse(pr *model.PurchaseRequest) PurchaseRequestResponse {
	return PurchaseRequestResponse{
		ID:        pr.ID,
		Name:      pr.Name,
		Status:    pr.Status,
		CreatedAt: pr.CreatedAt,
		UpdatedAt: pr.UpdatedAt,
	}
}
