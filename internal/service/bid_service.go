package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/haulbridge/freight-tasks/internal/model"
	"github.com/haulbridge/freight-tasks/internal/repository"
)

type BidService struct {
	bids  *repository.BidRepository
	tasks *repository.TaskRepository
}

func NewBidService(bids *repository.BidRepository, tasks *repository.TaskRepository) *BidService {
	return &BidService{bids: bids, tasks: tasks}
}

type SubmitBidInput struct {
	TaskID  uint
	Amount  float64
	Message *string
}

// SubmitBid creates a PENDING bid for the calling carrier. The duplicate
// check is the unique index on (task_id, carrier_id); an application-level
// pre-read would race against concurrent submissions.
func (s *BidService) SubmitBid(ctx context.Context, principal model.Principal, input SubmitBidInput) (*model.Bid, error) {
	if !principal.IsCarrier() {
		return nil, ErrPermissionDenied
	}
	if !principal.Approved || !principal.Active {
		return nil, fmt.Errorf("%w: carrier is not approved and active", ErrPermissionDenied)
	}
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	task, err := s.tasks.GetByID(ctx, input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, input.TaskID)
		}
		return nil, err
	}
	if task.Status.Terminal() {
		return nil, fmt.Errorf("%w: task is %s", ErrTaskClosed, task.Status)
	}
	if task.Paid {
		return nil, fmt.Errorf("%w: task is already paid", ErrTaskClosed)
	}

	bid := &model.Bid{
		TaskID:    input.TaskID,
		CarrierID: principal.UserID,
		Amount:    input.Amount,
		Message:   input.Message,
		Status:    model.BidStatusPending,
	}
	if err := s.bids.Create(ctx, bid); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateBid
		}
		return nil, err
	}
	return bid, nil
}

// ListBids returns the caller's own bids for carriers and the most recent
// bids across the marketplace for admins.
func (s *BidService) ListBids(ctx context.Context, principal model.Principal) ([]model.Bid, error) {
	switch principal.Role {
	case model.RoleCarrier:
		return s.bids.ListByCarrier(ctx, principal.UserID)
	case model.RoleAdmin:
		return s.bids.ListRecent(ctx, 50)
	default:
		return nil, ErrPermissionDenied
	}
}

func (s *BidService) ListTaskBids(ctx context.Context, principal model.Principal, taskID uint) ([]model.Bid, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	if !canViewTask(principal, task) {
		return nil, ErrPermissionDenied
	}
	return s.bids.ListByTask(ctx, taskID)
}
