package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/haulbridge/freight-tasks/internal/model"
	"github.com/haulbridge/freight-tasks/internal/repository"
)

// AssignmentService owns carrier-task assignment: bid acceptance and the
// admin override paths (direct reassignment, retender).
type AssignmentService struct {
	bids  *repository.BidRepository
	tasks *repository.TaskRepository
	users *repository.UserRepository
}

func NewAssignmentService(bids *repository.BidRepository, tasks *repository.TaskRepository, users *repository.UserRepository) *AssignmentService {
	return &AssignmentService{bids: bids, tasks: tasks, users: users}
}

type AcceptBidResult struct {
	Task *model.Task `json:"task"`
	Bid  *model.Bid  `json:"bid"`
}

// AcceptBid accepts one bid and settles the whole round: the target bid goes
// ACCEPTED, every competitor REJECTED, and the task is assigned and moved to
// PLANNED with the bid amount as its price. The three writes commit together
// or not at all; a concurrent accept on the same task loses with ErrTaskClosed.
func (s *AssignmentService) AcceptBid(ctx context.Context, principal model.Principal, bidID uint) (*AcceptBidResult, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bid %d", ErrNotFound, bidID)
		}
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, bid.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, bid.TaskID)
		}
		return nil, err
	}

	if !principal.IsAdmin() {
		if !principal.IsCustomer() || task.CustomerID == nil || *task.CustomerID != principal.UserID {
			return nil, fmt.Errorf("%w: not your task", ErrPermissionDenied)
		}
	}
	if task.Status.Terminal() {
		return nil, fmt.Errorf("%w: task is %s", ErrTaskClosed, task.Status)
	}

	updated, err := s.bids.Accept(ctx, bid)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotOpen) {
			return nil, fmt.Errorf("%w: task is no longer open", ErrTaskClosed)
		}
		return nil, err
	}

	bid.Status = model.BidStatusAccepted
	return &AcceptBidResult{Task: updated, Bid: bid}, nil
}

// ReassignCarrier sets or clears the task's carrier directly, bypassing the
// bid protocol. Bid rows are deliberately untouched; this path exists for
// admin operators and keeps its own invariant.
func (s *AssignmentService) ReassignCarrier(ctx context.Context, principal model.Principal, taskID uint, carrierID *uint) (*model.Task, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}

	if carrierID != nil {
		carrier, err := s.users.GetByID(ctx, *carrierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: user %d does not exist", ErrInvalidCarrier, *carrierID)
			}
			return nil, err
		}
		if carrier.Role != model.RoleCarrier || !carrier.Approved || !carrier.Active {
			return nil, fmt.Errorf("%w: user %d is not an approved active carrier", ErrInvalidCarrier, *carrierID)
		}
	}

	if err := s.tasks.SetCarrier(ctx, taskID, carrierID); err != nil {
		return nil, err
	}
	task.CarrierID = carrierID
	return task, nil
}

// Retender un-assigns a task and republishes it for a fresh round of bidding.
// Previously accepted or rejected bids keep their terminal status as a
// historical record; a new round produces new bid rows.
func (s *AssignmentService) Retender(ctx context.Context, principal model.Principal, taskID uint, clearWhitelist bool) (*model.Task, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}

	if err := s.tasks.Retender(ctx, taskID, clearWhitelist, time.Now()); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, taskID)
}
