package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/haulbridge/freight-tasks/internal/model"
	"github.com/haulbridge/freight-tasks/internal/repository"
)

type TaskService struct {
	tasks *repository.TaskRepository
	users *repository.UserRepository
}

func NewTaskService(tasks *repository.TaskRepository, users *repository.UserRepository) *TaskService {
	return &TaskService{tasks: tasks, users: users}
}

type CreateTaskInput struct {
	Title       string
	Pickup      string
	Dropoff     string
	ScheduledAt *time.Time
	Price       *float64
	Notes       *string

	// Admin-only: attach a customer or carrier, or set an initial status.
	CustomerID *uint
	CarrierID  *uint
	Status     *model.TaskStatus
}

func (s *TaskService) CreateTask(ctx context.Context, principal model.Principal, input CreateTaskInput) (*model.Task, error) {
	if !principal.IsAdmin() && !principal.IsCustomer() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Price != nil && *input.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}

	task := &model.Task{
		Title:       strings.TrimSpace(input.Title),
		Pickup:      input.Pickup,
		Dropoff:     input.Dropoff,
		ScheduledAt: input.ScheduledAt,
		Price:       input.Price,
		Notes:       input.Notes,
		Status:      model.TaskStatusNew,
		IsPublished: true,
	}

	if principal.IsCustomer() {
		customerID := principal.UserID
		task.CustomerID = &customerID
	} else {
		if input.CustomerID != nil {
			if err := s.requireRole(ctx, *input.CustomerID, model.RoleCustomer); err != nil {
				return nil, err
			}
			task.CustomerID = input.CustomerID
		}
		if input.CarrierID != nil {
			if err := s.requireRole(ctx, *input.CarrierID, model.RoleCarrier); err != nil {
				return nil, err
			}
			task.CarrierID = input.CarrierID
		}
		if input.Status != nil {
			if !input.Status.Valid() {
				return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *input.Status)
			}
			task.Status = *input.Status
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// TransitionStatus moves a task along the lifecycle graph. Only the status
// column is written; re-notification and billing are other services' concern.
func (s *TaskService) TransitionStatus(ctx context.Context, principal model.Principal, taskID uint, next model.TaskStatus) (*model.Task, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, next)
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}

	// Same-status requests fail loudly; silently succeeding would mask
	// double-submission bugs in callers.
	if task.Status == next {
		return nil, fmt.Errorf("%w: task already %s", ErrSameStatus, next)
	}
	if !model.CanTransition(task.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, next)
	}

	if err := s.tasks.UpdateStatus(ctx, taskID, next); err != nil {
		return nil, err
	}
	task.Status = next
	return task, nil
}

type ListTasksInput struct {
	Query    string
	Status   string
	Page     int
	PageSize int
}

type TaskPage struct {
	Items    []model.Task `json:"items"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

// ListTasks is role-scoped: admins see everything, customers their own tasks,
// carriers the published open tasks they may bid on plus their assignments.
func (s *TaskService) ListTasks(ctx context.Context, principal model.Principal, input ListTasksInput) (*TaskPage, error) {
	filter := repository.TaskFilter{
		Query:    strings.TrimSpace(input.Query),
		Page:     input.Page,
		PageSize: input.PageSize,
	}
	if input.Status != "" {
		status := model.TaskStatus(strings.ToUpper(strings.TrimSpace(input.Status)))
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
		}
		filter.Status = &status
	}

	switch principal.Role {
	case model.RoleAdmin:
	case model.RoleCustomer:
		customerID := principal.UserID
		filter.CustomerID = &customerID
	case model.RoleCarrier:
		carrierID := principal.UserID
		filter.CarrierID = &carrierID
	default:
		return nil, ErrPermissionDenied
	}

	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return &TaskPage{Items: tasks, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *TaskService) GetTask(ctx context.Context, principal model.Principal, taskID uint) (*model.Task, error) {
	task, err := s.tasks.GetWithBids(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	if !canViewTask(principal, task) {
		return nil, ErrPermissionDenied
	}
	return task, nil
}

type UpdateTaskInput struct {
	Title              *string
	Price              *float64
	Notes              *string
	Paid               *bool
	IsPublished        *bool
	PublishNow         bool
	Unpublish          bool
	VisibleAfterMs     *int64
	RequiresActivation *bool
}

// UpdateTask is the admin edit path for plain fields and publication flags.
// Status changes, reassignment and retender have their own operations.
func (s *TaskService) UpdateTask(ctx context.Context, principal model.Principal, taskID uint, input UpdateTaskInput) (*model.Task, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.mustGetTask(ctx, taskID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		fields["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
		}
		fields["price"] = *input.Price
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if input.Paid != nil {
		fields["paid"] = *input.Paid
	}
	if input.IsPublished != nil {
		fields["is_published"] = *input.IsPublished
	}
	if input.PublishNow {
		fields["is_published"] = true
		fields["visible_after"] = time.Now()
		fields["requires_activation"] = false
	}
	if input.Unpublish {
		fields["is_published"] = false
	}
	if input.VisibleAfterMs != nil {
		if *input.VisibleAfterMs < 0 {
			return nil, fmt.Errorf("%w: visibleAfterMs must not be negative", ErrInvalidInput)
		}
		fields["visible_after"] = time.Now().Add(time.Duration(*input.VisibleAfterMs) * time.Millisecond)
	}
	if input.RequiresActivation != nil {
		fields["requires_activation"] = *input.RequiresActivation
	}

	if err := s.tasks.UpdateFields(ctx, taskID, fields); err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, taskID)
}

// ActivateTask is the owning customer publishing a task that was created in
// requires-activation state.
func (s *TaskService) ActivateTask(ctx context.Context, principal model.Principal, taskID uint) (*model.Task, error) {
	if !principal.IsCustomer() {
		return nil, ErrPermissionDenied
	}
	task, err := s.mustGetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.CustomerID == nil || *task.CustomerID != principal.UserID {
		return nil, ErrPermissionDenied
	}

	err = s.tasks.UpdateFields(ctx, taskID, map[string]interface{}{
		"requires_activation": false,
		"is_published":        true,
		"visible_after":       time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return s.tasks.GetByID(ctx, taskID)
}

// DeleteTask is the explicit destructive admin operation; it is not part of
// the lifecycle state machine.
func (s *TaskService) DeleteTask(ctx context.Context, principal model.Principal, taskID uint) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if _, err := s.mustGetTask(ctx, taskID); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, taskID)
}

func (s *TaskService) mustGetTask(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) requireRole(ctx context.Context, userID uint, role model.Role) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d does not exist", ErrInvalidInput, userID)
		}
		return err
	}
	if user.Role != role {
		return fmt.Errorf("%w: user %d is not a %s", ErrInvalidInput, userID, role)
	}
	return nil
}

func canViewTask(principal model.Principal, task *model.Task) bool {
	if principal.IsAdmin() {
		return true
	}
	if principal.IsCustomer() && task.CustomerID != nil && *task.CustomerID == principal.UserID {
		return true
	}
	if principal.IsCarrier() && task.CarrierID != nil && *task.CarrierID == principal.UserID {
		return true
	}
	return false
}
