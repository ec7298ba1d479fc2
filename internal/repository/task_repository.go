package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/haulbridge/freight-tasks/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) GetWithBids(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order("bids.created_at DESC")
		}).
		Preload("Bids.Carrier").
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListAllWithBids loads the full register for exports.
func (r *TaskRepository) ListAllWithBids(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Bids").
		Preload("Bids.Carrier").
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// UpdateStatus writes only the status column.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id uint, status model.TaskStatus) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *TaskRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *TaskRepository) SetCarrier(ctx context.Context, id uint, carrierID *uint) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("carrier_id", carrierID).Error
}

// Retender clears the assignment and republishes the task, optionally purging
// the carrier whitelist, in one transaction. Existing bid rows are left as a
// historical record.
func (r *TaskRepository) Retender(ctx context.Context, id uint, clearWhitelist bool, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Task{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"carrier_id":    nil,
				"is_published":  true,
				"visible_after": now,
			}).Error
		if err != nil {
			return err
		}
		if clearWhitelist {
			if err := tx.Where("task_id = ?", id).Delete(&model.TaskCarrierWhitelist{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the task together with its bids and whitelist rows.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.Bid{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.TaskCarrierWhitelist{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, "id = ?", id).Error
	})
}

type TaskFilter struct {
	Query      string
	Status     *model.TaskStatus
	CustomerID *uint

	// CarrierID scopes the listing to what a carrier may see: published,
	// visible, unpaid open tasks (or whitelisted ones) plus tasks already
	// assigned to that carrier.
	CarrierID *uint

	Page     int
	PageSize int
}

func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]model.Task, int64, error) {
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

	query := r.db.WithContext(ctx).Model(&model.Task{})
	if filter.Query != "" {
		query = query.Where("title LIKE ?", "%"+filter.Query+"%")
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.CarrierID != nil {
		carrierID := *filter.CarrierID
		open := r.db.Where(
			"is_published = ? AND paid = ? AND status NOT IN ? AND (visible_after IS NULL OR visible_after <= ?)",
			true, false,
			[]model.TaskStatus{model.TaskStatusDelivered, model.TaskStatusCancelled},
			time.Now(),
		)
		whitelisted := r.db.Where(
			"id IN (?)",
			r.db.Model(&model.TaskCarrierWhitelist{}).Select("task_id").Where("carrier_id = ?", carrierID),
		)
		assigned := r.db.Where("carrier_id = ?", carrierID)
		query = query.Where(open.Or(whitelisted).Or(assigned))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []model.Task
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}
