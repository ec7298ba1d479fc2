package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/haulbridge/freight-tasks/internal/model"
)

// ErrTaskNotOpen is returned by Accept when the task left status NEW between
// the caller's read and the transaction, e.g. a concurrent accept won.
var ErrTaskNotOpen = errors.New("task is not open for assignment")

type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create inserts the bid. The unique index on (task_id, carrier_id) makes a
// concurrent duplicate surface as gorm.ErrDuplicatedKey.
func (r *BidRepository) Create(ctx context.Context, bid *model.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

func (r *BidRepository) GetByID(ctx context.Context, id uint) (*model.Bid, error) {
	var bid model.Bid
	if err := r.db.WithContext(ctx).First(&bid, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *BidRepository) ListByTask(ctx context.Context, taskID uint) ([]model.Bid, error) {
	var bids []model.Bid
	err := r.db.WithContext(ctx).
		Preload("Carrier").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&bids).Error
	return bids, err
}

func (r *BidRepository) ListByCarrier(ctx context.Context, carrierID uint) ([]model.Bid, error) {
	var bids []model.Bid
	err := r.db.WithContext(ctx).
		Where("carrier_id = ?", carrierID).
		Order("created_at DESC").
		Find(&bids).Error
	return bids, err
}

func (r *BidRepository) ListRecent(ctx context.Context, limit int) ([]model.Bid, error) {
	if limit <= 0 {
		limit = 50
	}
	var bids []model.Bid
	err := r.db.WithContext(ctx).
		Preload("Carrier").
		Order("created_at DESC").
		Limit(limit).
		Find(&bids).Error
	return bids, err
}

// Accept runs the whole acceptance as one transaction: claim the task while
// it is still NEW, mark the target bid ACCEPTED, reject every other bid on
// the task. The guarded task update goes first so the task row serializes
// competing accepts; the loser sees zero rows and the transaction rolls back
// with ErrTaskNotOpen.
func (r *BidRepository) Accept(ctx context.Context, bid *model.Bid) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&model.Task{}).
			Where("id = ? AND status = ?", bid.TaskID, model.TaskStatusNew).
			Updates(map[string]interface{}{
				"carrier_id": bid.CarrierID,
				"price":      bid.Amount,
				"status":     model.TaskStatusPlanned,
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return ErrTaskNotOpen
		}

		err := tx.Model(&model.Bid{}).
			Where("id = ?", bid.ID).
			Update("status", model.BidStatusAccepted).Error
		if err != nil {
			return err
		}

		err = tx.Model(&model.Bid{}).
			Where("task_id = ? AND id <> ?", bid.TaskID, bid.ID).
			Update("status", model.BidStatusRejected).Error
		if err != nil {
			return err
		}

		return tx.First(&task, "id = ?", bid.TaskID).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}
