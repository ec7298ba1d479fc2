package model

import "time"

type BidStatus string

const (
	BidStatusPending  BidStatus = "PENDING"
	BidStatusAccepted BidStatus = "ACCEPTED"
	BidStatusRejected BidStatus = "REJECTED"
)

// Bid is a carrier's priced offer on a task. The composite unique index keeps
// one bid per carrier per task at the storage layer, so concurrent submissions
// cannot both land.
type Bid struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;uniqueIndex:uq_bids_task_carrier" json:"taskId"`
	CarrierID uint      `gorm:"not null;uniqueIndex:uq_bids_task_carrier" json:"carrierId"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Message   *string   `gorm:"size:500" json:"message,omitempty"`
	Status    BidStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt time.Time `json:"createdAt"`

	Carrier *User `json:"carrier,omitempty"`
}
