package model

import "time"

type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "NEW"
	TaskStatusPlanned    TaskStatus = "PLANNED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDelivered  TaskStatus = "DELIVERED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// allowedTransitions is the task lifecycle as a directed graph. Terminal
// states map to an empty set and are locked.
var allowedTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusNew:        {TaskStatusPlanned, TaskStatusCancelled},
	TaskStatusPlanned:    {TaskStatusInProgress, TaskStatusCancelled},
	TaskStatusInProgress: {TaskStatusDelivered, TaskStatusCancelled},
	TaskStatusDelivered:  {},
	TaskStatusCancelled:  {},
}

func (s TaskStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s TaskStatus) Terminal() bool {
	return s == TaskStatusDelivered || s == TaskStatusCancelled
}

// CanTransition reports whether from -> to is in the transition table.
// A same-status request is not a transition and returns false.
func CanTransition(from, to TaskStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Task is a transport job posted by a customer. CarrierID is set either by
// bid acceptance (the normal path) or directly by an admin.
type Task struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Title              string     `gorm:"size:255;not null" json:"title"`
	Pickup             string     `gorm:"size:500" json:"pickup"`
	Dropoff            string     `gorm:"size:500" json:"dropoff"`
	ScheduledAt        *time.Time `json:"scheduledAt,omitempty"`
	Price              *float64   `json:"price,omitempty"`
	Status             TaskStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Paid               bool       `gorm:"not null;default:false" json:"paid"`
	Notes              *string    `gorm:"size:1000" json:"notes,omitempty"`
	IsPublished        bool       `gorm:"not null" json:"isPublished"`
	VisibleAfter       *time.Time `json:"visibleAfter,omitempty"`
	RequiresActivation bool       `gorm:"not null;default:false" json:"requiresActivation"`
	CustomerID         *uint      `gorm:"index" json:"customerId,omitempty"`
	CarrierID          *uint      `gorm:"index" json:"carrierId,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`

	Bids []Bid `gorm:"constraint:OnDelete:CASCADE" json:"bids,omitempty"`
}

// TaskCarrierWhitelist restricts which carriers may see a limited task.
// Rows are purged when an admin retenders with clearWhitelist.
type TaskCarrierWhitelist struct {
	TaskID    uint      `gorm:"primaryKey;autoIncrement:false" json:"taskId"`
	CarrierID uint      `gorm:"primaryKey;autoIncrement:false" json:"carrierId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (TaskCarrierWhitelist) TableName() string { return "task_carrier_whitelist" }
