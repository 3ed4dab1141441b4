package model

import (
	"time"
)

const (
	ActionCreate = "create"
	ActionDelete = "delete"
)

// Event is an append-only audit record. Rows are inserted on every user
// mutation and never updated or deleted afterwards.
type Event struct {
	ID        uint      `gorm:"primaryKey"`
	Timestamp time.Time `gorm:"index"`
	Action    string    `gorm:"not null"`
	Details   string
}
