package model

import (
	"time"
)

// User is one provisioned proxy account. Username doubles as the client
// email inside the daemon config; CredentialID is the UUID the client
// presents to the inbound.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"unique;not null"`
	CredentialID string    `gorm:"not null"`
	CreatedAt    time.Time
	LastActive   time.Time
	TrafficUp    int64 `gorm:"not null;default:0"`
	TrafficDown  int64 `gorm:"not null;default:0"`
	IsPersistent bool  `gorm:"not null;default:false"`
}
