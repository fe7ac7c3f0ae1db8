package models

import "time"

// SchedulerLease is a claim record for background jobs. A job instance must
// win the compare-and-swap on this row before running, which keeps sweeps
// single-flight across multiple server instances without in-process flags.
type SchedulerLease struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Holder    string    `gorm:"size:64" json:"holder"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SchedulerLease) TableName() string { return "scheduler_leases" }
