package models

import "time"

// SyncRun is one queued/executed sync operation. Runs carry no checkpoint
// state; the range they were asked to cover is recorded for operators only.
type SyncRun struct {
	ID          uint   `gorm:"primary_key" json:"id"`
	Kind        string `gorm:"index;size:10;not null" json:"kind"`
	Status      string `gorm:"size:20;not null" json:"status"`
	TriggeredBy string `gorm:"size:20" json:"triggered_by"`

	// RangeStart/RangeEnd encoding depends on Kind:
	// daily "2006-01-02", monthly "2006-01", yearly "2006".
	RangeStart string `gorm:"size:10" json:"range_start"`
	RangeEnd   string `gorm:"size:10" json:"range_end"`

	// Cascade makes the worker roll up the tiers above after this run,
	// preserving the daily -> monthly -> yearly ordering for the window.
	Cascade bool `gorm:"not null;default:false" json:"cascade"`

	StatsJSON  []byte `gorm:"type:json" json:"stats"`
	ErrorCount int    `json:"error_count"`

	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	DurationMs int64      `json:"duration_ms"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SyncItemError records one skipped upstream record so a partial run is
// never silent.
type SyncItemError struct {
	ID        uint `gorm:"primary_key" json:"id"`
	SyncRunId uint `gorm:"index;not null" json:"sync_run_id"`

	SaleCode   string `gorm:"size:30" json:"sale_code"`
	ProductRef string `gorm:"size:30" json:"product_ref"`
	ItemSeq    int    `json:"item_seq"`

	ErrorCode   string `gorm:"size:50" json:"error_code"`
	Message     string `gorm:"type:text" json:"message"`
	PayloadJSON []byte `gorm:"type:json" json:"payload"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
