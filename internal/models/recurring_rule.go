package models

import "time"

// RuleType represents what kind of record a recurring rule generates
type RuleType string

const (
	RuleTypeIncome  RuleType = "income"
	RuleTypeExpense RuleType = "expense"
)

// RepeatKind represents the cadence of a recurring rule
type RepeatKind string

const (
	RepeatWeekly  RepeatKind = "weekly"
	RepeatMonthly RepeatKind = "monthly"
	RepeatYearly  RepeatKind = "yearly"
)

// RecurringRule is a template for automatically generated income/expense
// records. LastGeneratedAt is the engine's cursor: the local-midnight
// instant of the last occurrence materialized. It advances strictly
// forward and only via the recurrence service.
type RecurringRule struct {
	Base
	UserID   uint       `gorm:"not null;index" json:"user_id"`
	Type     RuleType   `gorm:"not null" json:"type"`
	Category string     `gorm:"not null" json:"category"`
	Source   string     `json:"source"`
	Amount   int64      `gorm:"not null" json:"amount"`
	Repeat   RepeatKind `gorm:"not null;default:'monthly'" json:"repeat"`

	// For monthly schedules; when nil the start date's day is used
	DayOfMonth *int `json:"day_of_month,omitempty"`

	StartDate time.Time  `gorm:"not null" json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	IsActive bool   `gorm:"default:true" json:"is_active"`
	Notes    string `json:"notes"`

	// Local-time offset used for occurrence boundary computation
	TZOffsetMinutes int `gorm:"not null;default:420" json:"tz_offset_minutes"`

	// Engine bookkeeping
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	LastGeneratedAt *time.Time `json:"last_generated_at,omitempty"`
}
