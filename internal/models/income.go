package models

import "time"

// Income represents a single income record. Date is normalized to the UTC
// instant of the record's local midnight. RuleID is set only on rows
// generated by the recurrence engine; the unique (rule_id, date) pair is
// the engine's idempotency key.
type Income struct {
	Base
	UserID   uint      `gorm:"not null;index:idx_incomes_user_date" json:"user_id"`
	Source   string    `gorm:"not null" json:"source"`
	Category string    `gorm:"default:'Uncategorized'" json:"category"`
	Amount   int64     `gorm:"not null" json:"amount"`
	Date     time.Time `gorm:"not null;index:idx_incomes_user_date;uniqueIndex:idx_incomes_rule_date" json:"date"`
	Icon     string    `json:"icon"`
	Notes    string    `json:"notes"`
	RuleID   *uint     `gorm:"uniqueIndex:idx_incomes_rule_date" json:"rule_id,omitempty"`
}
