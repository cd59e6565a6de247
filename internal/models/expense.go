package models

import "time"

// Expense represents a single expense record. Date is normalized to the
// UTC instant of the record's local midnight, same as Income, so recurring
// generation and range queries stay consistent.
type Expense struct {
	Base
	UserID   uint      `gorm:"not null;index:idx_expenses_user_date" json:"user_id"`
	Source   string    `json:"source"`
	Category string    `gorm:"default:'Uncategorized'" json:"category"`
	Amount   int64     `gorm:"not null" json:"amount"`
	Date     time.Time `gorm:"not null;index:idx_expenses_user_date;uniqueIndex:idx_expenses_rule_date" json:"date"`
	Icon     string    `json:"icon"`
	Notes    string    `json:"notes"`
	RuleID   *uint     `gorm:"uniqueIndex:idx_expenses_rule_date" json:"rule_id,omitempty"`
}
