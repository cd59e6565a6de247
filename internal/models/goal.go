package models

import "time"

// GoalStatus represents the lifecycle state of a savings goal
type GoalStatus string

const (
	GoalStatusActive   GoalStatus = "active"
	GoalStatusPaused   GoalStatus = "paused"
	GoalStatusAchieved GoalStatus = "achieved"
	GoalStatusExpired  GoalStatus = "expired"
)

// AllocationType represents how an auto-allocation share is computed
type AllocationType string

const (
	AllocationTypePercent AllocationType = "percent"
	AllocationTypeFixed   AllocationType = "fixed"
)

// Goal is a savings target funded through the jar ledger. CurrentAmount
// caches the signed sum of all transfers tagged with this goal's id and
// is maintained transactionally by the ledger service.
type Goal struct {
	Base
	UserID        uint       `gorm:"not null;index;uniqueIndex:idx_goals_user_title" json:"user_id"`
	Title         string     `gorm:"not null;uniqueIndex:idx_goals_user_title" json:"title"`
	TargetAmount  int64      `gorm:"not null" json:"target_amount"`
	CurrentAmount int64      `gorm:"not null;default:0" json:"current_amount"`
	TargetDate    time.Time  `gorm:"not null" json:"target_date"`
	JarID         uint       `gorm:"not null" json:"jar_id"`
	Status        GoalStatus `gorm:"not null;default:'active'" json:"status"`

	// Auto-allocation policy applied when income arrives
	AutoAllocateEnabled bool           `gorm:"default:false" json:"auto_allocate_enabled"`
	AutoAllocateType    AllocationType `gorm:"default:'percent'" json:"auto_allocate_type"`
	AutoAllocateValue   int64          `gorm:"default:0" json:"auto_allocate_value"`

	Jar *Jar `gorm:"foreignKey:JarID" json:"jar,omitempty"`
}

// Remaining returns how much is still needed to reach the target, never negative.
func (g *Goal) Remaining() int64 {
	r := g.TargetAmount - g.CurrentAmount
	if r < 0 {
		return 0
	}
	return r
}
