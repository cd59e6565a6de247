package models

// Jar is a named money bucket a user reserves cash into, separate from
// undifferentiated free cash. Balance is in satang and is only ever
// mutated by the ledger service's transfer path.
type Jar struct {
	Base
	UserID    uint   `gorm:"not null;index;uniqueIndex:idx_jars_user_name" json:"user_id"`
	Name      string `gorm:"not null;uniqueIndex:idx_jars_user_name" json:"name"`
	Color     string `gorm:"default:'#6b7280'" json:"color"`
	IsPrimary bool   `gorm:"default:false" json:"is_primary"`
	Balance   int64  `gorm:"not null;default:0" json:"balance"`
}
