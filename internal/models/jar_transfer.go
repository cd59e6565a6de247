package models

// JarTransfer is an immutable ledger entry recording one money movement.
// A nil FromJarID or ToJarID means free cash (the implicit outside
// account). Rows are created once and never updated or deleted.
type JarTransfer struct {
	Base
	UserID        uint   `gorm:"not null;index:idx_jar_transfers_user_created" json:"user_id"`
	FromJarID     *uint  `json:"from_jar_id"`
	ToJarID       *uint  `json:"to_jar_id"`
	Amount        int64  `gorm:"not null" json:"amount"`
	Memo          string `json:"memo"`
	RelatedGoalID *uint  `gorm:"index" json:"related_goal_id,omitempty"`

	FromJar *Jar  `gorm:"foreignKey:FromJarID" json:"from_jar,omitempty"`
	ToJar   *Jar  `gorm:"foreignKey:ToJarID" json:"to_jar,omitempty"`
	Goal    *Goal `gorm:"foreignKey:RelatedGoalID" json:"goal,omitempty"`
}
