package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	Jars       []Jar       `gorm:"foreignKey:UserID" json:"jars,omitempty"`
	Goals      []Goal      `gorm:"foreignKey:UserID" json:"goals,omitempty"`
	Categories []Category  `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Incomes    []Income    `gorm:"foreignKey:UserID" json:"incomes,omitempty"`
	Expenses   []Expense   `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
}
