package services

import (
	"time"

	"satang/internal/models"
	"satang/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	GetUserCategories(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
}

// JarServicer defines the contract for jar-related business logic.
type JarServicer interface {
	CreateJar(userID uint, name, color string, isPrimary bool) (*models.Jar, error)
	GetUserJars(userID uint) ([]models.Jar, error)
	GetJarByID(userID, jarID uint) (*models.Jar, error)
	DeleteJar(userID, jarID uint) error
	GetUserTransfers(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.JarTransfer], error)
}

// TransferResult carries the state written by one ledger transfer: the
// immutable transfer row plus the jars and goal as they stand after the
// operation (nil for endpoints that were free cash or untagged).
type TransferResult struct {
	Transfer *models.JarTransfer `json:"transfer"`
	FromJar  *models.Jar         `json:"from_jar,omitempty"`
	ToJar    *models.Jar         `json:"to_jar,omitempty"`
	Goal     *models.Goal        `json:"goal,omitempty"`
}

// LedgerServicer is the single choke point for all jar balance and goal
// progress mutation.
type LedgerServicer interface {
	Transfer(userID uint, fromJarID, toJarID *uint, amount int64, memo string, relatedGoalID *uint) (*TransferResult, error)
}

// GoalAllocation describes how an auto-allocation pass split one income
// amount across goals.
type GoalAllocation struct {
	GoalID uint  `json:"goal_id"`
	JarID  uint  `json:"jar_id"`
	Amount int64 `json:"amount"`
}

// GoalServicer defines the contract for goal-related business logic,
// including the auto-allocator.
type GoalServicer interface {
	CreateGoal(userID uint, title string, targetAmount int64, targetDate time.Time, jarID uint, allocEnabled bool, allocType models.AllocationType, allocValue int64) (*models.Goal, error)
	GetUserGoals(userID uint) ([]models.Goal, error)
	GetGoalByID(userID, goalID uint) (*models.Goal, error)
	UpdateGoal(userID, goalID uint, fields GoalUpdateFields) (*models.Goal, error)
	DeleteGoal(userID, goalID uint) error
	FundGoal(userID, goalID uint, amount int64, memo string) (*TransferResult, error)
	AutoAllocate(userID uint, incomeAmount int64, memo string) ([]GoalAllocation, error)
}

// GoalUpdateFields holds optional goal fields for partial updates.
type GoalUpdateFields struct {
	Title        *string
	TargetAmount *int64
	TargetDate   *time.Time
	Status       *models.GoalStatus
	AllocEnabled *bool
	AllocType    *models.AllocationType
	AllocValue   *int64
}

// RuleUpdateFields holds optional recurring rule fields for partial
// updates. EndDate is doubly indirect so "leave unchanged" (outer nil)
// and "clear the end date" (outer set, inner nil) stay distinct.
type RuleUpdateFields struct {
	Type            *models.RuleType
	Category        *string
	Source          *string
	Amount          *int64
	Repeat          *models.RepeatKind
	DayOfMonth      *int
	StartDate       *time.Time
	EndDate         **time.Time
	Notes           *string
	TZOffsetMinutes *int
}

// RecurrenceServicer defines the contract for recurring rule management
// and occurrence generation.
type RecurrenceServicer interface {
	CreateRule(userID uint, ruleType models.RuleType, category, source string, amount int64, repeat models.RepeatKind, dayOfMonth *int, startDate time.Time, endDate *time.Time, notes string, tzOffsetMinutes *int) (*models.RecurringRule, error)
	GetUserRules(userID uint) ([]models.RecurringRule, error)
	GetRuleByID(userID, ruleID uint) (*models.RecurringRule, error)
	UpdateRule(userID, ruleID uint, fields RuleUpdateFields) (*models.RecurringRule, error)
	ToggleRule(userID, ruleID uint, isActive bool) (*models.RecurringRule, error)
	DeleteRule(userID, ruleID uint) error
	RunOnce(onlyUserID *uint, now time.Time) (int, error)
}

// RecordFilter holds optional filter parameters for listing income/expense records.
type RecordFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Category *string
}

// IncomeServicer defines the contract for income records.
type IncomeServicer interface {
	AddIncome(userID uint, source string, amount int64, date time.Time, categoryID *uint, category, icon string) (*models.Income, error)
	GetUserIncomes(userID uint, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.Income], error)
	DeleteIncome(userID, incomeID uint) error
}

// ExpenseServicer defines the contract for expense records.
type ExpenseServicer interface {
	AddExpense(userID uint, source string, amount int64, date time.Time, categoryID *uint, category, icon string) (*models.Expense, error)
	GetUserExpenses(userID uint, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.Expense], error)
	DeleteExpense(userID, expenseID uint) error
}

// DashboardSummary aggregates a user's income and expense records for
// the dashboard view. Amounts are in the minor currency unit.
type DashboardSummary struct {
	TotalIncome       int64 `json:"total_income"`
	TotalExpense      int64 `json:"total_expense"`
	TotalBalance      int64 `json:"total_balance"`
	IncomeCount       int64 `json:"income_count"`
	ExpenseCount      int64 `json:"expense_count"`
	Last60DaysIncome  int64 `json:"last_60_days_income"`
	Last30DaysExpense int64 `json:"last_30_days_expense"`
}

// DashboardServicer defines the contract for dashboard aggregates.
type DashboardServicer interface {
	GetSummary(userID uint, filter RecordFilter, now time.Time) (*DashboardSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
