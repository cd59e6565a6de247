package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"satang/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestJar creates a jar with zero balance.
func CreateTestJar(t *testing.T, db *gorm.DB, userID uint) *models.Jar {
	t.Helper()
	return CreateTestJarWithBalance(t, db, userID, 0)
}

// CreateTestJarWithBalance creates a jar with the given balance (in satang).
func CreateTestJarWithBalance(t *testing.T, db *gorm.DB, userID uint, balance int64) *models.Jar {
	t.Helper()

	jar := &models.Jar{
		UserID:  userID,
		Name:    fmt.Sprintf("Test Jar %d", nextID()),
		Balance: balance,
	}
	if err := db.Create(jar).Error; err != nil {
		t.Fatalf("failed to create test jar: %v", err)
	}
	return jar
}

// CreateTestGoal creates an active goal funded through the given jar.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID, jarID uint, targetAmount int64) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:       userID,
		Title:        fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount: targetAmount,
		TargetDate:   time.Now().AddDate(1, 0, 0),
		JarID:        jarID,
		Status:       models.GoalStatusActive,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestAllocatingGoal creates an active goal with an auto-allocation
// policy and an explicit target date, which drives allocation priority.
func CreateTestAllocatingGoal(t *testing.T, db *gorm.DB, userID, jarID uint, targetAmount int64, targetDate time.Time, allocType models.AllocationType, allocValue int64) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:              userID,
		Title:               fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount:        targetAmount,
		TargetDate:          targetDate,
		JarID:               jarID,
		Status:              models.GoalStatusActive,
		AutoAllocateEnabled: true,
		AutoAllocateType:    allocType,
		AutoAllocateValue:   allocValue,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestRule creates an active recurring rule with the given cadence.
func CreateTestRule(t *testing.T, db *gorm.DB, userID uint, ruleType models.RuleType, repeat models.RepeatKind, amount int64, startDate time.Time) *models.RecurringRule {
	t.Helper()

	rule := &models.RecurringRule{
		UserID:          userID,
		Type:            ruleType,
		Category:        fmt.Sprintf("Test Category %d", nextID()),
		Source:          "Test Source",
		Amount:          amount,
		Repeat:          repeat,
		StartDate:       startDate,
		IsActive:        true,
		TZOffsetMinutes: 0,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}
	return rule
}

// CreateTestIncome creates an income record.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID uint, amount int64, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID: userID,
		Source: fmt.Sprintf("Test Expense %d", nextID()),
		Amount: amount,
		Date:   date,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

func CreateTestIncome(t *testing.T, db *gorm.DB, userID uint, amount int64, date time.Time) *models.Income {
	t.Helper()

	income := &models.Income{
		UserID: userID,
		Source: fmt.Sprintf("Test Income %d", nextID()),
		Amount: amount,
		Date:   date,
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}
