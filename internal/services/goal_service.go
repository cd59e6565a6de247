package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "satang/internal/errors"
	"satang/internal/models"
)

// goalService handles goal CRUD, goal funding, and the income
// auto-allocator. All money movement goes through the ledger service.
type goalService struct {
	db     *gorm.DB
	ledger LedgerServicer
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB, ledger LedgerServicer) GoalServicer {
	return &goalService{db: db, ledger: ledger}
}

// CreateGoal creates a savings goal tied to one of the user's jars.
func (s *goalService) CreateGoal(
	userID uint,
	title string,
	targetAmount int64,
	targetDate time.Time,
	jarID uint,
	allocEnabled bool,
	allocType models.AllocationType,
	allocValue int64,
) (*models.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal title is required")
	}
	if targetAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	}

	// The jar must exist and belong to the user
	var jar models.Jar
	if err := s.db.Where("id = ? AND user_id = ?", jarID, userID).First(&jar).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrJarNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// One title per user
	var count int64
	if err := s.db.Model(&models.Goal{}).
		Where("user_id = ? AND title = ?", userID, title).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateGoalTitle
	}

	if allocType == "" {
		allocType = models.AllocationTypePercent
	}

	goal := &models.Goal{
		UserID:              userID,
		Title:               title,
		TargetAmount:        targetAmount,
		CurrentAmount:       0,
		TargetDate:          targetDate,
		JarID:               jarID,
		Status:              models.GoalStatusActive,
		AutoAllocateEnabled: allocEnabled,
		AutoAllocateType:    allocType,
		AutoAllocateValue:   allocValue,
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// GetUserGoals lists a user's goals, newest first.
func (s *goalService) GetUserGoals(userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goals, nil
}

// GetGoalByID retrieves a goal by ID for a specific user
func (s *goalService) GetGoalByID(userID, goalID uint) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal applies partial field edits. Progress (current_amount) is
// deliberately not editable here; only ledger transfers move it.
func (s *goalService) UpdateGoal(userID, goalID uint, fields GoalUpdateFields) (*models.Goal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Title != nil && strings.TrimSpace(*fields.Title) != "" {
		updates["title"] = strings.TrimSpace(*fields.Title)
	}
	if fields.TargetAmount != nil {
		if *fields.TargetAmount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
		}
		updates["target_amount"] = *fields.TargetAmount
	}
	if fields.TargetDate != nil {
		updates["target_date"] = *fields.TargetDate
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if fields.AllocEnabled != nil {
		updates["auto_allocate_enabled"] = *fields.AllocEnabled
	}
	if fields.AllocType != nil {
		updates["auto_allocate_type"] = *fields.AllocType
	}
	if fields.AllocValue != nil {
		updates["auto_allocate_value"] = *fields.AllocValue
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", goal.ID).First(goal).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return goal, nil
}

// DeleteGoal removes a goal. The money stays in the goal's jar; unlike
// jars there is no balance constraint on delete.
func (s *goalService) DeleteGoal(userID, goalID uint) error {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// FundGoal moves free cash into the goal's jar, tagged with the goal id
// so progress updates with the transfer.
func (s *goalService) FundGoal(userID, goalID uint, amount int64, memo string) (*TransferResult, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	if memo == "" {
		memo = "Fund goal: " + goal.Title
	}
	return s.ledger.Transfer(userID, nil, &goal.JarID, amount, memo, &goal.ID)
}

// AutoAllocate distributes an incoming amount across the user's active,
// allocation-enabled goals in order of earliest deadline. Each goal's
// share is computed from its policy (percent of the incoming amount or a
// fixed value), clamped to what the goal still needs, and moved from
// free cash into the goal's jar. The running pool shrinks with each
// allocation; goals past the point of exhaustion receive nothing.
func (s *goalService) AutoAllocate(userID uint, incomeAmount int64, memo string) ([]GoalAllocation, error) {
	if incomeAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if memo == "" {
		memo = "Auto-allocate on income"
	}

	var goals []models.Goal
	if err := s.db.Where("user_id = ? AND status = ? AND auto_allocate_enabled = ?",
		userID, models.GoalStatusActive, true).
		Order("target_date ASC").
		Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var allocations []GoalAllocation
	for i := range goals {
		g := &goals[i]

		remaining := g.Remaining()
		if remaining <= 0 {
			continue
		}

		var alloc int64
		switch g.AutoAllocateType {
		case models.AllocationTypePercent:
			alloc = incomeAmount * g.AutoAllocateValue / 100
		case models.AllocationTypeFixed:
			alloc = g.AutoAllocateValue
		}
		if alloc > remaining {
			alloc = remaining
		}
		if alloc <= 0 {
			continue
		}

		if _, err := s.ledger.Transfer(userID, nil, &g.JarID, alloc, memo, &g.ID); err != nil {
			return allocations, err
		}
		allocations = append(allocations, GoalAllocation{GoalID: g.ID, JarID: g.JarID, Amount: alloc})

		incomeAmount -= alloc
		if incomeAmount <= 0 {
			break
		}
	}
	return allocations, nil
}
