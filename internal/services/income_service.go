package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"satang/internal/calendar"
	apperrors "satang/internal/errors"
	"satang/internal/logger"
	"satang/internal/models"
	"satang/internal/pagination"
)

type incomeService struct {
	db    *gorm.DB
	goals GoalServicer
}

// NewIncomeService creates a new IncomeServicer. goals may be nil to
// disable auto-allocation on recorded income.
func NewIncomeService(db *gorm.DB, goals GoalServicer) IncomeServicer {
	return &incomeService{db: db, goals: goals}
}

// AddIncome records an income. After the record commits, the amount is
// offered to the user's auto-allocating goals; allocation failures are
// logged and do not fail the income.
func (s *incomeService) AddIncome(userID uint, source string, amount int64, date time.Time, categoryID *uint, category, icon string) (*models.Income, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if source == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "source is required")
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}

	if categoryID != nil {
		var cat models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *categoryID, userID).First(&cat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		category = cat.Name
		if icon == "" {
			icon = cat.Icon
		}
	}
	if category == "" {
		category = "Uncategorized"
	}

	record := &models.Income{
		UserID:   userID,
		Source:   source,
		Category: category,
		Amount:   amount,
		Date:     calendar.UTCMidnight(date),
		Icon:     icon,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if s.goals != nil {
		if _, err := s.goals.AutoAllocate(userID, amount, "Auto-allocation from income: "+source); err != nil {
			logger.Get().Errorw("auto-allocation after income failed",
				"user_id", userID,
				"income_id", record.ID,
				"error", err,
			)
		}
	}
	return record, nil
}

// GetUserIncomes lists a user's incomes, newest first, with optional
// date-range and category filters.
func (s *incomeService) GetUserIncomes(userID uint, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.Income], error) {
	q := s.db.Model(&models.Income{}).Where("user_id = ?", userID)
	if filter.FromDate != nil {
		q = q.Where("date >= ?", calendar.UTCMidnight(*filter.FromDate))
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", calendar.UTCMidnight(*filter.ToDate))
	}
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	page.Defaults()

	var totalItems int64
	if err := q.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var records []models.Income
	if err := q.Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(records, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteIncome removes an income record.
func (s *incomeService) DeleteIncome(userID, incomeID uint) error {
	var record models.Income
	if err := s.db.Where("id = ? AND user_id = ?", incomeID, userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrIncomeNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Delete(&record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
