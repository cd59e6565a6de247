package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"satang/internal/calendar"
	apperrors "satang/internal/errors"
	"satang/internal/models"
	"satang/internal/pagination"
)

type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// AddExpense records an expense.
func (s *expenseService) AddExpense(userID uint, source string, amount int64, date time.Time, categoryID *uint, category, icon string) (*models.Expense, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
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

	record := &models.Expense{
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
	return record, nil
}

// GetUserExpenses lists a user's expenses, newest first, with optional
// date-range and category filters.
func (s *expenseService) GetUserExpenses(userID uint, page pagination.PageRequest, filter RecordFilter) (*pagination.PageResponse[models.Expense], error) {
	q := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
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

	var records []models.Expense
	if err := q.Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(records, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteExpense removes an expense record.
func (s *expenseService) DeleteExpense(userID, expenseID uint) error {
	var record models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExpenseNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Delete(&record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
