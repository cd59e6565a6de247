package services

import (
	"time"

	"gorm.io/gorm"

	"satang/internal/calendar"
	apperrors "satang/internal/errors"
	"satang/internal/models"
)

type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// GetSummary aggregates the user's records. The optional filter narrows
// the all-time totals; the rolling income and expense windows are always
// measured backwards from now regardless of the filter.
func (s *dashboardService) GetSummary(userID uint, filter RecordFilter, now time.Time) (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	if err := s.recordQuery(&models.Income{}, userID, filter).Count(&summary.IncomeCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.sumAmount(s.recordQuery(&models.Income{}, userID, filter), &summary.TotalIncome); err != nil {
		return nil, err
	}
	if err := s.recordQuery(&models.Expense{}, userID, filter).Count(&summary.ExpenseCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.sumAmount(s.recordQuery(&models.Expense{}, userID, filter), &summary.TotalExpense); err != nil {
		return nil, err
	}
	summary.TotalBalance = summary.TotalIncome - summary.TotalExpense

	today := calendar.UTCMidnight(now)
	incomeWindow := s.db.Model(&models.Income{}).
		Where("user_id = ? AND date >= ?", userID, today.AddDate(0, 0, -60))
	if err := s.sumAmount(incomeWindow, &summary.Last60DaysIncome); err != nil {
		return nil, err
	}
	expenseWindow := s.db.Model(&models.Expense{}).
		Where("user_id = ? AND date >= ?", userID, today.AddDate(0, 0, -30))
	if err := s.sumAmount(expenseWindow, &summary.Last30DaysExpense); err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *dashboardService) recordQuery(model interface{}, userID uint, filter RecordFilter) *gorm.DB {
	q := s.db.Model(model).Where("user_id = ?", userID)
	if filter.FromDate != nil {
		q = q.Where("date >= ?", calendar.UTCMidnight(*filter.FromDate))
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", calendar.UTCMidnight(*filter.ToDate))
	}
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	return q
}

func (s *dashboardService) sumAmount(q *gorm.DB, dest *int64) error {
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(dest).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
