package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"satang/internal/calendar"
	apperrors "satang/internal/errors"
	"satang/internal/logger"
	"satang/internal/models"
)

// recurrenceService manages recurring rules and materializes their due
// occurrences into income/expense records. Each rule owns a cursor
// (LastGeneratedAt) that advances strictly forward through the rule's
// occurrence sequence; generation is idempotent keyed by (rule, date).
type recurrenceService struct {
	db              *gorm.DB
	defaultTZOffset int
}

// NewRecurrenceService creates a new RecurrenceServicer. defaultTZOffset
// is the local-time offset in minutes applied to rules created without one.
func NewRecurrenceService(db *gorm.DB, defaultTZOffset int) RecurrenceServicer {
	return &recurrenceService{db: db, defaultTZOffset: defaultTZOffset}
}

// CreateRule creates a recurring income/expense template.
func (s *recurrenceService) CreateRule(
	userID uint,
	ruleType models.RuleType,
	category, source string,
	amount int64,
	repeat models.RepeatKind,
	dayOfMonth *int,
	startDate time.Time,
	endDate *time.Time,
	notes string,
	tzOffsetMinutes *int,
) (*models.RecurringRule, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if startDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}
	if repeat == "" {
		repeat = models.RepeatMonthly
	}
	if dayOfMonth != nil && (*dayOfMonth < 1 || *dayOfMonth > 31) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "day of month must be between 1 and 31")
	}

	offset := s.defaultTZOffset
	if tzOffsetMinutes != nil {
		offset = *tzOffsetMinutes
	}

	rule := &models.RecurringRule{
		UserID:          userID,
		Type:            ruleType,
		Category:        category,
		Source:          source,
		Amount:          amount,
		Repeat:          repeat,
		DayOfMonth:      dayOfMonth,
		StartDate:       startDate,
		EndDate:         endDate,
		IsActive:        true,
		Notes:           notes,
		TZOffsetMinutes: offset,
	}
	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetUserRules lists a user's recurring rules, newest first.
func (s *recurrenceService) GetUserRules(userID uint) ([]models.RecurringRule, error) {
	var rules []models.RecurringRule
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}

// GetRuleByID retrieves a rule by ID for a specific user
func (s *recurrenceService) GetRuleByID(userID, ruleID uint) (*models.RecurringRule, error) {
	var rule models.RecurringRule
	if err := s.db.Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRuleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// UpdateRule applies partial field edits to a rule. The engine's cursor
// fields are not editable from here.
func (s *recurrenceService) UpdateRule(userID, ruleID uint, fields RuleUpdateFields) (*models.RecurringRule, error) {
	rule, err := s.GetRuleByID(userID, ruleID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Type != nil {
		updates["type"] = *fields.Type
	}
	if fields.Category != nil {
		updates["category"] = *fields.Category
	}
	if fields.Source != nil {
		updates["source"] = *fields.Source
	}
	if fields.Amount != nil {
		if *fields.Amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *fields.Amount
	}
	if fields.Repeat != nil {
		updates["repeat"] = *fields.Repeat
	}
	if fields.DayOfMonth != nil {
		if *fields.DayOfMonth < 1 || *fields.DayOfMonth > 31 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "day of month must be between 1 and 31")
		}
		updates["day_of_month"] = *fields.DayOfMonth
	}
	if fields.StartDate != nil {
		updates["start_date"] = *fields.StartDate
	}
	if fields.EndDate != nil {
		// Inner nil clears the end date (the rule runs open-ended again).
		updates["end_date"] = *fields.EndDate
	}
	if fields.Notes != nil {
		updates["notes"] = *fields.Notes
	}
	if fields.TZOffsetMinutes != nil {
		updates["tz_offset_minutes"] = *fields.TZOffsetMinutes
	}

	if len(updates) > 0 {
		if err := s.db.Model(rule).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", rule.ID).First(rule).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return rule, nil
}

// ToggleRule enables or disables generation for a rule.
func (s *recurrenceService) ToggleRule(userID, ruleID uint, isActive bool) (*models.RecurringRule, error) {
	rule, err := s.GetRuleByID(userID, ruleID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(rule).Update("is_active", isActive).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	rule.IsActive = isActive
	return rule, nil
}

// DeleteRule removes a rule. Records it already generated stay.
func (s *recurrenceService) DeleteRule(userID, ruleID uint) error {
	rule, err := s.GetRuleByID(userID, ruleID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RunOnce evaluates all active rules (optionally one user's) against now
// and generates every due occurrence. Rule failures are isolated: one
// bad rule is logged and skipped, the rest of the batch proceeds.
// Returns the number of records generated.
func (s *recurrenceService) RunOnce(onlyUserID *uint, now time.Time) (int, error) {
	q := s.db.Where("is_active = ?", true)
	if onlyUserID != nil {
		q = q.Where("user_id = ?", *onlyUserID)
	}

	var rules []models.RecurringRule
	if err := q.Find(&rules).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	generated := 0
	for i := range rules {
		n, err := s.runForRule(&rules[i], now)
		if err != nil {
			logger.Get().Errorw("recurrence rule failed",
				"rule_id", rules[i].ID,
				"user_id", rules[i].UserID,
				"error", err,
			)
			continue
		}
		generated += n
	}
	return generated, nil
}

// runForRule generates every occurrence of one rule due between its
// cursor and now (bounded by the rule's end date), advancing the cursor
// past each occurrence it materializes. All occurrence arithmetic
// happens on local-midnight values in the rule's fixed offset; only the
// stored record date and cursor are converted back to UTC instants.
func (s *recurrenceService) runForRule(rule *models.RecurringRule, now time.Time) (int, error) {
	offset := rule.TZOffsetMinutes

	todayLocalMid := calendar.LocalMidnight(now, offset)
	startLocalMid := calendar.LocalMidnight(rule.StartDate, offset)

	// Resume point: one period past the cursor, else the rule's start.
	first := startLocalMid
	if rule.LastGeneratedAt != nil {
		lastLocalMid := calendar.LocalMidnight(*rule.LastGeneratedAt, offset)
		first = s.nextOccurrence(rule, lastLocalMid)
	} else if rule.Repeat == models.RepeatMonthly && rule.DayOfMonth != nil && first.Day() != *rule.DayOfMonth {
		// Snap a monthly rule's first occurrence to its day-of-month,
		// clamped to the start month's length.
		day := *rule.DayOfMonth
		if dim := calendar.DaysInMonth(first.Year(), first.Month()); day > dim {
			day = dim
		}
		first = time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
	}

	// Generate up to today, or the end date if that comes sooner.
	until := todayLocalMid
	if rule.EndDate != nil {
		endLocalMid := calendar.LocalMidnight(*rule.EndDate, offset)
		if endLocalMid.Before(until) {
			until = endLocalMid
		}
	}

	if first.After(until) {
		// Not yet due; still stamp the evaluation time.
		if err := s.db.Model(rule).Update("last_run_at", now).Error; err != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return 0, nil
	}

	generated := 0
	for occ := first; !occ.After(until); occ = s.nextOccurrence(rule, occ) {
		created, err := s.ensureRecord(rule, occ)
		if err != nil {
			return generated, err
		}
		if created {
			generated++
		}

		cursor := calendar.ToUTC(occ, offset)
		rule.LastGeneratedAt = &cursor
		if err := s.db.Model(rule).Update("last_generated_at", cursor).Error; err != nil {
			return generated, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	rule.LastRunAt = &now
	if err := s.db.Model(rule).Update("last_run_at", now).Error; err != nil {
		return generated, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return generated, nil
}

// nextOccurrence steps exactly one period forward from a local midnight.
func (s *recurrenceService) nextOccurrence(rule *models.RecurringRule, localMid time.Time) time.Time {
	switch rule.Repeat {
	case models.RepeatWeekly:
		return calendar.AddWeeks(localMid, 1)
	case models.RepeatYearly:
		return calendar.AddYearsClamped(localMid, 1)
	default:
		anchor := localMid.Day()
		if rule.DayOfMonth != nil {
			anchor = *rule.DayOfMonth
		}
		return calendar.AddMonthsClamped(localMid, 1, anchor)
	}
}

// ensureRecord upserts the income/expense row for one occurrence. The
// row's date is the occurrence's local midnight as a UTC instant, and
// the (rule_id, date) pair is unique, so re-running a rule over already
// generated dates is a no-op.
func (s *recurrenceService) ensureRecord(rule *models.RecurringRule, occLocalMid time.Time) (bool, error) {
	date := calendar.ToUTC(occLocalMid, rule.TZOffsetMinutes)

	notes := "[Recurring]"
	if rule.Notes != "" {
		notes = rule.Notes + " [Recurring]"
	}

	if rule.Type == models.RuleTypeIncome {
		var count int64
		if err := s.db.Model(&models.Income{}).
			Where("rule_id = ? AND date = ?", rule.ID, date).
			Count(&count).Error; err != nil {
			return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return false, nil
		}
		record := &models.Income{
			UserID:   rule.UserID,
			Source:   rule.Source,
			Category: rule.Category,
			Amount:   rule.Amount,
			Date:     date,
			Notes:    notes,
			RuleID:   &rule.ID,
		}
		if err := s.db.Create(record).Error; err != nil {
			return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return true, nil
	}

	var count int64
	if err := s.db.Model(&models.Expense{}).
		Where("rule_id = ? AND date = ?", rule.ID, date).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return false, nil
	}
	record := &models.Expense{
		UserID:   rule.UserID,
		Source:   rule.Source,
		Category: rule.Category,
		Amount:   rule.Amount,
		Date:     date,
		Notes:    notes,
		RuleID:   &rule.ID,
	}
	if err := s.db.Create(record).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return true, nil
}
