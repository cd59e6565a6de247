package services

import (
	"testing"
	"time"

	"satang/internal/models"
	"satang/internal/testutil"
)

func utcDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func intPtr(n int) *int { return &n }

func TestCreateRule(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 420)
		user := testutil.CreateTestUser(t, db)

		rule, err := svc.CreateRule(user.ID, models.RuleTypeIncome, "Salary", "Employer",
			500000, models.RepeatMonthly, intPtr(25), utcDate(2024, time.January, 25), nil, "", nil)
		testutil.AssertNoError(t, err)

		if rule.ID == 0 {
			t.Fatal("expected non-zero rule ID")
		}
		if !rule.IsActive {
			t.Error("expected rule active by default")
		}
		if rule.TZOffsetMinutes != 420 {
			t.Errorf("expected default tz offset 420, got %d", rule.TZOffsetMinutes)
		}
		if rule.LastGeneratedAt != nil {
			t.Error("expected nil cursor on a fresh rule")
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 420)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateRule(user.ID, models.RuleTypeIncome, "Salary", "",
			0, models.RepeatMonthly, nil, utcDate(2024, time.January, 1), nil, "", nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_day_of_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 420)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateRule(user.ID, models.RuleTypeIncome, "Salary", "",
			1000, models.RepeatMonthly, intPtr(32), utcDate(2024, time.January, 1), nil, "", nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestRunOnce(t *testing.T) {
	// Monthly on the 15th, starting 2024-01-15, Bangkok offset, evaluated
	// on 2024-04-20: exactly Jan 15, Feb 15, Mar 15, Apr 15.
	t.Run("monthly_catchup_four_occurrences", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 420)
		user := testutil.CreateTestUser(t, db)

		tz := 420
		rule, err := svc.CreateRule(user.ID, models.RuleTypeIncome, "Salary", "Employer",
			500000, models.RepeatMonthly, intPtr(15), utcDate(2024, time.January, 15), nil, "", &tz)
		testutil.AssertNoError(t, err)

		now := time.Date(2024, time.April, 20, 12, 0, 0, 0, time.UTC)
		generated, err := svc.RunOnce(&user.ID, now)
		testutil.AssertNoError(t, err)

		if generated != 4 {
			t.Fatalf("expected 4 generated incomes, got %d", generated)
		}

		var incomes []models.Income
		db.Where("rule_id = ?", rule.ID).Order("date ASC").Find(&incomes)
		if len(incomes) != 4 {
			t.Fatalf("expected 4 income rows, got %d", len(incomes))
		}

		// Local midnight in UTC+7 is 17:00 UTC the previous day.
		want := []time.Time{
			time.Date(2024, time.January, 14, 17, 0, 0, 0, time.UTC),
			time.Date(2024, time.February, 14, 17, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 14, 17, 0, 0, 0, time.UTC),
			time.Date(2024, time.April, 14, 17, 0, 0, 0, time.UTC),
		}
		for i, income := range incomes {
			if !income.Date.UTC().Equal(want[i]) {
				t.Errorf("occurrence %d: expected %v, got %v", i, want[i], income.Date.UTC())
			}
		}

		updated, err := svc.GetRuleByID(user.ID, rule.ID)
		testutil.AssertNoError(t, err)
		if updated.LastGeneratedAt == nil || !updated.LastGeneratedAt.UTC().Equal(want[3]) {
			t.Errorf("expected cursor at %v, got %v", want[3], updated.LastGeneratedAt)
		}
		if updated.LastRunAt == nil {
			t.Error("expected last_run_at stamped")
		}
	})

	t.Run("second_run_is_noop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		tz := 0
		_, err := svc.CreateRule(user.ID, models.RuleTypeIncome, "Salary", "",
			500000, models.RepeatMonthly, intPtr(15), utcDate(2024, time.January, 15), nil, "", &tz)
		testutil.AssertNoError(t, err)

		now := time.Date(2024, time.April, 20, 12, 0, 0, 0, time.UTC)
		first, err := svc.RunOnce(&user.ID, now)
		testutil.AssertNoError(t, err)
		if first != 4 {
			t.Fatalf("expected 4 on first run, got %d", first)
		}

		second, err := svc.RunOnce(&user.ID, now)
		testutil.AssertNoError(t, err)
		if second != 0 {
			t.Errorf("expected 0 on immediate second run, got %d", second)
		}

		var count int64
		db.Model(&models.Income{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 4 {
			t.Errorf("expected 4 income rows total, got %d", count)
		}
	})

	t.Run("cursor_resumes_across_runs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		tz := 0
		_, err := svc.CreateRule(user.ID, models.RuleTypeIncome, "Salary", "",
			500000, models.RepeatMonthly, intPtr(15), utcDate(2024, time.January, 15), nil, "", &tz)
		testutil.AssertNoError(t, err)

		n1, err := svc.RunOnce(&user.ID, time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if n1 != 2 {
			t.Fatalf("expected 2 occurrences by Feb 20, got %d", n1)
		}

		n2, err := svc.RunOnce(&user.ID, time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if n2 != 2 {
			t.Fatalf("expected 2 more occurrences by Apr 20, got %d", n2)
		}

		var count int64
		db.Model(&models.Income{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 4 {
			t.Errorf("expected 4 income rows total, got %d", count)
		}
	})

	t.Run("monthly_day_31_clamps_to_february", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		tz := 0
		rule, err := svc.CreateRule(user.ID, models.RuleTypeExpense, "Rent", "",
			1200000, models.RepeatMonthly, intPtr(31), utcDate(2024, time.January, 31), nil, "", &tz)
		testutil.AssertNoError(t, err)

		now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
		generated, err := svc.RunOnce(&user.ID, now)
		testutil.AssertNoError(t, err)
		if generated != 2 {
			t.Fatalf("expected 2 occurrences, got %d", generated)
		}

		var expenses []models.Expense
		db.Where("rule_id = ?", rule.ID).Order("date ASC").Find(&expenses)
		// 2024 is a leap year: the February occurrence lands on the 29th.
		if !expenses[1].Date.UTC().Equal(utcDate(2024, time.February, 29)) {
			t.Errorf("expected Feb 29 occurrence, got %v", expenses[1].Date.UTC())
		}

		// The anchor day recovers after the short month.
		n, err := svc.RunOnce(&user.ID, time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if n != 1 {
			t.Fatalf("expected 1 more occurrence, got %d", n)
		}
		db.Where("rule_id = ?", rule.ID).Order("date ASC").Find(&expenses)
		if !expenses[2].Date.UTC().Equal(utcDate(2024, time.March, 31)) {
			t.Errorf("expected Mar 31 occurrence, got %v", expenses[2].Date.UTC())
		}
	})

	t.Run("monthly_day_31_non_leap_february", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		tz := 0
		rule, err := svc.CreateRule(user.ID, models.RuleTypeExpense, "Rent", "",
			1200000, models.RepeatMonthly, intPtr(31), utcDate(2023, time.January, 31), nil, "", &tz)
		testutil.AssertNoError(t, err)

		_, err = svc.RunOnce(&user.ID, time.Date(2023, time.March, 5, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		var expenses []models.Expense
		db.Where("rule_id = ?", rule.ID).Order("date ASC").Find(&expenses)
		if len(expenses) != 2 {
			t.Fatalf("expected 2 expense rows, got %d", len(expenses))
		}
		if !expenses[1].Date.UTC().Equal(utcDate(2023, time.February, 28)) {
			t.Errorf("expected Feb 28 occurrence, got %v", expenses[1].Date.UTC())
		}
	})

	t.Run("weekly_steps_seven_days", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		rule := testutil.CreateTestRule(t, db, user.ID, models.RuleTypeIncome,
			models.RepeatWeekly, 10000, utcDate(2024, time.January, 1))

		generated, err := svc.RunOnce(&user.ID, time.Date(2024, time.January, 22, 6, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if generated != 4 {
			t.Fatalf("expected 4 weekly occurrences, got %d", generated)
		}

		var incomes []models.Income
		db.Where("rule_id = ?", rule.ID).Order("date ASC").Find(&incomes)
		for i, day := range []int{1, 8, 15, 22} {
			if !incomes[i].Date.UTC().Equal(utcDate(2024, time.January, day)) {
				t.Errorf("occurrence %d: expected Jan %d, got %v", i, day, incomes[i].Date.UTC())
			}
		}
	})

	t.Run("yearly_leap_day_clamps", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		rule := testutil.CreateTestRule(t, db, user.ID, models.RuleTypeIncome,
			models.RepeatYearly, 50000, utcDate(2024, time.February, 29))

		generated, err := svc.RunOnce(&user.ID, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if generated != 2 {
			t.Fatalf("expected 2 yearly occurrences, got %d", generated)
		}

		var incomes []models.Income
		db.Where("rule_id = ?", rule.ID).Order("date ASC").Find(&incomes)
		if !incomes[1].Date.UTC().Equal(utcDate(2025, time.February, 28)) {
			t.Errorf("expected Feb 28 in the non-leap year, got %v", incomes[1].Date.UTC())
		}
	})

	t.Run("end_date_bounds_generation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		tz := 0
		end := utcDate(2024, time.January, 10)
		_, err := svc.CreateRule(user.ID, models.RuleTypeIncome, "Side gig", "",
			10000, models.RepeatWeekly, nil, utcDate(2024, time.January, 1), &end, "", &tz)
		testutil.AssertNoError(t, err)

		generated, err := svc.RunOnce(&user.ID, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if generated != 2 {
			t.Errorf("expected only Jan 1 and Jan 8 inside the end date, got %d", generated)
		}
	})

	t.Run("monthly_start_snaps_to_day_of_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		tz := 0
		rule, err := svc.CreateRule(user.ID, models.RuleTypeIncome, "Salary", "",
			500000, models.RepeatMonthly, intPtr(15), utcDate(2024, time.January, 10), nil, "", &tz)
		testutil.AssertNoError(t, err)

		generated, err := svc.RunOnce(&user.ID, time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if generated != 1 {
			t.Fatalf("expected 1 occurrence, got %d", generated)
		}

		var income models.Income
		db.Where("rule_id = ?", rule.ID).First(&income)
		if !income.Date.UTC().Equal(utcDate(2024, time.January, 15)) {
			t.Errorf("expected first occurrence snapped to Jan 15, got %v", income.Date.UTC())
		}
	})

	t.Run("future_start_not_due", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		rule := testutil.CreateTestRule(t, db, user.ID, models.RuleTypeIncome,
			models.RepeatWeekly, 10000, utcDate(2024, time.June, 1))

		generated, err := svc.RunOnce(&user.ID, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if generated != 0 {
			t.Errorf("expected nothing generated before the start date, got %d", generated)
		}

		updated, err := svc.GetRuleByID(user.ID, rule.ID)
		testutil.AssertNoError(t, err)
		if updated.LastRunAt == nil {
			t.Error("expected last_run_at stamped even when nothing is due")
		}
		if updated.LastGeneratedAt != nil {
			t.Error("expected cursor untouched when nothing is due")
		}
	})

	t.Run("inactive_rules_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		rule := testutil.CreateTestRule(t, db, user.ID, models.RuleTypeIncome,
			models.RepeatWeekly, 10000, utcDate(2024, time.January, 1))
		_, err := svc.ToggleRule(user.ID, rule.ID, false)
		testutil.AssertNoError(t, err)

		generated, err := svc.RunOnce(&user.ID, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if generated != 0 {
			t.Errorf("expected inactive rule to generate nothing, got %d", generated)
		}
	})

	t.Run("user_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		testutil.CreateTestRule(t, db, user1.ID, models.RuleTypeIncome,
			models.RepeatWeekly, 10000, utcDate(2024, time.January, 1))
		testutil.CreateTestRule(t, db, user2.ID, models.RuleTypeIncome,
			models.RepeatWeekly, 10000, utcDate(2024, time.January, 1))

		generated, err := svc.RunOnce(&user1.ID, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if generated != 2 {
			t.Fatalf("expected 2 occurrences for user1, got %d", generated)
		}

		var count int64
		db.Model(&models.Income{}).Where("user_id = ?", user2.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected user2 untouched, got %d incomes", count)
		}
	})

	t.Run("expense_rules_tag_notes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		tz := 0
		rule, err := svc.CreateRule(user.ID, models.RuleTypeExpense, "Utilities", "Provider",
			30000, models.RepeatWeekly, nil, utcDate(2024, time.January, 1), nil, "Electric bill", &tz)
		testutil.AssertNoError(t, err)

		_, err = svc.RunOnce(&user.ID, time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		var expense models.Expense
		db.Where("rule_id = ?", rule.ID).First(&expense)
		if expense.Notes != "Electric bill [Recurring]" {
			t.Errorf("expected recurring marker in notes, got %q", expense.Notes)
		}
		if expense.Category != "Utilities" {
			t.Errorf("expected category Utilities, got %s", expense.Category)
		}
		if expense.Amount != 30000 {
			t.Errorf("expected amount 30000, got %d", expense.Amount)
		}
	})
}

func TestUpdateRule(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		rule := testutil.CreateTestRule(t, db, user.ID, models.RuleTypeIncome,
			models.RepeatWeekly, 10000, utcDate(2024, time.January, 1))

		newAmount := int64(20000)
		updated, err := svc.UpdateRule(user.ID, rule.ID, RuleUpdateFields{Amount: &newAmount})
		testutil.AssertNoError(t, err)
		if updated.Amount != 20000 {
			t.Errorf("expected amount 20000, got %d", updated.Amount)
		}
		if updated.Repeat != models.RepeatWeekly {
			t.Errorf("expected repeat untouched, got %s", updated.Repeat)
		}
	})

	t.Run("end_date_set_and_cleared", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		rule := testutil.CreateTestRule(t, db, user.ID, models.RuleTypeIncome,
			models.RepeatWeekly, 10000, utcDate(2024, time.January, 1))

		endDate := utcDate(2024, time.June, 30)
		endDatePtr := &endDate
		updated, err := svc.UpdateRule(user.ID, rule.ID, RuleUpdateFields{EndDate: &endDatePtr})
		testutil.AssertNoError(t, err)
		if updated.EndDate == nil || !updated.EndDate.Equal(endDate) {
			t.Fatalf("expected end date %v, got %v", endDate, updated.EndDate)
		}

		// Untouched on an update that does not mention it
		newAmount := int64(20000)
		updated, err = svc.UpdateRule(user.ID, rule.ID, RuleUpdateFields{Amount: &newAmount})
		testutil.AssertNoError(t, err)
		if updated.EndDate == nil {
			t.Fatal("expected end date to survive unrelated update")
		}

		// Inner nil removes it
		var cleared *time.Time
		updated, err = svc.UpdateRule(user.ID, rule.ID, RuleUpdateFields{EndDate: &cleared})
		testutil.AssertNoError(t, err)
		if updated.EndDate != nil {
			t.Errorf("expected end date cleared, got %v", updated.EndDate)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		amount := int64(100)
		_, err := svc.UpdateRule(user.ID, 9999, RuleUpdateFields{Amount: &amount})
		testutil.AssertAppError(t, err, "RULE_NOT_FOUND")
	})
}

func TestDeleteRule(t *testing.T) {
	t.Run("generated_records_survive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurrenceService(db, 0)
		user := testutil.CreateTestUser(t, db)

		rule := testutil.CreateTestRule(t, db, user.ID, models.RuleTypeIncome,
			models.RepeatWeekly, 10000, utcDate(2024, time.January, 1))

		_, err := svc.RunOnce(&user.ID, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteRule(user.ID, rule.ID))

		var count int64
		db.Model(&models.Income{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 2 {
			t.Errorf("expected generated incomes to survive rule deletion, got %d", count)
		}
	})
}
