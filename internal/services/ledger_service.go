package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "satang/internal/errors"
	"satang/internal/models"
)

// ledgerService moves money between free cash and jars. It is the only
// code path that mutates jar balances and goal progress.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// Transfer atomically moves amount between two endpoints. A nil fromJarID
// or toJarID means free cash, which is unbounded and not tracked. When
// relatedGoalID is set the goal's cached progress moves with the money:
// +amount when it flows into a jar, -amount when it flows back out.
// Any precondition failure aborts the whole operation with no partial
// writes.
func (s *ledgerService) Transfer(userID uint, fromJarID, toJarID *uint, amount int64, memo string, relatedGoalID *uint) (*TransferResult, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if fromJarID == nil && toJarID == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one of from_jar_id and to_jar_id is required")
	}
	// A same-jar transfer would net to zero but the two absolute balance
	// writes below would not; reject it outright.
	if fromJarID != nil && toJarID != nil && *fromJarID == *toJarID {
		return nil, apperrors.ErrSameJarTransfer
	}

	result := &TransferResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read the source balance inside the transaction so concurrent
		// transfers serialize against the overdraft check.
		var fromJar *models.Jar
		if fromJarID != nil {
			fromJar = &models.Jar{}
			if err := tx.Where("id = ? AND user_id = ?", *fromJarID, userID).First(fromJar).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.WithMessage(apperrors.ErrJarNotFound, "Source jar not found")
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if fromJar.Balance < amount {
				return apperrors.ErrInsufficientBalance
			}
		}

		var toJar *models.Jar
		if toJarID != nil {
			toJar = &models.Jar{}
			if err := tx.Where("id = ? AND user_id = ?", *toJarID, userID).First(toJar).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.WithMessage(apperrors.ErrJarNotFound, "Destination jar not found")
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if fromJar != nil {
			fromJar.Balance -= amount
			if err := tx.Model(fromJar).Update("balance", fromJar.Balance).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if toJar != nil {
			toJar.Balance += amount
			if err := tx.Model(toJar).Update("balance", toJar.Balance).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		transfer := &models.JarTransfer{
			UserID:        userID,
			FromJarID:     fromJarID,
			ToJarID:       toJarID,
			Amount:        amount,
			Memo:          memo,
			RelatedGoalID: relatedGoalID,
		}
		if err := tx.Create(transfer).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var goal *models.Goal
		if relatedGoalID != nil {
			goal = &models.Goal{}
			if err := tx.Where("id = ? AND user_id = ?", *relatedGoalID, userID).First(goal).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrGoalNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			// Sign follows whether money flowed toward the goal's jar or
			// away from it, not the raw direction fields.
			if toJarID != nil {
				goal.CurrentAmount += amount
			} else {
				goal.CurrentAmount -= amount
			}

			reached := goal.CurrentAmount >= goal.TargetAmount
			if reached && goal.Status != models.GoalStatusAchieved {
				goal.Status = models.GoalStatusAchieved
			}
			if !reached && goal.Status == models.GoalStatusAchieved {
				// A withdrawal below target un-achieves the goal.
				goal.Status = models.GoalStatusActive
			}

			if err := tx.Model(goal).Updates(map[string]interface{}{
				"current_amount": goal.CurrentAmount,
				"status":         goal.Status,
			}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		result.Transfer = transfer
		result.FromJar = fromJar
		result.ToJar = toJar
		result.Goal = goal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
