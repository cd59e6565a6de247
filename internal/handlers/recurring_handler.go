package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "satang/internal/errors"
	"satang/internal/models"
	"satang/internal/services"
)

// RecurringHandler handles recurring rule requests.
type RecurringHandler struct {
	recurrenceService services.RecurrenceServicer
	auditService      services.AuditServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurrenceService services.RecurrenceServicer, auditService services.AuditServicer) *RecurringHandler {
	return &RecurringHandler{recurrenceService: recurrenceService, auditService: auditService}
}

// CreateRuleRequest represents the request payload for creating a recurring rule
type CreateRuleRequest struct {
	Type            string `json:"type" binding:"required,rule_type"`
	Category        string `json:"category" binding:"required,min=1,max=100"`
	Source          string `json:"source" binding:"max=100"`
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	Repeat          string `json:"repeat" binding:"omitempty,rule_repeat"`
	DayOfMonth      *int   `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	StartDate       string `json:"start_date" binding:"required"`
	EndDate         *string `json:"end_date"`
	Notes           string `json:"notes" binding:"max=255"`
	TZOffsetMinutes *int   `json:"tz_offset_minutes" binding:"omitempty,min=-720,max=840"`
}

// UpdateRuleRequest represents the request payload for updating a rule.
type UpdateRuleRequest struct {
	Type            *string `json:"type" binding:"omitempty,rule_type"`
	Category        *string `json:"category" binding:"omitempty,min=1,max=100"`
	Source          *string `json:"source" binding:"omitempty,max=100"`
	Amount          *int64  `json:"amount" binding:"omitempty,gt=0"`
	Repeat          *string `json:"repeat" binding:"omitempty,rule_repeat"`
	DayOfMonth      *int    `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	StartDate       *string `json:"start_date"`
	// Empty string clears the end date
	EndDate         *string `json:"end_date"`
	Notes           *string `json:"notes" binding:"omitempty,max=255"`
	TZOffsetMinutes *int    `json:"tz_offset_minutes" binding:"omitempty,min=-720,max=840"`
}

// ToggleRuleRequest enables or disables a rule.
type ToggleRuleRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// RuleResponse represents a recurring rule in the response
type RuleResponse struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Amount    int64  `json:"amount"`
	Repeat    string `json:"repeat"`
	StartDate string `json:"start_date"`
	IsActive  bool   `json:"is_active"`
}

// CreateRule handles the creation of a new recurring rule
// @Summary     Create a recurring rule
// @Description Create a template that generates income/expense records on a schedule
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRuleRequest true "Rule details"
// @Success     201 {object} RuleResponse "Rule created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [post]
func (h *RecurringHandler) CreateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must be in YYYY-MM-DD format"))
		return
	}

	var endDate *time.Time
	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be in YYYY-MM-DD format"))
			return
		}
		endDate = &parsed
	}

	rule, err := h.recurrenceService.CreateRule(userID, models.RuleType(req.Type), req.Category,
		req.Source, req.Amount, models.RepeatKind(req.Repeat), req.DayOfMonth, startDate, endDate,
		req.Notes, req.TZOffsetMinutes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RULE", "recurring_rule", rule.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "repeat": req.Repeat, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// GetRules lists the user's recurring rules
// @Summary     List recurring rules
// @Description Get all recurring rules for the authenticated user
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} RuleResponse "Rules"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring [get]
func (h *RecurringHandler) GetRules(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rules, err := h.recurrenceService.GetUserRules(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// GetRule retrieves one rule
// @Summary     Get a recurring rule
// @Description Get a single recurring rule by ID
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Success     200 {object} RuleResponse "Rule"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [get]
func (h *RecurringHandler) GetRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurrenceService.GetRuleByID(userID, ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// UpdateRule updates rule fields
// @Summary     Update a recurring rule
// @Description Update a rule's schedule or amounts; the generation cursor is not editable
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Param       request body UpdateRuleRequest true "Fields to update"
// @Success     200 {object} RuleResponse "Updated rule"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [put]
func (h *RecurringHandler) UpdateRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.RuleUpdateFields{
		Category:        req.Category,
		Source:          req.Source,
		Amount:          req.Amount,
		DayOfMonth:      req.DayOfMonth,
		Notes:           req.Notes,
		TZOffsetMinutes: req.TZOffsetMinutes,
	}
	if req.Type != nil {
		ruleType := models.RuleType(*req.Type)
		fields.Type = &ruleType
	}
	if req.Repeat != nil {
		repeat := models.RepeatKind(*req.Repeat)
		fields.Repeat = &repeat
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must be in YYYY-MM-DD format"))
			return
		}
		fields.StartDate = &startDate
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			// Empty string clears the end date.
			var cleared *time.Time
			fields.EndDate = &cleared
		} else {
			endDate, err := time.Parse("2006-01-02", *req.EndDate)
			if err != nil {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "end_date must be in YYYY-MM-DD format"))
				return
			}
			endDatePtr := &endDate
			fields.EndDate = &endDatePtr
		}
	}

	rule, err := h.recurrenceService.UpdateRule(userID, ruleID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// ToggleRule enables or disables a rule
// @Summary     Toggle a recurring rule
// @Description Enable or disable generation for a rule
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Param       request body ToggleRuleRequest true "Active flag"
// @Success     200 {object} RuleResponse "Updated rule"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id}/toggle [post]
func (h *RecurringHandler) ToggleRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ToggleRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.recurrenceService.ToggleRule(userID, ruleID, *req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// DeleteRule deletes a rule
// @Summary     Delete a recurring rule
// @Description Delete a rule; records it already generated stay
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Rule ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/{id} [delete]
func (h *RecurringHandler) DeleteRule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurrenceService.DeleteRule(userID, ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RULE", "recurring_rule", ruleID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Rule deleted"})
}

// RunNow generates any due occurrences for the user's rules immediately
// @Summary     Run recurring generation now
// @Description Synchronously catch up all of the user's active rules
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int "Number of records generated"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring/run [post]
func (h *RecurringHandler) RunNow(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	generated, err := h.recurrenceService.RunOnce(&userID, time.Now().UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"generated": generated})
}
