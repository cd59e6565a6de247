package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "satang/internal/errors"
	"satang/internal/models"
	"satang/internal/services"
)

// GoalHandler handles savings goal requests.
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService, auditService: auditService}
}

// CreateGoalRequest represents the request payload for creating a goal
type CreateGoalRequest struct {
	Title             string `json:"title" binding:"required,min=1,max=100"`
	TargetAmount      int64  `json:"target_amount" binding:"required,gt=0"`
	TargetDate        string `json:"target_date" binding:"required"`
	JarID             uint   `json:"jar_id" binding:"required"`
	AutoAllocate      bool   `json:"auto_allocate"`
	AutoAllocateType  string `json:"auto_allocate_type" binding:"omitempty,allocation_type"`
	AutoAllocateValue int64  `json:"auto_allocate_value" binding:"gte=0"`
}

// UpdateGoalRequest represents the request payload for updating a goal.
type UpdateGoalRequest struct {
	Title             *string `json:"title" binding:"omitempty,min=1,max=100"`
	TargetAmount      *int64  `json:"target_amount" binding:"omitempty,gt=0"`
	TargetDate        *string `json:"target_date"`
	Status            *string `json:"status" binding:"omitempty,goal_status"`
	AutoAllocate      *bool   `json:"auto_allocate"`
	AutoAllocateType  *string `json:"auto_allocate_type" binding:"omitempty,allocation_type"`
	AutoAllocateValue *int64  `json:"auto_allocate_value" binding:"omitempty,gte=0"`
}

// FundGoalRequest represents the request payload for funding a goal.
type FundGoalRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Memo   string `json:"memo" binding:"max=255"`
}

// AllocateRequest represents a manual auto-allocation trigger.
type AllocateRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Memo   string `json:"memo" binding:"max=255"`
}

// GoalResponse represents a goal in the response
type GoalResponse struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"user_id"`
	Title         string `json:"title"`
	TargetAmount  int64  `json:"target_amount"`
	CurrentAmount int64  `json:"current_amount"`
	TargetDate    string `json:"target_date"`
	JarID         uint   `json:"jar_id"`
	Status        string `json:"status"`
}

// CreateGoal handles the creation of a new goal
// @Summary     Create a goal
// @Description Create a new savings goal tied to one of the user's jars
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} GoalResponse "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Jar not found"
// @Failure     409 {object} ErrorResponse "Duplicate goal title"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "target_date must be in YYYY-MM-DD format"))
		return
	}

	goal, err := h.goalService.CreateGoal(userID, req.Title, req.TargetAmount, targetDate,
		req.JarID, req.AutoAllocate, models.AllocationType(req.AutoAllocateType), req.AutoAllocateValue)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_GOAL", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"title": req.Title, "target_amount": req.TargetAmount})

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetGoals lists the user's goals
// @Summary     List goals
// @Description Get all goals for the authenticated user
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} GoalResponse "Goals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [get]
func (h *GoalHandler) GetGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.GetUserGoals(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// GetGoal retrieves one goal
// @Summary     Get a goal
// @Description Get a single goal by ID
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Goal ID"
// @Success     200 {object} GoalResponse "Goal"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateGoal updates goal fields
// @Summary     Update a goal
// @Description Update a goal's editable fields; progress is only moved by transfers
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Goal ID"
// @Param       request body UpdateGoalRequest true "Fields to update"
// @Success     200 {object} GoalResponse "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.GoalUpdateFields{
		Title:        req.Title,
		TargetAmount: req.TargetAmount,
		AllocEnabled: req.AutoAllocate,
		AllocValue:   req.AutoAllocateValue,
	}
	if req.TargetDate != nil {
		targetDate, err := time.Parse("2006-01-02", *req.TargetDate)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "target_date must be in YYYY-MM-DD format"))
			return
		}
		fields.TargetDate = &targetDate
	}
	if req.Status != nil {
		status := models.GoalStatus(*req.Status)
		fields.Status = &status
	}
	if req.AutoAllocateType != nil {
		allocType := models.AllocationType(*req.AutoAllocateType)
		fields.AllocType = &allocType
	}

	goal, err := h.goalService.UpdateGoal(userID, goalID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal deletes a goal
// @Summary     Delete a goal
// @Description Delete a goal; money already saved stays in its jar
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Goal ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_GOAL", "goal", goalID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}

// FundGoal moves free cash into the goal's jar
// @Summary     Fund a goal
// @Description Move money from free cash into the goal's jar, advancing progress
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Goal ID"
// @Param       request body FundGoalRequest true "Amount and memo"
// @Success     200 {object} services.TransferResult "Transfer result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id}/fund [post]
func (h *GoalHandler) FundGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req FundGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.goalService.FundGoal(userID, goalID, req.Amount, req.Memo)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "FUND_GOAL", "goal", goalID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusOK, result)
}

// AutoAllocate runs the allocator against a given amount
// @Summary     Auto-allocate an amount
// @Description Distribute an amount across active auto-allocating goals by deadline priority
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AllocateRequest true "Amount and memo"
// @Success     200 {object} map[string]interface{} "Allocations made"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/allocate [post]
func (h *GoalHandler) AutoAllocate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	allocations, err := h.goalService.AutoAllocate(userID, req.Amount, req.Memo)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "AUTO_ALLOCATE", "goal", 0, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "allocations": len(allocations)})

	c.JSON(http.StatusOK, gin.H{"allocations": allocations})
}
