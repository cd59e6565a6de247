package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "satang/internal/errors"
	"satang/internal/pagination"
	"satang/internal/services"
)

// IncomeHandler handles income record requests.
type IncomeHandler struct {
	incomeService services.IncomeServicer
	auditService  services.AuditServicer
}

// NewIncomeHandler creates a new IncomeHandler.
func NewIncomeHandler(incomeService services.IncomeServicer, auditService services.AuditServicer) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService, auditService: auditService}
}

// AddIncomeRequest represents the request payload for recording an income
type AddIncomeRequest struct {
	Source     string `json:"source" binding:"required,min=1,max=100"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	Date       string `json:"date"` // defaults to today when omitted
	CategoryID *uint  `json:"category_id"`
	Category   string `json:"category" binding:"max=100"`
	Icon       string `json:"icon" binding:"max=50"`
}

// ListRecordsQuery holds the list filters shared by income and expense listings.
type ListRecordsQuery struct {
	pagination.PageRequest
	From     string `form:"from"`
	To       string `form:"to"`
	Category string `form:"category"`
}

// filter converts the query parameters into a service-level record filter.
func (q *ListRecordsQuery) filter() (services.RecordFilter, error) {
	var filter services.RecordFilter
	if q.From != "" {
		from, err := time.Parse("2006-01-02", q.From)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "from must be in YYYY-MM-DD format")
		}
		filter.FromDate = &from
	}
	if q.To != "" {
		to, err := time.Parse("2006-01-02", q.To)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must be in YYYY-MM-DD format")
		}
		filter.ToDate = &to
	}
	if q.Category != "" {
		filter.Category = &q.Category
	}
	return filter, nil
}

// AddIncome records a new income
// @Summary     Record an income
// @Description Record an income; active auto-allocating goals receive their share afterwards
// @Tags        income
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddIncomeRequest true "Income details"
// @Success     201 {object} map[string]interface{} "Income recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income [post]
func (h *IncomeHandler) AddIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var date time.Time
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be in YYYY-MM-DD format"))
			return
		}
	}

	income, err := h.incomeService.AddIncome(userID, req.Source, req.Amount, date, req.CategoryID, req.Category, req.Icon)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_INCOME", "income", income.ID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "source": req.Source})

	c.JSON(http.StatusCreated, gin.H{"income": income})
}

// GetIncomes lists the user's incomes
// @Summary     List incomes
// @Description Get the authenticated user's income records, newest first
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       from query string false "Start date (YYYY-MM-DD)"
// @Param       to query string false "End date (YYYY-MM-DD)"
// @Param       category query string false "Category filter"
// @Success     200 {object} pagination.PageResponse[models.Income] "Paginated incomes"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income [get]
func (h *IncomeHandler) GetIncomes(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := query.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.incomeService.GetUserIncomes(userID, query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteIncome deletes an income record
// @Summary     Delete an income
// @Description Delete one of the user's income records
// @Tags        income
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Income ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /income/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	incomeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.incomeService.DeleteIncome(userID, incomeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INCOME", "income", incomeID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Income deleted"})
}
