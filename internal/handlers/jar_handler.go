package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "satang/internal/errors"
	"satang/internal/pagination"
	"satang/internal/services"
)

// JarHandler handles jar and transfer-related requests.
type JarHandler struct {
	jarService    services.JarServicer
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewJarHandler creates a new JarHandler.
func NewJarHandler(jarService services.JarServicer, ledgerService services.LedgerServicer, auditService services.AuditServicer) *JarHandler {
	return &JarHandler{jarService: jarService, ledgerService: ledgerService, auditService: auditService}
}

// CreateJarRequest represents the request payload for creating a jar
type CreateJarRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Color     string `json:"color" binding:"omitempty,hex_color"`
	IsPrimary bool   `json:"is_primary"`
}

// MoveMoneyRequest represents a deposit or withdrawal against one jar.
type MoveMoneyRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Memo   string `json:"memo" binding:"max=255"`
}

// TransferRequest represents a jar-to-jar movement.
type TransferRequest struct {
	FromJarID uint   `json:"from_jar_id" binding:"required"`
	ToJarID   uint   `json:"to_jar_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Memo      string `json:"memo" binding:"max=255"`
}

// JarResponse represents a jar in the response
type JarResponse struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsPrimary bool   `json:"is_primary"`
	Balance   int64  `json:"balance"`
}

// CreateJar handles the creation of a new jar
// @Summary     Create a jar
// @Description Create a new money jar for the authenticated user
// @Tags        jars
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateJarRequest true "Jar details"
// @Success     201 {object} JarResponse "Jar created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate jar name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /jars [post]
func (h *JarHandler) CreateJar(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateJarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	jar, err := h.jarService.CreateJar(userID, req.Name, req.Color, req.IsPrimary)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_JAR", "jar", jar.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"jar": jar})
}

// GetJars lists the user's jars
// @Summary     List jars
// @Description Get all jars for the authenticated user
// @Tags        jars
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} JarResponse "Jars"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /jars [get]
func (h *JarHandler) GetJars(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	jars, err := h.jarService.GetUserJars(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jars": jars})
}

// GetJar retrieves one jar
// @Summary     Get a jar
// @Description Get a single jar by ID
// @Tags        jars
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Jar ID"
// @Success     200 {object} JarResponse "Jar"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Jar not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /jars/{id} [get]
func (h *JarHandler) GetJar(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	jarID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	jar, err := h.jarService.GetJarByID(userID, jarID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jar": jar})
}

// DeleteJar deletes an empty jar
// @Summary     Delete a jar
// @Description Delete a jar; only allowed when its balance is zero
// @Tags        jars
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Jar ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     400 {object} ErrorResponse "Jar not empty"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Jar not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /jars/{id} [delete]
func (h *JarHandler) DeleteJar(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	jarID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.jarService.DeleteJar(userID, jarID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_JAR", "jar", jarID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Jar deleted"})
}

// FundJar deposits free cash into a jar
// @Summary     Fund a jar
// @Description Move money from free cash into a jar
// @Tags        jars
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Jar ID"
// @Param       request body MoveMoneyRequest true "Amount and memo"
// @Success     200 {object} services.TransferResult "Transfer result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Jar not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /jars/{id}/fund [post]
func (h *JarHandler) FundJar(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	jarID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MoveMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.ledgerService.Transfer(userID, nil, &jarID, req.Amount, req.Memo, nil)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "FUND_JAR", "jar", jarID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusOK, result)
}

// WithdrawJar moves money from a jar back to free cash
// @Summary     Withdraw from a jar
// @Description Move money from a jar back to free cash
// @Tags        jars
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Jar ID"
// @Param       request body MoveMoneyRequest true "Amount and memo"
// @Success     200 {object} services.TransferResult "Transfer result"
// @Failure     400 {object} ErrorResponse "Insufficient balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Jar not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /jars/{id}/withdraw [post]
func (h *JarHandler) WithdrawJar(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	jarID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MoveMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.ledgerService.Transfer(userID, &jarID, nil, req.Amount, req.Memo, nil)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "WITHDRAW_JAR", "jar", jarID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount})

	c.JSON(http.StatusOK, result)
}

// TransferBetweenJars moves money between two jars
// @Summary     Transfer between jars
// @Description Move money from one jar to another atomically
// @Tags        jars
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransferRequest true "Transfer details"
// @Success     200 {object} services.TransferResult "Transfer result"
// @Failure     400 {object} ErrorResponse "Insufficient balance or same jar"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Jar not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /jars/transfer [post]
func (h *JarHandler) TransferBetweenJars(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.ledgerService.Transfer(userID, &req.FromJarID, &req.ToJarID, req.Amount, req.Memo, nil)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "TRANSFER_JARS", "jar", req.FromJarID, c.ClientIP(),
		map[string]interface{}{"to_jar_id": req.ToJarID, "amount": req.Amount})

	c.JSON(http.StatusOK, result)
}

// GetTransfers lists the user's transfer history
// @Summary     List transfers
// @Description Get the authenticated user's jar transfer history, newest first
// @Tags        jars
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.JarTransfer] "Paginated transfers"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /jars/transfers [get]
func (h *JarHandler) GetTransfers(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.jarService.GetUserTransfers(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
