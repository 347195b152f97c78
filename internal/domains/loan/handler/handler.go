package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/service"
	userModel "library-backend/internal/domains/user/model"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/utils"
)

type LoanHandler struct {
	service service.ServiceInterface
}

func NewLoanHandler(svc service.ServiceInterface) *LoanHandler {
	return &LoanHandler{
		service: svc,
	}
}

// ════════════════════════════════════════════════════════════════
// BORROW: POST /v1/loans
// ════════════════════════════════════════════════════════════════

func (h *LoanHandler) Borrow(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	var req model.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	resp, err := h.service.Borrow(c.Request.Context(), req.BookID, userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// ════════════════════════════════════════════════════════════════
// RETURN: POST /v1/loans/:id/return
// ════════════════════════════════════════════════════════════════

func (h *LoanHandler) Return(c *gin.Context) {
	loanID := utils.ParseStringToUUID(c.Param("id"))
	if loanID == uuid.Nil {
		response.BadRequest(c, "invalid loan ID")
		return
	}

	userID := c.MustGet("userID").(uuid.UUID)
	role := c.MustGet("role").(string)

	resp, err := h.service.Return(c.Request.Context(), loanID, userID, role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ════════════════════════════════════════════════════════════════
// RENEW: POST /v1/loans/:id/renew
// ════════════════════════════════════════════════════════════════

func (h *LoanHandler) Renew(c *gin.Context) {
	loanID := utils.ParseStringToUUID(c.Param("id"))
	if loanID == uuid.Nil {
		response.BadRequest(c, "invalid loan ID")
		return
	}

	userID := c.MustGet("userID").(uuid.UUID)
	role := c.MustGet("role").(string)

	resp, err := h.service.Renew(c.Request.Context(), loanID, userID, role)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ════════════════════════════════════════════════════════════════
// READ: GET /v1/loans (caller's open loans)
// ════════════════════════════════════════════════════════════════

func (h *LoanHandler) ListOpen(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	resp, err := h.service.ListOpenLoans(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ════════════════════════════════════════════════════════════════
// READ: GET /v1/loans/history (caller's full history)
// ════════════════════════════════════════════════════════════════

func (h *LoanHandler) ListHistory(c *gin.Context) {
	userID := c.MustGet("userID").(uuid.UUID)

	resp, err := h.service.ListHistory(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ════════════════════════════════════════════════════════════════
// READ: GET /v1/users/:id/loans (librarian)
// ════════════════════════════════════════════════════════════════

// ListForUser lets librarians inspect any member's loan history
func (h *LoanHandler) ListForUser(c *gin.Context) {
	userID := utils.ParseStringToUUID(c.Param("id"))
	if userID == uuid.Nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	resp, err := h.service.ListHistory(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// handleError maps domain errors to HTTP status codes
func (h *LoanHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrLoanNotFound),
		errors.Is(err, bookModel.ErrBookNotFound),
		errors.Is(err, userModel.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, bookModel.ErrOutOfStock):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrAlreadyReturned):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrRenewalLimitReached):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrNotLoanOwner):
		response.Forbidden(c, err.Error())
	default:
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalServerError(c, "something went wrong")
	}
}
