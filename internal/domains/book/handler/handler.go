package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/service"
	loanModel "library-backend/internal/domains/loan/model"
	loanService "library-backend/internal/domains/loan/service"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/utils"
)

type BookHandler struct {
	service     service.ServiceInterface
	loanService loanService.ServiceInterface
}

func NewBookHandler(svc service.ServiceInterface, loanSvc loanService.ServiceInterface) *BookHandler {
	return &BookHandler{
		service:     svc,
		loanService: loanSvc,
	}
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /v1/books (librarian)
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) Create(c *gin.Context) {
	var req bookModel.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.CreateBook(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// ════════════════════════════════════════════════════════════════
// READ: GET /v1/books/:id
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) GetByID(c *gin.Context) {
	id := utils.ParseStringToUUID(c.Param("id"))
	if id == uuid.Nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	resp, err := h.service.GetBookByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ════════════════════════════════════════════════════════════════
// READ: GET /v1/books?page=1&limit=20&search=&genre=&available_only=
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) List(c *gin.Context) {
	var req bookModel.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.ListBooks(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, resp.Books, &response.Meta{
		Page:  resp.Page,
		Limit: resp.Limit,
		Total: resp.Total,
	})
}

// ════════════════════════════════════════════════════════════════
// UPDATE: PUT /v1/books/:id (librarian)
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) Update(c *gin.Context) {
	id := utils.ParseStringToUUID(c.Param("id"))
	if id == uuid.Nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	var req bookModel.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ════════════════════════════════════════════════════════════════
// DELETE: DELETE /v1/books/:id (librarian)
// ════════════════════════════════════════════════════════════════

func (h *BookHandler) Delete(c *gin.Context) {
	id := utils.ParseStringToUUID(c.Param("id"))
	if id == uuid.Nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ════════════════════════════════════════════════════════════════
// LOANS: GET /v1/books/:id/loans (librarian)
// ════════════════════════════════════════════════════════════════

// ListOpenLoans shows who currently holds copies of a title
func (h *BookHandler) ListOpenLoans(c *gin.Context) {
	id := utils.ParseStringToUUID(c.Param("id"))
	if id == uuid.Nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	resp, err := h.loanService.ListOpenLoansForBook(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// handleError maps domain errors to HTTP status codes
func (h *BookHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, bookModel.ErrBookNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, bookModel.ErrISBNAlreadyExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, bookModel.ErrInvalidTotalCopies):
		response.Conflict(c, err.Error())
	case errors.Is(err, loanModel.ErrHasActiveLoans):
		response.Conflict(c, err.Error())
	default:
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalServerError(c, "something went wrong")
	}
}
