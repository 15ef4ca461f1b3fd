package handler

import (
	"context"
	"net/http"
	"time"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/middleware"
	"elibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	svc     service.CatalogService
	timeout time.Duration
}

func NewBookHandler(svc service.CatalogService, timeout time.Duration) *BookHandler {
	return &BookHandler{svc: svc, timeout: timeout}
}

// List every book in the catalog
func (h *BookHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	books, err := h.svc.ListBooks(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Books retrieved successfully", books)
}

func (h *BookHandler) Get(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	book, err := h.svc.GetBook(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Book retrieved successfully", book)
}

func (h *BookHandler) Add(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	book, err := h.svc.AddBook(ctx, req.Fields())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Book added successfully", book)
}

func (h *BookHandler) Update(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.svc.UpdateBook(ctx, id, req.Fields()); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Book updated successfully", nil)
}

func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.svc.DeleteBook(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Book deleted successfully", nil)
}

// Borrow lends the book to the caller identified by the bearer token.
func (h *BookHandler) Borrow(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	userID, exists := middleware.UserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.Fail("user not authenticated"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.svc.BorrowBook(ctx, id, userID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Book borrowed successfully", nil)
}

func (h *BookHandler) Return(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.svc.ReturnBook(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Book returned successfully", nil)
}

// bookID binds :book_id and answers 400 itself when it is not a positive integer.
func bookID(c *gin.Context) (int64, bool) {
	var uri dto.BookIDURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, "invalid book id")
		return 0, false
	}
	return uri.BookID, true
}
