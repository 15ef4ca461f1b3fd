package dto

import "elibrary/internal/microservices/http-api/models"

// BookRequest is the body of add and update. Emptiness and length are checked
// by the catalog so every entry point gets the same messages.
type BookRequest struct {
	Title      string `json:"title"`
	Authors    string `json:"authors"`
	Publishers string `json:"publishers"`
	Date       string `json:"date"`
	ISBN       string `json:"isbn"`
}

func (r BookRequest) Fields() models.BookFields {
	return models.BookFields{
		Title:      r.Title,
		Authors:    r.Authors,
		Publishers: r.Publishers,
		Date:       r.Date,
		ISBN:       r.ISBN,
	}
}

// BookIDURI binds the :book_id path parameter.
type BookIDURI struct {
	BookID int64 `uri:"book_id" binding:"required,min=1"`
}
