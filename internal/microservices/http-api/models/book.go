package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"elibrary/internal/apperror"
)

// BookStatus is the borrow state of a book row.
type BookStatus int16

const (
	StatusAvailable BookStatus = 0
	StatusBorrowed  BookStatus = 1
)

func (s BookStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusBorrowed:
		return "borrowed"
	default:
		return "unknown"
	}
}

// NotBorrowed is the borrowed_by sentinel for an available book.
const NotBorrowed int64 = -1

// MaxFieldLength bounds every editable text column (VARCHAR(50)).
const MaxFieldLength = 50

type Book struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"size:50;not null" json:"title"`
	Authors     string     `gorm:"size:50;not null" json:"authors"`
	Publishers  string     `gorm:"size:50;not null" json:"publishers"`
	Date        string     `gorm:"column:date;size:50;not null" json:"date"`
	ISBN        string     `gorm:"column:isbn;size:50;not null" json:"isbn"`
	Status      BookStatus `gorm:"not null;default:0" json:"status"`
	BorrowedBy  int64      `gorm:"not null;default:-1" json:"borrowed_by"`
	LastUpdated time.Time  `gorm:"column:last_updated;not null" json:"last_updated"`
}

func (Book) TableName() string {
	return "books"
}

// IsBorrowed reports whether the row is in the BORROWED state.
func (b *Book) IsBorrowed() bool {
	return b.Status == StatusBorrowed
}

// BookFields are the five editable columns of a book.
type BookFields struct {
	Title      string
	Authors    string
	Publishers string
	Date       string
	ISBN       string
}

// Validate checks every field is non-empty and within MaxFieldLength.
// Surrounding whitespace is trimmed first.
func (f *BookFields) Validate(op string) error {
	f.Title = strings.TrimSpace(f.Title)
	f.Authors = strings.TrimSpace(f.Authors)
	f.Publishers = strings.TrimSpace(f.Publishers)
	f.Date = strings.TrimSpace(f.Date)
	f.ISBN = strings.TrimSpace(f.ISBN)

	fields := []struct {
		name  string
		value string
	}{
		{"title", f.Title},
		{"authors", f.Authors},
		{"publishers", f.Publishers},
		{"date", f.Date},
		{"isbn", f.ISBN},
	}
	for _, field := range fields {
		if field.value == "" {
			return apperror.Validation(op, "%s is required", field.name)
		}
		if utf8.RuneCountInString(field.value) > MaxFieldLength {
			return apperror.Validation(op, "%s must be at most %d characters", field.name, MaxFieldLength)
		}
	}
	return nil
}

// Columns maps the fields onto their column names for a single UPDATE.
func (f BookFields) Columns() map[string]any {
	return map[string]any{
		"title":      f.Title,
		"authors":    f.Authors,
		"publishers": f.Publishers,
		"date":       f.Date,
		"isbn":       f.ISBN,
	}
}
