package models

import (
	"strings"
	"testing"

	"elibrary/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() BookFields {
	return BookFields{
		Title:      "Dune",
		Authors:    "Herbert",
		Publishers: "Ace",
		Date:       "1965",
		ISBN:       "0441013597",
	}
}

func TestBookFields_Validate(t *testing.T) {
	f := validFields()
	require.NoError(t, f.Validate("books.add"))

	tests := []struct {
		name   string
		mutate func(f *BookFields)
		want   string
	}{
		{"empty title", func(f *BookFields) { f.Title = "" }, "title is required"},
		{"blank authors", func(f *BookFields) { f.Authors = "   " }, "authors is required"},
		{"empty publishers", func(f *BookFields) { f.Publishers = "" }, "publishers is required"},
		{"empty date", func(f *BookFields) { f.Date = "" }, "date is required"},
		{"empty isbn", func(f *BookFields) { f.ISBN = "" }, "isbn is required"},
		{"long title", func(f *BookFields) { f.Title = strings.Repeat("x", 51) }, "title must be at most 50 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)

			err := f.Validate("books.add")
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.want, apperror.PublicMessage(err))
		})
	}
}

func TestBookFields_ValidateCountsRunes(t *testing.T) {
	f := validFields()
	f.Title = strings.Repeat("é", 50)

	assert.NoError(t, f.Validate("books.add"))
}

func TestBookFields_ValidateTrims(t *testing.T) {
	f := validFields()
	f.Title = "  Dune  "

	require.NoError(t, f.Validate("books.add"))
	assert.Equal(t, "Dune", f.Title)
}

func TestBookFields_Columns(t *testing.T) {
	cols := validFields().Columns()

	assert.Len(t, cols, 5)
	assert.Equal(t, "0441013597", cols["isbn"])
	assert.NotContains(t, cols, "status")
	assert.NotContains(t, cols, "borrowed_by")
}

func TestBookStatus_String(t *testing.T) {
	assert.Equal(t, "available", StatusAvailable.String())
	assert.Equal(t, "borrowed", StatusBorrowed.String())
	assert.Equal(t, "unknown", BookStatus(7).String())
}
