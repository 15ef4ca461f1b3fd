package repository

import (
	"context"
	"errors"
	"time"

	"elibrary/internal/apperror"
	"elibrary/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookRepository is the catalog: the only writer of book rows.
// Every method returns either nil or an *apperror.Error.
type BookRepository interface {
	ListAll(ctx context.Context) ([]models.Book, error)
	Get(ctx context.Context, id int64) (*models.Book, error)
	Add(ctx context.Context, fields models.BookFields) (*models.Book, error)
	Update(ctx context.Context, id int64, fields models.BookFields) error
	Delete(ctx context.Context, id int64) error
	Borrow(ctx context.Context, id, userID int64) error
	Return(ctx context.Context, id int64) error
}

type bookRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// ListAll returns every book ordered by id, an empty slice when there are none.
func (r *bookRepository) ListAll(ctx context.Context) ([]models.Book, error) {
	books := make([]models.Book, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&books).Error; err != nil {
		return nil, apperror.Storage("books.list", err)
	}
	return books, nil
}

func (r *bookRepository) Get(ctx context.Context, id int64) (*models.Book, error) {
	const op = "books.get"

	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(op, "book %d not found", id)
		}
		return nil, apperror.Storage(op, err)
	}
	return &book, nil
}

func (r *bookRepository) Add(ctx context.Context, fields models.BookFields) (*models.Book, error) {
	const op = "books.add"

	if err := fields.Validate(op); err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:       fields.Title,
		Authors:     fields.Authors,
		Publishers:  fields.Publishers,
		Date:        fields.Date,
		ISBN:        fields.ISBN,
		Status:      models.StatusAvailable,
		BorrowedBy:  models.NotBorrowed,
		LastUpdated: r.now(),
	}

	// the UNIQUE (title, isbn) constraint is the guard, no pre-check
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.ConstraintViolation(op, err,
				"a book titled %q with isbn %q already exists", fields.Title, fields.ISBN)
		}
		if isCheckViolation(err) {
			return nil, apperror.Validation(op, "book fields violate catalog constraints")
		}
		return nil, apperror.Storage(op, err)
	}
	return book, nil
}

// Update rewrites the five editable fields and last_updated in one
// transaction. The row is locked first so a missing book is reported as
// NotFound and concurrent edits serialize; status and borrowed_by are not
// part of the statement.
func (r *bookRepository) Update(ctx context.Context, id int64, fields models.BookFields) error {
	const op = "books.update"

	if err := fields.Validate(op); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Book
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&locked, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound(op, "book %d not found", id)
			}
			return err
		}

		columns := fields.Columns()
		columns["last_updated"] = r.now()

		return tx.Model(&models.Book{}).Where("id = ?", id).Updates(columns).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ConstraintViolation(op, err,
				"a book titled %q with isbn %q already exists", fields.Title, fields.ISBN)
		}
		return apperror.Storage(op, err)
	}
	return nil
}

// Delete removes the row. Borrowed books are deleted like any other.
func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	const op = "books.delete"

	res := r.db.WithContext(ctx).Delete(&models.Book{}, id)
	if res.Error != nil {
		return apperror.Storage(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(op, "book %d not found", id)
	}
	return nil
}

// Borrow moves an AVAILABLE book to BORROWED by userID.
// The state check and the write are one conditional UPDATE; its affected row
// count decides success, so two concurrent borrowers cannot both win.
func (r *bookRepository) Borrow(ctx context.Context, id, userID int64) error {
	const op = "books.borrow"

	if userID < 0 {
		return apperror.Validation(op, "user id must not be negative")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// users are read here, never written
		var users int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 {
			return apperror.NotFound(op, "user %d not found", userID)
		}

		res := tx.Model(&models.Book{}).
			Where("id = ? AND status = ?", id, int16(models.StatusAvailable)).
			Updates(map[string]any{
				"status":       int16(models.StatusBorrowed),
				"borrowed_by":  userID,
				"last_updated": r.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
		return r.transitionFailure(tx, op, id, "book %d is already borrowed")
	})
	return apperror.Storage(op, err)
}

// Return moves a BORROWED book back to AVAILABLE and clears borrowed_by.
func (r *bookRepository) Return(ctx context.Context, id int64) error {
	const op = "books.return"

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Book{}).
			Where("id = ? AND status = ?", id, int16(models.StatusBorrowed)).
			Updates(map[string]any{
				"status":       int16(models.StatusAvailable),
				"borrowed_by":  models.NotBorrowed,
				"last_updated": r.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
		return r.transitionFailure(tx, op, id, "book %d is not borrowed")
	})
	return apperror.Storage(op, err)
}

// transitionFailure explains why a conditional update matched no row:
// either the book does not exist or it was not in the expected state.
func (r *bookRepository) transitionFailure(tx *gorm.DB, op string, id int64, conflict string) error {
	var n int64
	if err := tx.Model(&models.Book{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound(op, "book %d not found", id)
	}
	return apperror.Conflict(op, conflict, id)
}
