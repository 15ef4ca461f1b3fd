package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"elibrary/internal/apperror"
	"elibrary/internal/microservices/http-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dune() models.BookFields {
	return models.BookFields{
		Title:      "Dune",
		Authors:    "Herbert",
		Publishers: "Ace",
		Date:       "1965",
		ISBN:       "0441013597",
	}
}

func (s *RepositorySuite) registerUser(name string) *models.User {
	u, err := s.users.Register(s.ctx(), name, "hash-"+name)
	s.Require().NoError(err)
	return u
}

func (s *RepositorySuite) TestAdd_ReturnsAvailableBook() {
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)

	s.EqualValues(1, book.ID)
	s.Equal(models.StatusAvailable, book.Status)
	s.Equal(models.NotBorrowed, book.BorrowedBy)
	s.False(book.LastUpdated.IsZero())

	stored, err := s.books.Get(s.ctx(), book.ID)
	s.Require().NoError(err)
	s.Equal("Dune", stored.Title)
	s.Equal("0441013597", stored.ISBN)
	s.Equal(models.StatusAvailable, stored.Status)
	s.Equal(models.NotBorrowed, stored.BorrowedBy)
}

func (s *RepositorySuite) TestAdd_DuplicateTitleAndISBN() {
	_, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)

	_, err = s.books.Add(s.ctx(), dune())
	s.ErrorIs(err, apperror.ErrConstraintViolation)

	// same title, different isbn is a different book
	other := dune()
	other.ISBN = "9780441172719"
	_, err = s.books.Add(s.ctx(), other)
	s.NoError(err)

	books, err := s.books.ListAll(s.ctx())
	s.Require().NoError(err)
	s.Len(books, 2)
}

func (s *RepositorySuite) TestAdd_Validation() {
	f := dune()
	f.Authors = ""

	_, err := s.books.Add(s.ctx(), f)
	s.ErrorIs(err, apperror.ErrValidation)

	books, err := s.books.ListAll(s.ctx())
	s.Require().NoError(err)
	s.Empty(books)
}

func (s *RepositorySuite) TestListAll_EmptyAndOrdered() {
	books, err := s.books.ListAll(s.ctx())
	s.Require().NoError(err)
	s.NotNil(books)
	s.Empty(books)

	for i := 0; i < 3; i++ {
		f := dune()
		f.ISBN = fmt.Sprintf("isbn-%d", i)
		_, err := s.books.Add(s.ctx(), f)
		s.Require().NoError(err)
	}

	first, err := s.books.ListAll(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(first, 3)
	for i, b := range first {
		s.EqualValues(i+1, b.ID)
	}

	second, err := s.books.ListAll(s.ctx())
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *RepositorySuite) TestUpdate_AppliesAllFields() {
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)

	edited := models.BookFields{
		Title:      "Dune Messiah",
		Authors:    "Frank Herbert",
		Publishers: "Putnam",
		Date:       "1969",
		ISBN:       "0399128379",
	}
	s.Require().NoError(s.books.Update(s.ctx(), book.ID, edited))

	stored, err := s.books.Get(s.ctx(), book.ID)
	s.Require().NoError(err)
	s.Equal(edited.Title, stored.Title)
	s.Equal(edited.Authors, stored.Authors)
	s.Equal(edited.Publishers, stored.Publishers)
	s.Equal(edited.Date, stored.Date)
	s.Equal(edited.ISBN, stored.ISBN)
	s.False(stored.LastUpdated.Before(book.LastUpdated))
}

func (s *RepositorySuite) TestUpdate_KeepsBorrowState() {
	user := s.registerUser("alice")
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)
	s.Require().NoError(s.books.Borrow(s.ctx(), book.ID, user.ID))

	edited := dune()
	edited.Date = "1966"
	s.Require().NoError(s.books.Update(s.ctx(), book.ID, edited))

	stored, err := s.books.Get(s.ctx(), book.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusBorrowed, stored.Status)
	s.Equal(user.ID, stored.BorrowedBy)
	s.Equal("1966", stored.Date)
}

func (s *RepositorySuite) TestUpdate_NotFound() {
	err := s.books.Update(s.ctx(), 999, dune())
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *RepositorySuite) TestUpdate_Validation() {
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)

	f := dune()
	f.Title = ""
	s.ErrorIs(s.books.Update(s.ctx(), book.ID, f), apperror.ErrValidation)
}

func (s *RepositorySuite) TestUpdate_CollisionLeavesRowUnchanged() {
	first, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)
	second := dune()
	second.ISBN = "other"
	b2, err := s.books.Add(s.ctx(), second)
	s.Require().NoError(err)

	// turning b2 into a copy of first violates UNIQUE (title, isbn)
	edit := dune()
	edit.Authors = "Someone Else"
	err = s.books.Update(s.ctx(), b2.ID, edit)
	s.ErrorIs(err, apperror.ErrConstraintViolation)

	stored, err := s.books.Get(s.ctx(), b2.ID)
	s.Require().NoError(err)
	s.Equal("Herbert", stored.Authors)
	s.Equal("other", stored.ISBN)
	s.NotEqual(first.ID, stored.ID)
}

// A fault injected after the UPDATE statement ran must roll the whole edit back.
func (s *RepositorySuite) TestUpdate_FaultRollsBackAllFields() {
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)
	before, err := s.books.Get(s.ctx(), book.ID)
	s.Require().NoError(err)

	faulty, err := gorm.Open(postgres.New(postgres.Config{Conn: s.db.SQL}), &gorm.Config{})
	s.Require().NoError(err)
	s.Require().NoError(faulty.Callback().Update().After("gorm:update").Register("test:fault", func(tx *gorm.DB) {
		tx.AddError(errors.New("simulated storage fault"))
	}))
	repo := NewBookRepository(faulty)

	edited := models.BookFields{Title: "T", Authors: "A", Publishers: "P", Date: "D", ISBN: "I"}
	err = repo.Update(s.ctx(), book.ID, edited)
	s.ErrorIs(err, apperror.ErrStorage)

	stored, err := s.books.Get(s.ctx(), book.ID)
	s.Require().NoError(err)
	s.Equal("Dune", stored.Title)
	s.Equal("Herbert", stored.Authors)
	s.Equal("Ace", stored.Publishers)
	s.Equal("1965", stored.Date)
	s.Equal("0441013597", stored.ISBN)
	s.True(stored.LastUpdated.Equal(before.LastUpdated))
}

func (s *RepositorySuite) TestDelete() {
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)

	s.Require().NoError(s.books.Delete(s.ctx(), book.ID))
	_, err = s.books.Get(s.ctx(), book.ID)
	s.ErrorIs(err, apperror.ErrNotFound)

	s.ErrorIs(s.books.Delete(s.ctx(), book.ID), apperror.ErrNotFound)
}

func (s *RepositorySuite) TestDelete_Missing() {
	s.ErrorIs(s.books.Delete(s.ctx(), 999), apperror.ErrNotFound)
}

// Deleting a borrowed book is allowed; no loan policy is enforced here.
func (s *RepositorySuite) TestDelete_BorrowedBookIsAllowed() {
	user := s.registerUser("alice")
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)
	s.Require().NoError(s.books.Borrow(s.ctx(), book.ID, user.ID))

	s.NoError(s.books.Delete(s.ctx(), book.ID))
}

func (s *RepositorySuite) TestBorrowReturnScenario() {
	for i := 1; i <= 42; i++ {
		s.registerUser(fmt.Sprintf("reader%02d", i))
	}

	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)
	s.EqualValues(1, book.ID)

	s.Require().NoError(s.books.Borrow(s.ctx(), 1, 42))
	stored, err := s.books.Get(s.ctx(), 1)
	s.Require().NoError(err)
	s.Equal(models.StatusBorrowed, stored.Status)
	s.EqualValues(42, stored.BorrowedBy)

	s.ErrorIs(s.books.Borrow(s.ctx(), 1, 7), apperror.ErrConflict)

	s.Require().NoError(s.books.Return(s.ctx(), 1))
	stored, err = s.books.Get(s.ctx(), 1)
	s.Require().NoError(err)
	s.Equal(models.StatusAvailable, stored.Status)
	s.Equal(models.NotBorrowed, stored.BorrowedBy)

	// round trip leaves everything but last_updated as it was
	s.Equal(book.Title, stored.Title)
	s.Equal(book.Authors, stored.Authors)
	s.Equal(book.Publishers, stored.Publishers)
	s.Equal(book.Date, stored.Date)
	s.Equal(book.ISBN, stored.ISBN)
}

func (s *RepositorySuite) TestReturn_NotBorrowed() {
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)

	s.ErrorIs(s.books.Return(s.ctx(), book.ID), apperror.ErrConflict)
}

func (s *RepositorySuite) TestBorrowReturn_MissingBook() {
	user := s.registerUser("alice")

	s.ErrorIs(s.books.Borrow(s.ctx(), 999, user.ID), apperror.ErrNotFound)
	s.ErrorIs(s.books.Return(s.ctx(), 999), apperror.ErrNotFound)
}

func (s *RepositorySuite) TestBorrow_UnknownUser() {
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)

	s.ErrorIs(s.books.Borrow(s.ctx(), book.ID, 12345), apperror.ErrNotFound)
	s.ErrorIs(s.books.Borrow(s.ctx(), book.ID, -1), apperror.ErrValidation)

	stored, err := s.books.Get(s.ctx(), book.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusAvailable, stored.Status)
}

func (s *RepositorySuite) TestBorrow_ConcurrentOnlyOneWins() {
	const borrowers = 12

	ids := make([]int64, borrowers)
	for i := range ids {
		ids[i] = s.registerUser(fmt.Sprintf("u%d", i)).ID
	}
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, borrowers)
	)
	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = s.books.Borrow(context.Background(), book.ID, ids[i])
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	var winner int64
	for i, err := range errs {
		if err == nil {
			winners++
			winner = ids[i]
			continue
		}
		s.ErrorIs(err, apperror.ErrConflict)
	}
	s.Equal(1, winners)

	stored, err := s.books.Get(s.ctx(), book.ID)
	s.Require().NoError(err)
	s.Equal(winner, stored.BorrowedBy)
}

// A borrower removed out of band leaves a dangling borrowed_by that reads and
// the return transition must still handle.
func (s *RepositorySuite) TestDanglingBorrowerIsTolerated() {
	user := s.registerUser("ghost")
	book, err := s.books.Add(s.ctx(), dune())
	s.Require().NoError(err)
	s.Require().NoError(s.books.Borrow(s.ctx(), book.ID, user.ID))

	_, err = s.db.Pool.Exec(s.ctx(), "DELETE FROM users WHERE id = $1", user.ID)
	s.Require().NoError(err)

	books, err := s.books.ListAll(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(books, 1)
	s.Equal(user.ID, books[0].BorrowedBy)

	s.NoError(s.books.Return(s.ctx(), book.ID))
}

func (s *RepositorySuite) TestCanceledContextIsStorageError() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.books.ListAll(ctx)
	s.ErrorIs(err, apperror.ErrStorage)
	s.Equal(apperror.StorageMessage, apperror.PublicMessage(err))
}
