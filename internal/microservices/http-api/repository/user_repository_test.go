package repository

import (
	"context"
	"fmt"
	"sync"

	"elibrary/internal/apperror"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func (s *RepositorySuite) TestRegisterAuthenticateScenario() {
	alice, err := s.users.Register(s.ctx(), "alice", "h1")
	s.Require().NoError(err)
	s.EqualValues(1, alice.ID)
	s.False(alice.IsAdmin)

	_, err = s.users.Register(s.ctx(), "alice", "h2")
	s.ErrorIs(err, apperror.ErrConflict)

	got, err := s.users.Authenticate(s.ctx(), "alice", "h1")
	s.Require().NoError(err)
	s.EqualValues(1, got.ID)
	s.Equal("alice", got.Username)

	_, err = s.users.Authenticate(s.ctx(), "alice", "wrong")
	s.ErrorIs(err, apperror.ErrUnauthorized)
}

func (s *RepositorySuite) TestAuthenticate_UnknownUser() {
	_, err := s.users.Authenticate(s.ctx(), "nobody", "h1")
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *RepositorySuite) TestUsernameExists_CaseSensitive() {
	s.registerUser("alice")

	exists, err := s.users.UsernameExists(s.ctx(), "alice")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.users.UsernameExists(s.ctx(), "Alice")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RepositorySuite) TestRegister_Validation() {
	_, err := s.users.Register(s.ctx(), "", "h1")
	s.ErrorIs(err, apperror.ErrValidation)

	_, err = s.users.Register(s.ctx(), "bob", "")
	s.ErrorIs(err, apperror.ErrValidation)
}

// Concurrent registrations of one name pass the pre-check together; the
// unique constraint must still let exactly one through.
func (s *RepositorySuite) TestRegister_ConcurrentSameUsername() {
	const attempts = 10

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, attempts)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = s.users.Register(s.ctx(), "racer", fmt.Sprintf("h%d", i))
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		s.ErrorIs(err, apperror.ErrConflict)
	}
	s.Equal(1, ok)
}

// A row inserted after the existence check still has to surface as a
// conflict, not a storage failure.
func (s *RepositorySuite) TestRegister_UniqueConstraintAfterPreCheck() {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: s.db.SQL}), &gorm.Config{TranslateError: true})
	s.Require().NoError(err)
	s.Require().NoError(gdb.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		_, err := s.db.Pool.Exec(context.Background(),
			"INSERT INTO users (username, password_hash) VALUES ($1, $2)", "dave", "other")
		s.Require().NoError(err)
	}))

	_, err = NewUserRepository(gdb).Register(s.ctx(), "dave", "h1")
	s.ErrorIs(err, apperror.ErrConflict)

	got, err := s.users.Authenticate(s.ctx(), "dave", "other")
	s.Require().NoError(err)
	s.Equal("dave", got.Username)
}
