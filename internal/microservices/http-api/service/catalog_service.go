package service

import (
	"context"
	"log/slog"
	"time"

	"elibrary/internal/apperror"
	"elibrary/internal/events"
	"elibrary/internal/metrics"
	"elibrary/internal/microservices/http-api/models"
	"elibrary/internal/microservices/http-api/repository"
)

// CatalogService fronts the book repository. Each method is exactly one
// repository call; on success a lifecycle event is published.
type CatalogService interface {
	ListBooks(ctx context.Context) ([]models.Book, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	AddBook(ctx context.Context, fields models.BookFields) (*models.Book, error)
	UpdateBook(ctx context.Context, id int64, fields models.BookFields) error
	DeleteBook(ctx context.Context, id int64) error
	BorrowBook(ctx context.Context, id, userID int64) error
	ReturnBook(ctx context.Context, id int64) error
}

// defaultPublishTimeout bounds how long a committed write waits on the broker.
const defaultPublishTimeout = time.Second

type catalogService struct {
	repo           repository.BookRepository
	publisher      events.Publisher
	metrics        metrics.Recorder
	logger         *slog.Logger
	publishTimeout time.Duration
}

func NewCatalogService(
	repo repository.BookRepository,
	publisher events.Publisher,
	recorder metrics.Recorder,
	logger *slog.Logger,
) CatalogService {
	return &catalogService{
		repo:           repo,
		publisher:      publisher,
		metrics:        recorder,
		logger:         logger,
		publishTimeout: defaultPublishTimeout,
	}
}

func (s *catalogService) ListBooks(ctx context.Context) ([]models.Book, error) {
	start := time.Now()
	books, err := s.repo.ListAll(ctx)
	s.observe("books.list", err, start)
	return books, err
}

func (s *catalogService) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	start := time.Now()
	book, err := s.repo.Get(ctx, id)
	s.observe("books.get", err, start)
	return book, err
}

func (s *catalogService) AddBook(ctx context.Context, fields models.BookFields) (*models.Book, error) {
	start := time.Now()
	book, err := s.repo.Add(ctx, fields)
	s.observe("books.add", err, start)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewBookEvent(events.BookAdded, book.ID))
	return book, nil
}

func (s *catalogService) UpdateBook(ctx context.Context, id int64, fields models.BookFields) error {
	start := time.Now()
	err := s.repo.Update(ctx, id, fields)
	s.observe("books.update", err, start)
	if err != nil {
		return err
	}
	s.publish(ctx, events.NewBookEvent(events.BookUpdated, id))
	return nil
}

func (s *catalogService) DeleteBook(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.observe("books.delete", err, start)
	if err != nil {
		return err
	}
	s.publish(ctx, events.NewBookEvent(events.BookDeleted, id))
	return nil
}

func (s *catalogService) BorrowBook(ctx context.Context, id, userID int64) error {
	start := time.Now()
	err := s.repo.Borrow(ctx, id, userID)
	s.observe("books.borrow", err, start)
	if err != nil {
		return err
	}
	s.publish(ctx, events.NewBookEvent(events.BookBorrowed, id).WithUser(userID))
	return nil
}

func (s *catalogService) ReturnBook(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.repo.Return(ctx, id)
	s.observe("books.return", err, start)
	if err != nil {
		return err
	}
	s.publish(ctx, events.NewBookEvent(events.BookReturned, id))
	return nil
}

// publish never fails the request: the write is already committed. It
// outlives a cancelled request but not publishTimeout.
func (s *catalogService) publish(ctx context.Context, event events.BookEvent) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.metrics.RecordEventPublishFailure(string(event.Type))
		s.logger.Warn("event_publish_failed",
			"type", event.Type,
			"book_id", event.BookID,
			"error", err.Error(),
		)
	}
}

func (s *catalogService) observe(op string, err error, start time.Time) {
	observe(s.metrics, s.logger, op, err, start)
}

// observe records the outcome of one repository call. Storage failures are
// logged with their cause here because handlers never show it to callers.
func observe(recorder metrics.Recorder, logger *slog.Logger, op string, err error, start time.Time) {
	outcome := "success"
	if err != nil {
		outcome = apperror.KindOf(err).String()
	}
	recorder.RecordOperation(op, outcome, time.Since(start))

	if k := apperror.KindOf(err); err != nil && (k == apperror.KindStorage || k == apperror.KindUnknown) {
		logger.Error("storage_failure", "operation", op, "error", err.Error())
	}
}
