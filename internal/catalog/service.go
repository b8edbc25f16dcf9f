// Package catalog is the boundary between the UI and storage. It validates
// input, runs one repository statement per operation and turns every failure
// into a ValidationError, NotFoundError, ConflictError or StorageError.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

// Store is the statement layer the service runs on. books.Repository
// implements it.
type Store interface {
	ListBooks(ctx context.Context) ([]entities.BookRecord, error)
	GetBook(ctx context.Context, id uint) (*entities.BookRecord, error)
	ListAuthors(ctx context.Context) ([]entities.Author, error)
	GetAuthor(ctx context.Context, id uint) (*entities.Author, error)
	CreateAuthor(ctx context.Context, author *entities.Author) error
	CreateBook(ctx context.Context, book *entities.Book) error
	UpdateBook(ctx context.Context, id uint, input entities.BookInput, snapshot *entities.BookSnapshot) (int64, error)
	DeleteBook(ctx context.Context, id uint, snapshot *entities.BookSnapshot) (int64, error)
}

// Auditor records mutation outcomes. audit.Service implements it.
type Auditor interface {
	LogMutation(ctx context.Context, action entities.AuditAction, entityID uint, description string, err error)
}

type Service struct {
	store    Store
	auditor  Auditor
	validate *validator.Validate
}

// NewService creates the catalog service. auditor may be nil.
func NewService(store Store, auditor Auditor) *Service {
	return &Service{
		store:    store,
		auditor:  auditor,
		validate: validator.New(),
	}
}

// ListBooks returns every book joined with its author name, ordered by ID.
func (s *Service) ListBooks(ctx context.Context) ([]entities.BookRecord, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, storageError("list books", err)
	}
	return books, nil
}

// ListAuthors returns every author ordered by name.
func (s *Service) ListAuthors(ctx context.Context) ([]entities.Author, error) {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, storageError("list authors", err)
	}
	return authors, nil
}

// GetBook returns one book by ID.
func (s *Service) GetBook(ctx context.Context, id uint) (entities.BookRecord, error) {
	book, err := s.store.GetBook(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.BookRecord{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return entities.BookRecord{}, storageError("get book", err)
	}
	return *book, nil
}

// AddAuthor inserts an author.
func (s *Service) AddAuthor(ctx context.Context, name string) (entities.Author, error) {
	name = strings.TrimSpace(name)
	if err := s.validate.Var(name, "required,max=255"); err != nil {
		return entities.Author{}, &ValidationError{Field: "name", Message: "Author name is required (at most 255 characters)."}
	}

	author := entities.Author{Name: name}
	err := s.store.CreateAuthor(ctx, &author)
	s.audit(ctx, entities.AuditActionAuthorAdd, author.ID, "Added author: "+name, err)
	if err != nil {
		return entities.Author{}, storageError("add author", err)
	}
	return author, nil
}

// AddBook validates the input and inserts one book. The returned record
// carries the storage-assigned ID.
func (s *Service) AddBook(ctx context.Context, input entities.BookInput) (entities.BookRecord, error) {
	input = normalize(input)
	author, err := s.validateInput(ctx, input)
	if err != nil {
		return entities.BookRecord{}, err
	}

	book := entities.Book{
		Title:         input.Title,
		AuthorID:      input.AuthorID,
		YearPublished: input.YearPublished,
	}
	err = s.store.CreateBook(ctx, &book)
	s.audit(ctx, entities.AuditActionBookAdd, book.ID, "Added book: "+input.Title, err)
	if err != nil {
		if isForeignKeyViolation(err) {
			return entities.BookRecord{}, errUnknownAuthor
		}
		return entities.BookRecord{}, storageError("add book", err)
	}

	return book.Record(author.Name), nil
}

// UpdateBook validates the input and overwrites one book. When snapshot is
// not nil the update is rejected with a ConflictError if the stored row no
// longer matches it.
func (s *Service) UpdateBook(ctx context.Context, id uint, input entities.BookInput, snapshot *entities.BookSnapshot) (entities.BookRecord, error) {
	input = normalize(input)
	author, err := s.validateInput(ctx, input)
	if err != nil {
		return entities.BookRecord{}, err
	}

	err = s.update(ctx, id, input, snapshot)
	s.audit(ctx, entities.AuditActionBookUpdate, id, fmt.Sprintf("Updated book %d: %s", id, input.Title), err)
	if err != nil {
		return entities.BookRecord{}, err
	}

	return entities.BookRecord{
		ID:            id,
		Title:         input.Title,
		AuthorID:      author.ID,
		AuthorName:    author.Name,
		YearPublished: input.YearPublished,
	}, nil
}

func (s *Service) update(ctx context.Context, id uint, input entities.BookInput, snapshot *entities.BookSnapshot) error {
	affected, err := s.store.UpdateBook(ctx, id, input, snapshot)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errUnknownAuthor
		}
		return storageError("update book", err)
	}
	if affected > 0 {
		return nil
	}

	// Zero rows: the book is gone, the snapshot is stale, or (MySQL) the
	// row already holds the new values.
	current, err := s.store.GetBook(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{ID: id}
	}
	if err != nil {
		return storageError("update book", err)
	}
	if (entities.BookSnapshot{Title: input.Title, AuthorID: input.AuthorID, YearPublished: input.YearPublished}).Matches(*current) {
		return nil
	}
	return &ConflictError{ID: id}
}

// DeleteBook removes one book. Deleting an absent book is a no-op. When
// snapshot is not nil and the stored row no longer matches it, the delete is
// rejected with a ConflictError.
func (s *Service) DeleteBook(ctx context.Context, id uint, snapshot *entities.BookSnapshot) error {
	err := s.delete(ctx, id, snapshot)
	s.audit(ctx, entities.AuditActionBookDelete, id, fmt.Sprintf("Deleted book %d", id), err)
	return err
}

func (s *Service) delete(ctx context.Context, id uint, snapshot *entities.BookSnapshot) error {
	affected, err := s.store.DeleteBook(ctx, id, snapshot)
	if err != nil {
		return storageError("delete book", err)
	}
	if affected > 0 || snapshot == nil {
		return nil
	}

	_, err = s.store.GetBook(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return storageError("delete book", err)
	}
	return &ConflictError{ID: id}
}

var errUnknownAuthor = &ValidationError{Field: "author", Message: "The selected author does not exist."}

// validateInput checks field rules, then that the author exists.
func (s *Service) validateInput(ctx context.Context, input entities.BookInput) (*entities.Author, error) {
	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, fieldError(fieldErrs[0])
		}
		return nil, &ValidationError{Message: "Invalid input."}
	}

	author, err := s.store.GetAuthor(ctx, input.AuthorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errUnknownAuthor
	}
	if err != nil {
		return nil, storageError("look up author", err)
	}
	return author, nil
}

func fieldError(fe validator.FieldError) *ValidationError {
	switch fe.Field() {
	case "Title":
		if fe.Tag() == "required" {
			return &ValidationError{Field: "title", Message: "Title is required."}
		}
		return &ValidationError{Field: "title", Message: "Title must be at most 512 characters."}
	case "AuthorID":
		return &ValidationError{Field: "author", Message: "Select an author."}
	case "YearPublished":
		return &ValidationError{Field: "year", Message: "Year must be between 0 and 9999."}
	default:
		return &ValidationError{Field: strings.ToLower(fe.Field()), Message: fe.Field() + " is invalid (" + fe.Tag() + ")."}
	}
}

func normalize(input entities.BookInput) entities.BookInput {
	input.Title = strings.TrimSpace(input.Title)
	return input
}

func (s *Service) audit(ctx context.Context, action entities.AuditAction, id uint, description string, err error) {
	if s.auditor == nil {
		return
	}
	s.auditor.LogMutation(ctx, action, id, description, err)
}

// storageError logs the full cause and hides it behind a StorageError.
func storageError(op string, err error) error {
	log.Printf("Storage error (%s): %v", op, err)
	return &StorageError{Op: op, Err: err}
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
