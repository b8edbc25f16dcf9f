// Package books issues the statements behind the library table: the
// explicit Books/Authors JOIN and the book INSERT, UPDATE and DELETE.
//
// The repository reports raw gorm errors; classifying them into validation,
// not-found, conflict and storage failures happens in the catalog package.
//
// # Usage
//
//	repo := books.NewRepository(db.DB)
//	records, err := repo.ListBooks(ctx)
package books

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librarian/internal/entities"
)

// Repository handles all book and author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListBooks joins every book with its author, ordered by book ID.
func (r *Repository) ListBooks(ctx context.Context) ([]entities.BookRecord, error) {
	records := make([]entities.BookRecord, 0)
	err := r.joined(ctx).
		Order(clause.OrderByColumn{Column: bookColumn("BookID")}).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetBook retrieves a book with its author. Returns gorm.ErrRecordNotFound
// when the ID does not exist.
func (r *Repository) GetBook(ctx context.Context, id uint) (*entities.BookRecord, error) {
	var records []entities.BookRecord
	err := r.joined(ctx).
		Where(bookIDEq(id)).
		Limit(1).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &records[0], nil
}

// joined selects Books JOIN Authors ON Books.AuthorID = Authors.AuthorID
// with the columns named after BookRecord's fields.
func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entities.Book{}).
		Select("? AS id, ? AS title, ? AS author_id, ? AS author_name, ? AS year_published",
			bookColumn("BookID"),
			bookColumn("Title"),
			bookColumn("AuthorID"),
			authorColumn("Name"),
			bookColumn("YearPublished"),
		).
		Joins("JOIN ? ON ? = ?",
			clause.Table{Name: authorsTable},
			authorColumn("AuthorID"),
			bookColumn("AuthorID"),
		)
}

// ListAuthors returns all authors ordered by name, then ID.
func (r *Repository) ListAuthors(ctx context.Context) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "Name"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "AuthorID"}}).
		Find(&authors).Error
	return authors, err
}

// GetAuthor retrieves one author. Returns gorm.ErrRecordNotFound when the
// ID does not exist.
func (r *Repository) GetAuthor(ctx context.Context, id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: "AuthorID"}, Value: id}).
		First(&author).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// CreateAuthor inserts an author; the storage assigns the ID.
func (r *Repository) CreateAuthor(ctx context.Context, author *entities.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

// CreateBook inserts a book; the storage assigns the ID.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// UpdateBook overwrites title, author and year of one book. With a snapshot
// the row is only updated while it still matches the snapshot. Returns the
// number of affected rows.
func (r *Repository) UpdateBook(ctx context.Context, id uint, input entities.BookInput, snapshot *entities.BookSnapshot) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Book{}).
		Where(bookConditions(id, snapshot)).
		Updates(map[string]any{
			"Title":         input.Title,
			"AuthorID":      input.AuthorID,
			"YearPublished": input.YearPublished,
		})
	return result.RowsAffected, result.Error
}

// DeleteBook removes one book, guarded by the snapshot when given. Returns
// the number of affected rows.
func (r *Repository) DeleteBook(ctx context.Context, id uint, snapshot *entities.BookSnapshot) (int64, error) {
	result := r.db.WithContext(ctx).
		Where(bookConditions(id, snapshot)).
		Delete(&entities.Book{})
	return result.RowsAffected, result.Error
}

const authorsTable = "Authors"

func bookColumn(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

func authorColumn(name string) clause.Column {
	return clause.Column{Table: authorsTable, Name: name}
}

func bookIDEq(id uint) clause.Expression {
	return clause.Eq{Column: bookColumn("BookID"), Value: id}
}

func bookConditions(id uint, snapshot *entities.BookSnapshot) clause.Expression {
	conds := []clause.Expression{bookIDEq(id)}
	if snapshot != nil {
		conds = append(conds,
			clause.Eq{Column: bookColumn("Title"), Value: snapshot.Title},
			clause.Eq{Column: bookColumn("AuthorID"), Value: snapshot.AuthorID},
			clause.Eq{Column: bookColumn("YearPublished"), Value: snapshot.YearPublished},
		)
	}
	return clause.And(conds...)
}
