package entities

// Author is a row of the Authors table. Books is never loaded; it declares
// the Books.AuthorID foreign key for schema creation.
type Author struct {
	ID    uint   `gorm:"column:AuthorID;primaryKey" json:"id"`
	Name  string `gorm:"column:Name;size:255;not null" json:"name"`
	Books []Book `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Author) TableName() string {
	return "Authors"
}

// Book is a row of the Books table.
type Book struct {
	ID            uint   `gorm:"column:BookID;primaryKey" json:"id"`
	Title         string `gorm:"column:Title;size:512;not null" json:"title"`
	AuthorID      uint   `gorm:"column:AuthorID;not null;index" json:"author_id"`
	YearPublished int    `gorm:"column:YearPublished;not null" json:"year_published"`
}

func (Book) TableName() string {
	return "Books"
}

// BookRecord is the denormalized book shown in the table: the author's
// name is resolved through the join on every read.
type BookRecord struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	AuthorID      uint   `json:"author_id"`
	AuthorName    string `json:"author"`
	YearPublished int    `json:"year_published"`
}

// Record flattens a book together with its author's name.
func (b Book) Record(authorName string) BookRecord {
	return BookRecord{
		ID:            b.ID,
		Title:         b.Title,
		AuthorID:      b.AuthorID,
		AuthorName:    authorName,
		YearPublished: b.YearPublished,
	}
}

// BookInput carries the editable fields of a book.
type BookInput struct {
	Title         string `validate:"required,max=512"`
	AuthorID      uint   `validate:"required"`
	YearPublished int    `validate:"min=0,max=9999"`
}

// BookSnapshot is the last-known state of a selected book. Mutations that
// carry one are rejected when the stored row no longer matches it.
type BookSnapshot struct {
	Title         string
	AuthorID      uint
	YearPublished int
}

// Matches reports whether the stored book still equals the snapshot.
func (s BookSnapshot) Matches(b BookRecord) bool {
	return s.Title == b.Title && s.AuthorID == b.AuthorID && s.YearPublished == b.YearPublished
}
