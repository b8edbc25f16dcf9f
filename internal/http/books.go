package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/catalog"
)

// BooksController serves read-only JSON views of the library.
type BooksController struct {
	catalog Catalog
}

func NewBooksController(catalog Catalog) *BooksController {
	return &BooksController{
		catalog: catalog,
	}
}

// GetAllBooks returns every book with its author name.
// GET /api/books
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.catalog.ListBooks(c.Request.Context())
	if err != nil {
		respondUnavailable(c, catalog.UserMessage(err))
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBook returns one book.
// GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.catalog.GetBook(c.Request.Context(), id)
	var notFoundErr *catalog.NotFoundError
	switch {
	case errors.As(err, &notFoundErr):
		respondNotFound(c, "book")
	case err != nil:
		respondUnavailable(c, catalog.UserMessage(err))
	default:
		c.IndentedJSON(http.StatusOK, book)
	}
}

// GetAllAuthors returns the authors offered in the dropdown.
// GET /api/authors
func (controller *BooksController) GetAllAuthors(c *gin.Context) {
	authors, err := controller.catalog.ListAuthors(c.Request.Context())
	if err != nil {
		respondUnavailable(c, catalog.UserMessage(err))
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"authors": authors, "count": len(authors)})
}
