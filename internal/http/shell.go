package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/demo"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/session"
)

// Messages shown by the page itself, before the catalog is involved.
const (
	MessageFieldsRequired = "All fields are required."
	MessageInvalidYear    = "Year must be a valid 4-digit number."
	MessageSelectToUpdate = "Select a book to update."
	MessageSelectToDelete = "Select a book to delete."
	MessageCouldNotLoad   = "Could not load the library."
)

// Catalog is the data access layer behind the page. catalog.Service
// implements it.
type Catalog interface {
	ListBooks(ctx context.Context) ([]entities.BookRecord, error)
	ListAuthors(ctx context.Context) ([]entities.Author, error)
	GetBook(ctx context.Context, id uint) (entities.BookRecord, error)
	AddBook(ctx context.Context, input entities.BookInput) (entities.BookRecord, error)
	UpdateBook(ctx context.Context, id uint, input entities.BookInput, snapshot *entities.BookSnapshot) (entities.BookRecord, error)
	DeleteBook(ctx context.Context, id uint, snapshot *entities.BookSnapshot) error
}

// FlashStore keeps messages and rejected inputs across the redirect that
// ends every action. session.Manager implements it.
type FlashStore interface {
	PutFlash(ctx context.Context, message string)
	PopFlash(ctx context.Context) string
	PutForm(ctx context.Context, form session.FormState)
	PopForm(ctx context.Context) (session.FormState, bool)
}

// ShellController serves the library page: the book table, the input row,
// the Add/Update/Delete/Refresh actions and the message modal. Every action
// redirects back to the page, which reads both lists again.
type ShellController struct {
	catalog Catalog
	flash   FlashStore
}

func NewShellController(catalog Catalog, flash FlashStore) *ShellController {
	return &ShellController{catalog: catalog, flash: flash}
}

type pageData struct {
	Books     []entities.BookRecord
	Authors   []entities.Author
	Selected  *entities.BookRecord
	Form      session.FormState
	Message   string
	LoadError string
	CSRFField string
	CSRFToken string
	DemoMode  bool
}

// Page renders the library page.
// GET /?selected=<id>
func (sc *ShellController) Page(c *gin.Context) {
	ctx := c.Request.Context()
	data := pageData{
		Message:   sc.flash.PopFlash(ctx),
		CSRFField: session.CSRFTokenField,
		CSRFToken: session.GetCSRFToken(c),
		DemoMode:  c.GetBool(demo.ContextKeyDemoMode),
	}
	form, kept := sc.flash.PopForm(ctx)

	books, err := sc.catalog.ListBooks(ctx)
	if err == nil {
		data.Authors, err = sc.catalog.ListAuthors(ctx)
	}
	if err != nil {
		data.LoadError = MessageCouldNotLoad + " " + catalog.UserMessage(err)
		data.Form = form
		c.HTML(http.StatusServiceUnavailable, "index", data)
		return
	}
	data.Books = books

	if id, ok := parseID(c.Query("selected")); ok {
		for i := range books {
			if books[i].ID == id {
				data.Selected = &books[i]
				break
			}
		}
	}

	switch {
	case kept:
		data.Form = form
	case data.Selected != nil:
		data.Form = session.FormState{
			Title:    data.Selected.Title,
			AuthorID: uintString(data.Selected.AuthorID),
			Year:     strconv.Itoa(data.Selected.YearPublished),
		}
	}

	c.HTML(http.StatusOK, "index", data)
}

// Add inserts a new book from the input row.
// POST /books
func (sc *ShellController) Add(c *gin.Context) {
	form := readForm(c)
	input, message := parseInput(form)
	if message != "" {
		sc.fail(c, message, form, 0)
		return
	}

	if _, err := sc.catalog.AddBook(c.Request.Context(), input); err != nil {
		sc.fail(c, catalog.UserMessage(err), form, 0)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Update overwrites the selected book with the input row.
// POST /books/update
func (sc *ShellController) Update(c *gin.Context) {
	form := readForm(c)
	id, ok := parseID(c.PostForm("selected_id"))
	if !ok {
		sc.fail(c, MessageSelectToUpdate, form, 0)
		return
	}

	input, message := parseInput(form)
	if message != "" {
		sc.fail(c, message, form, id)
		return
	}

	_, err := sc.catalog.UpdateBook(c.Request.Context(), id, input, readSnapshot(c))
	var notFoundErr *catalog.NotFoundError
	var conflictErr *catalog.ConflictError
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, pagePath(id))
	case errors.As(err, &notFoundErr):
		sc.flash.PutFlash(c.Request.Context(), catalog.UserMessage(err))
		c.Redirect(http.StatusSeeOther, "/")
	case errors.As(err, &conflictErr):
		// Re-render the stored values instead of the stale inputs.
		sc.flash.PutFlash(c.Request.Context(), catalog.UserMessage(err))
		c.Redirect(http.StatusSeeOther, pagePath(id))
	default:
		sc.fail(c, catalog.UserMessage(err), form, id)
	}
}

// Delete removes the selected book.
// POST /books/delete
func (sc *ShellController) Delete(c *gin.Context) {
	id, ok := parseID(c.PostForm("selected_id"))
	if !ok {
		sc.flash.PutFlash(c.Request.Context(), MessageSelectToDelete)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	err := sc.catalog.DeleteBook(c.Request.Context(), id, readSnapshot(c))
	if err != nil {
		sc.flash.PutFlash(c.Request.Context(), catalog.UserMessage(err))
		var conflictErr *catalog.ConflictError
		if errors.As(err, &conflictErr) {
			c.Redirect(http.StatusSeeOther, pagePath(id))
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Refresh reloads the page, keeping the selection.
// GET /refresh
func (sc *ShellController) Refresh(c *gin.Context) {
	id, _ := parseID(c.Query("selected"))
	c.Redirect(http.StatusSeeOther, pagePath(id))
}

// fail flashes message, keeps what the user typed and goes back to the page.
func (sc *ShellController) fail(c *gin.Context, message string, form session.FormState, selected uint) {
	ctx := c.Request.Context()
	sc.flash.PutFlash(ctx, message)
	sc.flash.PutForm(ctx, form)
	c.Redirect(http.StatusSeeOther, pagePath(selected))
}

func readForm(c *gin.Context) session.FormState {
	return session.FormState{
		Title:    c.PostForm("title"),
		AuthorID: c.PostForm("author_id"),
		Year:     c.PostForm("year"),
	}
}

// parseInput converts the text inputs. A non-empty message means the form
// was rejected before reaching the catalog.
func parseInput(form session.FormState) (entities.BookInput, string) {
	title := strings.TrimSpace(form.Title)
	authorRaw := strings.TrimSpace(form.AuthorID)
	yearRaw := strings.TrimSpace(form.Year)
	if title == "" || authorRaw == "" || yearRaw == "" {
		return entities.BookInput{}, MessageFieldsRequired
	}

	year, err := strconv.Atoi(yearRaw)
	if err != nil {
		return entities.BookInput{}, MessageInvalidYear
	}

	// An unparseable author becomes 0, which the catalog rejects.
	authorID, _ := parseID(authorRaw)
	return entities.BookInput{Title: title, AuthorID: authorID, YearPublished: year}, ""
}

// readSnapshot returns the last-known values of the selected book carried
// in hidden fields, or nil when the form has none.
func readSnapshot(c *gin.Context) *entities.BookSnapshot {
	authorID, ok := parseID(c.PostForm("snapshot_author_id"))
	if !ok {
		return nil
	}
	year, err := strconv.Atoi(c.PostForm("snapshot_year"))
	if err != nil {
		return nil
	}
	return &entities.BookSnapshot{
		Title:         c.PostForm("snapshot_title"),
		AuthorID:      authorID,
		YearPublished: year,
	}
}
