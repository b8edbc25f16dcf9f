package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	auditrepo "github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testApp is the full router over an in-memory SQLite database. It keeps
// cookies between requests like a browser would.
type testApp struct {
	router  *gin.Engine
	db      *database.Database
	catalog *catalog.Service
	audit   *audit.Service
	cookies map[string]*http.Cookie
}

func setupTestDatabase(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.NewDatabase(config.Database{
		Driver:       config.DriverSQLite,
		Path:         "file:testdb_" + uuid.New().String() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		CreateSchema: true,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestApp(t *testing.T, configure ...func(*RouterConfig)) *testApp {
	t.Helper()

	db := setupTestDatabase(t)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	catalogService := catalog.NewService(books.NewRepository(db.DB), auditService)

	sessions, err := session.NewManager(nil, config.Session{Lifetime: time.Hour})
	require.NoError(t, err)

	cfg := RouterConfig{
		Catalog:     catalogService,
		Sessions:    sessions,
		Database:    db,
		AuditReader: auditService,
		Version:     "test",
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	router, err := NewRouter(cfg)
	require.NoError(t, err)

	return &testApp{
		router:  router,
		db:      db,
		catalog: catalogService,
		audit:   auditService,
		cookies: make(map[string]*http.Cookie),
	}
}

func (a *testApp) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range a.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	for _, cookie := range w.Result().Cookies() {
		a.cookies[cookie.Name] = cookie
	}
	return w
}

// follow posts the form and renders the page the action redirects to.
func (a *testApp) follow(t *testing.T, path string, form url.Values) (*httptest.ResponseRecorder, *httptest.ResponseRecorder) {
	t.Helper()
	w := a.post(t, path, form)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	return w, a.get(t, w.Header().Get("Location"))
}

func (a *testApp) seedAuthor(t *testing.T, name string) entities.Author {
	t.Helper()
	author, err := a.catalog.AddAuthor(context.Background(), name)
	require.NoError(t, err)
	return author
}

func (a *testApp) seedBook(t *testing.T, title string, author entities.Author, year int) entities.BookRecord {
	t.Helper()
	book, err := a.catalog.AddBook(context.Background(), entities.BookInput{Title: title, AuthorID: author.ID, YearPublished: year})
	require.NoError(t, err)
	return book
}

func bookForm(title string, authorID uint, year string) url.Values {
	return url.Values{
		"title":     {title},
		"author_id": {uintString(authorID)},
		"year":      {year},
	}
}

func withSelection(form url.Values, book entities.BookRecord) url.Values {
	form.Set("selected_id", uintString(book.ID))
	form.Set("snapshot_title", book.Title)
	form.Set("snapshot_author_id", uintString(book.AuthorID))
	form.Set("snapshot_year", strconv.Itoa(book.YearPublished))
	return form
}

func bookInput(title string, authorID uint, year int) entities.BookInput {
	return entities.BookInput{Title: title, AuthorID: authorID, YearPublished: year}
}
