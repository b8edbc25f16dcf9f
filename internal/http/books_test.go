package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/entities"
)

func TestBooksController_GetAllBooks(t *testing.T) {
	app := newTestApp(t)
	herbert := app.seedAuthor(t, "Frank Herbert")
	dune := app.seedBook(t, "Dune", herbert, 1965)

	w := app.get(t, "/api/books")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Books []entities.BookRecord `json:"books"`
		Count int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	assert.Equal(t, []entities.BookRecord{dune}, response.Books)
	assert.Contains(t, w.Body.String(), `"author": "Frank Herbert"`)
}

func TestBooksController_GetBook(t *testing.T) {
	app := newTestApp(t)
	herbert := app.seedAuthor(t, "Frank Herbert")
	dune := app.seedBook(t, "Dune", herbert, 1965)

	w := app.get(t, "/api/books/"+uintString(dune.ID))
	require.Equal(t, http.StatusOK, w.Code)
	var got entities.BookRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, dune, got)

	w = app.get(t, "/api/books/9999")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.get(t, "/api/books/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBooksController_GetAllAuthors(t *testing.T) {
	app := newTestApp(t)
	app.seedAuthor(t, "Ursula K. Le Guin")
	app.seedAuthor(t, "Frank Herbert")

	w := app.get(t, "/api/authors")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Authors []entities.Author `json:"authors"`
		Count   int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, 2, response.Count)
	assert.Equal(t, "Frank Herbert", response.Authors[0].Name)
}

func TestBooksController_Unavailable(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.db.Close())

	for _, path := range []string{"/api/books", "/api/authors", "/api/books/1"} {
		w := app.get(t, path)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, catalog.MessageStorage, response.Error)
	}
}
