package session

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mrlokans/librarian/internal/config"
)

// Session data keys
const (
	KeyFlash = "flash"
	KeyForm  = "form"
)

// FormState is what the user typed into the input row. It survives the
// redirect after a failed submission.
type FormState struct {
	Title    string
	AuthorID string
	Year     string
}

func init() {
	gob.Register(FormState{})
}

// Manager wraps scs.SessionManager with flash helpers.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a session manager. With a non-nil sqlDB (SQLite only)
// sessions are stored in the sessions table, which is created if missing;
// otherwise they live in memory.
func NewManager(sqlDB *sql.DB, cfg config.Session) (*Manager, error) {
	sm := scs.New()

	if sqlDB != nil {
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, err
		}
		sm.Store = sqlite3store.New(sqlDB)
	} else {
		sm.Store = memstore.New()
	}

	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = 12 * time.Hour
	}
	sm.Lifetime = lifetime

	sm.Cookie.Name = "librarian_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}

// PutFlash queues a message for the next rendered page.
func (m *Manager) PutFlash(ctx context.Context, message string) {
	m.Put(ctx, KeyFlash, message)
}

// PopFlash returns the pending message and clears it.
func (m *Manager) PopFlash(ctx context.Context) string {
	return m.PopString(ctx, KeyFlash)
}

// PutForm keeps the submitted inputs for the next render.
func (m *Manager) PutForm(ctx context.Context, form FormState) {
	m.Put(ctx, KeyForm, form)
}

// PopForm returns the kept inputs, if any, and clears them.
func (m *Manager) PopForm(ctx context.Context) (FormState, bool) {
	form, ok := m.Pop(ctx, KeyForm).(FormState)
	return form, ok
}
