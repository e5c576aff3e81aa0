package history

import (
	"database/sql"
	"fmt"
	"time"
)

// Entry is one submitted prompt with its (possibly still empty) agent
// response.
type Entry struct {
	ID        int64
	GUID      string
	Text      string
	Response  string
	CreatedAt time.Time
}

// promptModel maps a row of the prompts table. Timestamps are stored as
// Unix seconds; response is nullable until the agent replies.
type promptModel struct {
	ID        int64
	GUID      string
	Text      string
	Response  sql.NullString
	CreatedAt int64
}

func (m *promptModel) toEntry() Entry {
	e := Entry{
		ID:        m.ID,
		GUID:      m.GUID,
		Text:      m.Text,
		CreatedAt: time.Unix(m.CreatedAt, 0),
	}
	if m.Response.Valid {
		e.Response = m.Response.String
	}
	return e
}

// NotFoundError indicates that no prompt with the given GUID exists.
type NotFoundError struct {
	GUID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("prompt not found: %s", e.GUID)
}
