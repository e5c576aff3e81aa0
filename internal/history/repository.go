package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/quillcli/quill/internal/log"
)

const promptColumns = `id, guid, text, response, created_at`

// Repository provides access to stored prompts. Recent reads are served
// from an in-memory cache that is flushed on every write.
type Repository struct {
	db    *sql.DB
	cache *gocache.Cache
}

func newRepository(db *sql.DB) *Repository {
	return &Repository{
		db:    db,
		cache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func scanPrompt(scanner interface{ Scan(...any) error }) (*promptModel, error) {
	var model promptModel
	err := scanner.Scan(&model.ID, &model.GUID, &model.Text, &model.Response, &model.CreatedAt)
	return &model, err
}

// Append stores a newly submitted prompt and returns its entry.
func (r *Repository) Append(text string) (*Entry, error) {
	guid := uuid.NewString()
	now := time.Now().Unix()

	result, err := r.db.Exec(
		`INSERT INTO prompts (guid, text, created_at) VALUES (?, ?, ?)`,
		guid, text, now,
	)
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to insert prompt", err)
		return nil, fmt.Errorf("failed to insert prompt: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	r.cache.Flush()
	return &Entry{ID: id, GUID: guid, Text: text, CreatedAt: time.Unix(now, 0)}, nil
}

// SetResponse attaches the agent response to a stored prompt.
// Returns NotFoundError when no prompt has the given GUID.
func (r *Repository) SetResponse(guid, response string) error {
	result, err := r.db.Exec(
		`UPDATE prompts SET response = ? WHERE guid = ?`,
		response, guid,
	)
	if err != nil {
		return fmt.Errorf("failed to update prompt response: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{GUID: guid}
	}

	r.cache.Flush()
	return nil
}

// Get retrieves a single prompt by GUID.
func (r *Repository) Get(guid string) (*Entry, error) {
	row := r.db.QueryRow(
		`SELECT `+promptColumns+` FROM prompts WHERE guid = ?`,
		guid,
	)
	model, err := scanPrompt(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}
	entry := model.toEntry()
	return &entry, nil
}

// Recent returns the newest limit prompts, newest first.
func (r *Repository) Recent(limit int) ([]Entry, error) {
	key := fmt.Sprintf("recent:%d", limit)
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]Entry), nil
	}

	entries, err := r.query(
		`SELECT `+promptColumns+` FROM prompts ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}

	r.cache.Set(key, entries, gocache.DefaultExpiration)
	return entries, nil
}

// Search returns prompts whose text contains term, newest first.
func (r *Repository) Search(term string, limit int) ([]Entry, error) {
	return r.query(
		`SELECT `+promptColumns+` FROM prompts
		 WHERE text LIKE '%' || ? || '%'
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		term, limit,
	)
}

func (r *Repository) query(query string, args ...any) ([]Entry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		log.ErrorErr(log.CatDB, "Prompt query failed", err)
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		model, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt row: %w", err)
		}
		entries = append(entries, model.toEntry())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompt rows: %w", err)
	}
	return entries, nil
}
