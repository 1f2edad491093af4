// CLAUDE:SUMMARY SQLite-backed draft store: create, get, list, update, rename, duplicate and delete block documents.
// Package drafts persists editor documents as named drafts.
package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/blockdoc/block"
	"github.com/hazyhaar/blockdoc/dbopen"
	"github.com/hazyhaar/blockdoc/idgen"
)

// Type is the kind of page a draft is edited as.
type Type string

const (
	TypeEmail   Type = "email"
	TypeWebpage Type = "webpage"
)

// Valid reports whether t is a known draft type.
func (t Type) Valid() bool { return t == TypeEmail || t == TypeWebpage }

// DefaultName is used when a draft is created without a name.
const DefaultName = "Untitled"

var ErrInvalidType = errors.New("invalid draft type")

// Draft is a saved document.
type Draft struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      Type            `json:"type"`
	Data      *block.Document `json:"data"`
	CreatedAt int64           `json:"created_at"`
	UpdatedAt int64           `json:"updated_at"`
}

// Store wraps the drafts database.
type Store struct {
	DB    *sql.DB
	NewID idgen.Generator
	Now   func() time.Time
}

// NewStore creates a Store from an already-opened database whose schema
// includes Migrations.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, NewID: idgen.Default, Now: time.Now}
}

// Create inserts a new draft. A nil document is stored as an empty one.
func (s *Store) Create(ctx context.Context, name string, typ Type, data *block.Document) (*Draft, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	if data == nil {
		data = block.NewDocument(nil)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal draft data: %w", err)
	}

	now := s.Now().UnixMilli()
	d := &Draft{ID: s.NewID(), Name: name, Type: typ, Data: data, CreatedAt: now, UpdatedAt: now}
	_, err = dbopen.Exec(ctx, s.DB,
		`INSERT INTO drafts (id, name, type, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, string(d.Type), string(raw), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert draft: %w", err)
	}
	return d, nil
}

// Get returns a draft by ID, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Draft, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, name, type, data, created_at, updated_at FROM drafts WHERE id = ?`, id)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

// List returns every draft, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*Draft, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, type, data, created_at, updated_at
		FROM drafts ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drafts := []*Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// UpdateData replaces a draft's document. It returns nil when the draft
// does not exist.
func (s *Store) UpdateData(ctx context.Context, id string, data *block.Document) (*Draft, error) {
	if data == nil {
		data = block.NewDocument(nil)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal draft data: %w", err)
	}
	return s.update(ctx, id, `UPDATE drafts SET data = ?, updated_at = ? WHERE id = ?`, string(raw))
}

// Rename changes a draft's name. It returns nil when the draft does not
// exist.
func (s *Store) Rename(ctx context.Context, id, name string) (*Draft, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	return s.update(ctx, id, `UPDATE drafts SET name = ?, updated_at = ? WHERE id = ?`, name)
}

func (s *Store) update(ctx context.Context, id, query string, value any) (*Draft, error) {
	res, err := dbopen.Exec(ctx, s.DB, query, value, s.Now().UnixMilli(), id)
	if err != nil {
		return nil, fmt.Errorf("update draft %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.Get(ctx, id)
}

// Duplicate copies a draft under a new ID and the name "<name> (Copy)".
// Block IDs inside the document are kept. It returns nil when the source
// draft does not exist.
func (s *Store) Duplicate(ctx context.Context, id string) (*Draft, error) {
	src, err := s.Get(ctx, id)
	if err != nil || src == nil {
		return nil, err
	}
	return s.Create(ctx, src.Name+" (Copy)", src.Type, src.Data.Clone())
}

// Delete removes a draft and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := dbopen.Exec(ctx, s.DB, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete draft %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Count returns the number of drafts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM drafts`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(sc scanner) (*Draft, error) {
	var d Draft
	var typ, raw string
	if err := sc.Scan(&d.ID, &d.Name, &typ, &raw, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan draft: %w", err)
	}
	d.Type = Type(typ)
	d.Data = &block.Document{}
	if err := json.Unmarshal([]byte(raw), d.Data); err != nil {
		return nil, fmt.Errorf("decode draft %s data: %w", d.ID, err)
	}
	if d.Data.Content == nil {
		d.Data.Content = []block.Block{}
	}
	if d.Data.Zones == nil {
		d.Data.Zones = map[string][]block.Block{}
	}
	if d.Data.Root.Props == nil {
		d.Data.Root.Props = map[string]any{}
	}
	return &d, nil
}
