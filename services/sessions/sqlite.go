package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type SqliteStore struct {
	db *sql.DB
}

func NewSqliteStore(db *sql.DB) (SqliteStore, error) {
	_, err := db.Exec(Schema)
	if err != nil {
		return SqliteStore{}, err
	}
	return SqliteStore{db: db}, nil
}

func (s SqliteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(
		ctx,
		`select cookies from upstream_sessions where id = ?`,
		id,
	)
	var encoded string
	err := row.Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cookies map[string]string
	err = json.Unmarshal([]byte(encoded), &cookies)
	if err != nil {
		return nil, err
	}
	return &Session{Id: id, Cookies: cookies}, nil
}

func (s SqliteStore) CreateSession(ctx context.Context, id string, cookies map[string]string) error {
	encoded, err := json.Marshal(cookies)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	_, err = s.db.ExecContext(
		ctx,
		`insert into upstream_sessions (id, cookies, created_at, updated_at)
		values (?, ?, ?, ?)
		on conflict (id) do update set cookies = excluded.cookies, updated_at = excluded.updated_at`,
		id, string(encoded), now, now,
	)
	return err
}

func (s SqliteStore) UpdateSessionCookies(ctx context.Context, id string, cookies map[string]string) error {
	encoded, err := json.Marshal(cookies)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`update upstream_sessions set cookies = ?, updated_at = ? where id = ?`,
		string(encoded), time.Now().Unix(), id,
	)
	return err
}
