package trendsapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Store keeps a history of successful scrapes so the data directory
// survives container restarts.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return Store{db: db}
}

type ScrapeRecord struct {
	ID        int64
	Endpoint  string
	Params    string
	Payload   string
	CreatedAt time.Time
}

func (s Store) Record(ctx context.Context, endpoint string, params url.Values, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("record scrape: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO scrapes (endpoint, params, payload, created_at) VALUES (?, ?, ?, ?)`,
		endpoint, params.Encode(), string(body), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record scrape: %w", err)
	}
	return nil
}

func (s Store) Recent(ctx context.Context, endpoint string, limit int) ([]ScrapeRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, endpoint, params, payload, created_at FROM scrapes
		WHERE endpoint = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		endpoint, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent scrapes: %w", err)
	}
	defer rows.Close()

	var records []ScrapeRecord
	for rows.Next() {
		var record ScrapeRecord
		var createdAt int64
		err = rows.Scan(&record.ID, &record.Endpoint, &record.Params, &record.Payload, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("recent scrapes: %w", err)
		}
		record.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, record)
	}
	return records, rows.Err()
}
