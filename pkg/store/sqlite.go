package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"travelglobe/pkg/db"
	"travelglobe/pkg/model"
)

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Timeline ---

func (s *SQLiteStore) ListTimeline(ctx context.Context, year int) ([]model.TravelTimelineEntry, error) {
	query := `SELECT id, year, sequence_order, city_id, country_id, visit_date, latitude, longitude,
		album_count, photo_count, location_name
		FROM timeline_entries WHERE year = ? ORDER BY sequence_order, id`
	rows, err := s.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.TravelTimelineEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (model.TravelTimelineEntry, error) {
	var (
		e                       model.TravelTimelineEntry
		cityID, countryID, name sql.NullString
		visitDate               sql.NullString
	)
	err := rows.Scan(&e.ID, &e.Year, &e.SequenceOrder, &cityID, &countryID, &visitDate,
		&e.Latitude, &e.Longitude, &e.AlbumCount, &e.PhotoCount, &name)
	if err != nil {
		return e, err
	}
	e.CityID = nullToPtr(cityID)
	e.CountryID = nullToPtr(countryID)
	e.LocationName = nullToPtr(name)
	if visitDate.Valid && visitDate.String != "" {
		t, err := time.Parse(time.RFC3339Nano, visitDate.String)
		if err != nil {
			return e, fmt.Errorf("entry %s: bad visit_date %q: %w", e.ID, visitDate.String, err)
		}
		e.VisitDate = t
	}
	return e, nil
}

func (s *SQLiteStore) ListYears(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT year FROM timeline_entries ORDER BY year")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func (s *SQLiteStore) SaveEntry(ctx context.Context, e *model.TravelTimelineEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	var visitDate any
	if !e.VisitDate.IsZero() {
		visitDate = e.VisitDate.UTC().Format(time.RFC3339Nano)
	}
	query := `INSERT OR REPLACE INTO timeline_entries
		(id, year, sequence_order, city_id, country_id, visit_date, latitude, longitude,
		album_count, photo_count, location_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Year, e.SequenceOrder, ptrToNull(e.CityID), ptrToNull(e.CountryID), visitDate,
		e.Latitude, e.Longitude, e.AlbumCount, e.PhotoCount, ptrToNull(e.LocationName), time.Now())
	return err
}

func (s *SQLiteStore) DeleteYear(ctx context.Context, year int) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM timeline_entries WHERE year = ?", year)
	return err
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		// sql.ErrNoRows and read failures both mean no usable value
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func ptrToNull(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
