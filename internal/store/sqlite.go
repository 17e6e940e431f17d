package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/me/covweb/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Inspections ---

// CreateInspection inserts rec, assigning an ID and creation time when unset.
func (s *SQLiteStore) CreateInspection(ctx context.Context, rec *model.InspectionRecord) error {
	if rec.ID == "" {
		rec.ID = "insp_" + uuid.New().String()
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	s.logger.Debug("sql", "op", "insert", "table", "inspections", "id", rec.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inspections (id, van_number, date, inspector_id, event_name, odometer_in, video_filename, license_plate, comments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.VanNumber, rec.Date, rec.InspectorID, rec.EventName, rec.OdometerIn,
		rec.VideoFilename, rec.LicensePlate, rec.Comments, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inspection: %w", err)
	}
	return s.UpsertCOV(ctx, rec.VanNumber)
}

// ListInspections returns one page of inspections and the total matching count.
func (s *SQLiteStore) ListInspections(ctx context.Context, q model.InspectionQuery) ([]model.InspectionRecord, int, error) {
	q.Clamp()
	s.logger.Debug("sql", "op", "list", "table", "inspections", "page", q.Page, "per_page", q.PerPage, "sort", q.Sort)

	where := ""
	var args []any
	if q.Event != "" {
		where = " WHERE event_name = ?"
		args = append(args, q.Event)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inspections`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inspections: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+inspectionColumns+` FROM inspections`+where+
			` ORDER BY `+orderClause(q.Sort, q.Order)+` LIMIT ? OFFSET ?`,
		append(args, q.PerPage, q.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list inspections: %w", err)
	}
	defer rows.Close()

	recs, err := scanInspections(rows)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// MissingVideos returns every inspection without an attached video, oldest first.
func (s *SQLiteStore) MissingVideos(ctx context.Context) ([]model.InspectionRecord, error) {
	s.logger.Debug("sql", "op", "select", "table", "inspections", "filter", "missing_video")

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+inspectionColumns+` FROM inspections WHERE video_filename = '' ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list missing videos: %w", err)
	}
	defer rows.Close()
	return scanInspections(rows)
}

const inspectionColumns = `id, van_number, date, inspector_id, event_name, odometer_in, video_filename, license_plate, comments, created_at`

// sortColumns whitelists the columns a single-key sort may use.
var sortColumns = map[string]string{
	model.SortCreatedAt: "created_at",
	model.SortDate:      "date",
	"van_number":        "van_number",
	"inspector_id":      "inspector_id",
	"event_name":        "event_name",
	"odometer_in":       "CAST(odometer_in AS INTEGER)",
}

// orderClause maps a sort key to its ORDER BY clause. Multi-level keys ignore
// order; unknown single keys fall back to created_at. Ties break newest first,
// then by id, so paging is stable.
func orderClause(sortKey, order string) string {
	switch sortKey {
	case model.SortVanDate:
		return "van_number ASC, created_at DESC, id ASC"
	case model.SortVanInspectorDate:
		return "van_number ASC, inspector_id ASC, created_at DESC, id ASC"
	case model.SortDateVan:
		return "created_at DESC, van_number ASC, id ASC"
	case model.SortEventDate:
		return "event_name ASC, created_at DESC, id ASC"
	}

	col, ok := sortColumns[sortKey]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	return col + " " + dir + ", created_at DESC, id ASC"
}

func scanInspections(rows *sql.Rows) ([]model.InspectionRecord, error) {
	recs := []model.InspectionRecord{}
	for rows.Next() {
		var r model.InspectionRecord
		if err := rows.Scan(&r.ID, &r.VanNumber, &r.Date, &r.InspectorID, &r.EventName, &r.OdometerIn,
			&r.VideoFilename, &r.LicensePlate, &r.Comments, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// --- Events ---

// ErrDuplicateEvent is returned by CreateEvent when the name is taken.
var ErrDuplicateEvent = errors.New("event already exists")

// CreateEvent inserts ev, assigning an ID, canonical name and creation time when unset.
func (s *SQLiteStore) CreateEvent(ctx context.Context, ev *model.Event) error {
	if ev.ID == "" {
		ev.ID = "evt_" + uuid.New().String()
	}
	if ev.CanonicalName == "" {
		ev.CanonicalName = model.CanonicalEventName(ev.Name)
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	s.logger.Debug("sql", "op", "insert", "table", "events", "id", ev.ID, "name", ev.Name)

	existing, err := s.GetEventByName(ctx, ev.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateEvent
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (id, name, canonical_name, created_by, created_at) VALUES (?, ?, ?, ?, ?)`,
		ev.ID, ev.Name, ev.CanonicalName, ev.CreatedBy, ev.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns all events sorted by name.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	s.logger.Debug("sql", "op", "list", "table", "events")

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, canonical_name, created_by, created_at FROM events ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// GetEventByName returns the event with exactly this name, or nil.
func (s *SQLiteStore) GetEventByName(ctx context.Context, name string) (*model.Event, error) {
	return s.getEvent(ctx, "name", name)
}

// GetEventByCanonical returns an event whose canonical name matches, or nil.
func (s *SQLiteStore) GetEventByCanonical(ctx context.Context, canonical string) (*model.Event, error) {
	return s.getEvent(ctx, "canonical_name", canonical)
}

func (s *SQLiteStore) getEvent(ctx context.Context, column, value string) (*model.Event, error) {
	s.logger.Debug("sql", "op", "select", "table", "events", column, value)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, canonical_name, created_by, created_at FROM events WHERE `+column+` = ? LIMIT 1`, value)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*model.Event, error) {
	var ev model.Event
	var createdAt string
	if err := row.Scan(&ev.ID, &ev.Name, &ev.CanonicalName, &ev.CreatedBy, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	ev.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &ev, nil
}

// --- COVs ---

// UpsertCOV registers a vehicle number; registering twice is a no-op.
func (s *SQLiteStore) UpsertCOV(ctx context.Context, number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil
	}
	s.logger.Debug("sql", "op", "upsert", "table", "covs", "number", number)
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO covs (number) VALUES (?)`, number); err != nil {
		return fmt.Errorf("upsert cov: %w", err)
	}
	return nil
}

// ListCOVs returns all registered vehicles, numerically ordered where possible.
func (s *SQLiteStore) ListCOVs(ctx context.Context) ([]model.COV, error) {
	s.logger.Debug("sql", "op", "list", "table", "covs")

	rows, err := s.db.QueryContext(ctx,
		`SELECT number FROM covs ORDER BY CAST(number AS INTEGER) ASC, number ASC`)
	if err != nil {
		return nil, fmt.Errorf("list covs: %w", err)
	}
	defer rows.Close()

	covs := []model.COV{}
	for rows.Next() {
		var c model.COV
		if err := rows.Scan(&c.Number); err != nil {
			return nil, fmt.Errorf("scan cov: %w", err)
		}
		covs = append(covs, c)
	}
	return covs, rows.Err()
}
