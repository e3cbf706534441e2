// Package store persists confirmed registrations through sqlx. The same
// queries run on PostgreSQL and SQLite; placeholders are rebound per driver.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/iteachbot/academy/registration"
	"github.com/m3rciful/iteachbot/core/logger"
)

// ErrNotFound is returned by Get for an unknown public id.
var ErrNotFound = errors.New("store: registration not found")

// PersistenceError wraps a failed database operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "store " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Code identifies persistence failures in handler logs.
func (e *PersistenceError) Code() string { return "PERSISTENCE" }

// Store implements registration.Store.
type Store struct {
	db *sqlx.DB
}

// New wraps an open connection whose schema is already migrated.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type row struct {
	ID         int64          `db:"id"`
	PublicID   string         `db:"public_id"`
	UserID     int64          `db:"tg_user_id"`
	Username   sql.NullString `db:"username"`
	FirstName  sql.NullString `db:"first_name"`
	LastName   sql.NullString `db:"last_name"`
	FullName   string         `db:"full_name"`
	Age        int            `db:"age"`
	Phone      string         `db:"phone"`
	CourseKey  string         `db:"course_key"`
	Course     string         `db:"course"`
	LevelKey   sql.NullString `db:"level_key"`
	Level      sql.NullString `db:"level"`
	SectionKey string         `db:"section_key"`
	Section    string         `db:"section"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r row) registration() registration.Registration {
	return registration.Registration{
		PublicID:   r.PublicID,
		UserID:     r.UserID,
		Username:   r.Username.String,
		FirstName:  r.FirstName.String,
		LastName:   r.LastName.String,
		FullName:   r.FullName,
		Age:        r.Age,
		Phone:      r.Phone,
		CourseKey:  r.CourseKey,
		Course:     r.Course,
		LevelKey:   r.LevelKey.String,
		Level:      r.Level.String,
		SectionKey: r.SectionKey,
		Section:    r.Section,
		CreatedAt:  r.CreatedAt,
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

const insertQuery = `INSERT INTO registrations
	(public_id, tg_user_id, username, first_name, last_name, full_name, age, phone,
	 course_key, course, level_key, level, section_key, section, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

// Save inserts r and returns its row id. Timestamps are stored in UTC.
func (s *Store) Save(ctx context.Context, r registration.Registration) (int64, error) {
	start := time.Now()
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(insertQuery),
		r.PublicID, r.UserID, nullable(r.Username), nullable(r.FirstName), nullable(r.LastName),
		r.FullName, r.Age, r.Phone,
		r.CourseKey, r.Course, nullable(r.LevelKey), nullable(r.Level), r.SectionKey, r.Section,
		r.CreatedAt.UTC(),
	).Scan(&id)
	logger.Debug(ctx, "store", "registration.insert",
		slog.String("status", logger.Status(err)),
		slog.String("table", "registrations"),
		slog.Duration("duration", logger.Took(start)),
	)
	if err != nil {
		return 0, &PersistenceError{Op: "save", Err: err}
	}
	return id, nil
}

// Get loads a registration by its public id.
func (s *Store) Get(ctx context.Context, publicID string) (registration.Registration, error) {
	var r row
	err := s.db.GetContext(ctx, &r, s.db.Rebind(`SELECT * FROM registrations WHERE public_id = ?`), publicID)
	if errors.Is(err, sql.ErrNoRows) {
		return registration.Registration{}, ErrNotFound
	}
	if err != nil {
		return registration.Registration{}, &PersistenceError{Op: "get", Err: err}
	}
	return r.registration(), nil
}

// CountByUser returns how many registrations a Telegram user has stored.
func (s *Store) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM registrations WHERE tg_user_id = ?`), userID); err != nil {
		return 0, &PersistenceError{Op: "count", Err: err}
	}
	return n, nil
}

// CourseCount is the number of registrations for one course.
type CourseCount struct {
	CourseKey string `db:"course_key"`
	Course    string `db:"course"`
	Count     int    `db:"n"`
}

// Stats summarises stored registrations.
type Stats struct {
	Total    int
	Recent   int
	ByCourse []CourseCount
}

// Stats counts all registrations, those created at or after since, and the split per course.
func (s *Store) Stats(ctx context.Context, since time.Time) (Stats, error) {
	var st Stats
	if err := s.db.GetContext(ctx, &st.Total, `SELECT COUNT(*) FROM registrations`); err != nil {
		return Stats{}, &PersistenceError{Op: "stats", Err: err}
	}
	if err := s.db.GetContext(ctx, &st.Recent,
		s.db.Rebind(`SELECT COUNT(*) FROM registrations WHERE created_at >= ?`), since.UTC()); err != nil {
		return Stats{}, &PersistenceError{Op: "stats", Err: err}
	}
	if err := s.db.SelectContext(ctx, &st.ByCourse,
		`SELECT course_key, MIN(course) AS course, COUNT(*) AS n
		 FROM registrations GROUP BY course_key ORDER BY n DESC, course_key`); err != nil {
		return Stats{}, &PersistenceError{Op: "stats", Err: err}
	}
	return st, nil
}

// Ping reports database reachability for the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store ping: %w", err)
	}
	return nil
}
