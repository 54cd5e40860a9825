// Package archive keeps a long-term relational copy of every ingested event
// series. The canonical JSON document only holds the latest fetch window;
// the archive accumulates history across fetches for ad-hoc querying.
package archive

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"flarecast/internal/metrics"
	"flarecast/internal/models"
)

// DB represents the archive database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes the schema
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates the necessary tables. Event timestamps are stored as
// the raw strings from the feed: malformed values must survive archiving
// unchanged, since downstream consumers apply their own sentinel fallback.
func (db *DB) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS solar_flares (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			class_type VARCHAR(20) NOT NULL DEFAULT '',
			begin_time VARCHAR(20) NOT NULL,
			peak_time VARCHAR(20) NOT NULL DEFAULT '',
			end_time VARCHAR(20) NOT NULL DEFAULT '',
			duration DOUBLE NOT NULL DEFAULT 0,
			UNIQUE KEY uq_flares (begin_time, class_type),
			INDEX idx_flares_begin (begin_time)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS context_events (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			series VARCHAR(10) NOT NULL,
			event_time VARCHAR(20) NOT NULL,
			detail VARCHAR(255) NOT NULL DEFAULT '',
			value DOUBLE NOT NULL DEFAULT 0,
			UNIQUE KEY uq_context (series, event_time, detail),
			INDEX idx_context_series (series),
			INDEX idx_context_time (event_time)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// StoreDocument archives every event in the document inside one transaction.
// Repeated fetch windows overlap, so inserts are idempotent on the natural
// keys (INSERT IGNORE).
func (db *DB) StoreDocument(doc *models.EventDocument) error {
	queryStart := time.Now()

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if committed

	flareStmt, err := tx.Prepare(`INSERT IGNORE INTO solar_flares (class_type, begin_time, peak_time, end_time, duration) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare flare statement: %w", err)
	}
	defer flareStmt.Close()

	for _, f := range doc.SolarFlares {
		if _, err := flareStmt.Exec(f.ClassType, f.BeginTime, f.PeakTime, f.EndTime, float64(f.Duration)); err != nil {
			return fmt.Errorf("failed to insert flare at %s: %w", f.BeginTime, err)
		}
	}

	ctxStmt, err := tx.Prepare(`INSERT IGNORE INTO context_events (series, event_time, detail, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare context statement: %w", err)
	}
	defer ctxStmt.Close()

	for _, s := range doc.GeomagneticStorms {
		if _, err := ctxStmt.Exec("GST", s.StartTime, "", float64(s.KpIndex)); err != nil {
			return fmt.Errorf("failed to insert storm at %s: %w", s.StartTime, err)
		}
	}
	for _, c := range doc.CoronalMassEjections {
		if _, err := ctxStmt.Exec("CME", c.StartTime, c.Type, float64(c.Speed)); err != nil {
			return fmt.Errorf("failed to insert CME at %s: %w", c.StartTime, err)
		}
	}
	for _, s := range doc.SolarEnergeticParticles {
		if _, err := ctxStmt.Exec("SEP", s.EventTime, s.Source, 0); err != nil {
			return fmt.Errorf("failed to insert SEP event at %s: %w", s.EventTime, err)
		}
	}
	for _, s := range doc.InterplanetaryShocks {
		if _, err := ctxStmt.Exec("IPS", s.EventTime, s.Location, 0); err != nil {
			return fmt.Errorf("failed to insert IPS event at %s: %w", s.EventTime, err)
		}
	}

	err = tx.Commit()
	metrics.RecordDBQuery("INSERT", "events", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	total := len(doc.SolarFlares) + len(doc.GeomagneticStorms) + len(doc.CoronalMassEjections) +
		len(doc.SolarEnergeticParticles) + len(doc.InterplanetaryShocks)
	log.Printf("✓ Archived %d events (%d flares)", total, len(doc.SolarFlares))
	return nil
}

// CountBySeries returns archived event counts keyed by series name.
func (db *DB) CountBySeries() (map[string]int, error) {
	counts := make(map[string]int)

	queryStart := time.Now()
	row := db.conn.QueryRow(`SELECT COUNT(*) FROM solar_flares`)
	var flares int
	err := row.Scan(&flares)
	metrics.RecordDBQuery("SELECT", "solar_flares", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count flares: %w", err)
	}
	counts["FLR"] = flares

	queryStart = time.Now()
	rows, err := db.conn.Query(`SELECT series, COUNT(*) FROM context_events GROUP BY series`)
	metrics.RecordDBQuery("SELECT", "context_events", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count context events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var series string
		var count int
		if err := rows.Scan(&series, &count); err != nil {
			return nil, fmt.Errorf("failed to scan series count: %w", err)
		}
		counts[series] = count
	}

	return counts, rows.Err()
}

// RecentFlares returns the most recently archived flares, newest first.
// The fixed timestamp layout makes lexicographic order chronological.
func (db *DB) RecentFlares(limit int) ([]models.FlareEvent, error) {
	queryStart := time.Now()
	rows, err := db.conn.Query(
		`SELECT class_type, begin_time, peak_time, end_time, duration FROM solar_flares ORDER BY begin_time DESC LIMIT ?`,
		limit)
	metrics.RecordDBQuery("SELECT", "solar_flares", time.Since(queryStart), err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flares []models.FlareEvent
	for rows.Next() {
		var f models.FlareEvent
		var duration float64
		if err := rows.Scan(&f.ClassType, &f.BeginTime, &f.PeakTime, &f.EndTime, &duration); err != nil {
			return nil, err
		}
		f.Duration = models.Number(duration)
		flares = append(flares, f)
	}

	return flares, rows.Err()
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
