package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"raksproperties/catalog"
	"raksproperties/models"
)

// SQLiteStore keeps a catalog in a local SQLite file. The engine only reads
// from it; SeedCatalog exists for tooling that prepares the file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		price INTEGER NOT NULL,
		location TEXT,
		bedrooms INTEGER,
		property_type TEXT,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS locations (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		average_price INTEGER,
		active_listings INTEGER,
		growth_rate TEXT
	);

	CREATE TABLE IF NOT EXISTS services (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS external_listings (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		price INTEGER NOT NULL,
		location TEXT,
		provider TEXT,
		relevance REAL,
		property_type TEXT,
		bedrooms INTEGER,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS market_trends (
		location TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		average_price INTEGER,
		growth TEXT,
		demand_factors JSON,
		investment_outlook TEXT
	);

	CREATE TABLE IF NOT EXISTS catalog_meta (
		key TEXT PRIMARY KEY,
		value JSON
	);

	CREATE TABLE IF NOT EXISTS reload_runs (
		id INTEGER PRIMARY KEY,
		source TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		fingerprint TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON reload_runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Name() string { return "sqlite:" + s.path }

// Load reads the whole catalog. It satisfies catalog.Source.
func (s *SQLiteStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	var c catalog.Catalog
	var err error

	if c.Properties, err = s.loadProperties(ctx); err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}
	if c.Locations, err = s.loadLocations(ctx); err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	if c.Services, err = s.loadServices(ctx); err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	if c.External, err = s.loadExternal(ctx); err != nil {
		return nil, fmt.Errorf("load external listings: %w", err)
	}
	if c.MarketTrends, err = s.loadTrends(ctx); err != nil {
		return nil, fmt.Errorf("load market trends: %w", err)
	}
	if err := s.loadMeta(ctx, &c); err != nil {
		return nil, fmt.Errorf("load catalog meta: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) loadProperties(ctx context.Context) ([]models.ListingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, price, location, bedrooms, property_type, description
		FROM properties ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ListingRecord
	for rows.Next() {
		var p models.ListingRecord
		var bedrooms sql.NullInt64
		var location, ptype, desc sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &location, &bedrooms, &ptype, &desc); err != nil {
			return nil, err
		}
		p.Location, p.PropertyType, p.Description = location.String, ptype.String, desc.String
		p.Bedrooms = intPtr(bedrooms)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadLocations(ctx context.Context) ([]models.LocationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, average_price, active_listings, growth_rate
		FROM locations ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LocationRecord
	for rows.Next() {
		var l models.LocationRecord
		if err := rows.Scan(&l.Name, &l.AveragePrice, &l.ActiveListings, &l.GrowthRate); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadServices(ctx context.Context) ([]models.ServiceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, description FROM services ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ServiceRecord
	for rows.Next() {
		var svc models.ServiceRecord
		var desc sql.NullString
		if err := rows.Scan(&svc.Name, &desc); err != nil {
			return nil, err
		}
		svc.Description = desc.String
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadExternal(ctx context.Context) ([]models.ExternalListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, price, location, provider, relevance, property_type, bedrooms, description
		FROM external_listings ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ExternalListing
	for rows.Next() {
		var e models.ExternalListing
		var bedrooms sql.NullInt64
		var location, provider, ptype, desc sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &e.Price, &location, &provider, &e.Relevance, &ptype, &bedrooms, &desc); err != nil {
			return nil, err
		}
		e.Location, e.Provider, e.PropertyType, e.Description = location.String, provider.String, ptype.String, desc.String
		e.Bedrooms = intPtr(bedrooms)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadTrends(ctx context.Context) ([]models.MarketTrend, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location, average_price, growth, demand_factors, investment_outlook
		FROM market_trends ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MarketTrend
	for rows.Next() {
		var t models.MarketTrend
		var factors sql.NullString
		if err := rows.Scan(&t.Location, &t.AveragePrice, &t.Growth, &factors, &t.InvestmentOutlook); err != nil {
			return nil, err
		}
		if factors.Valid {
			if err := json.Unmarshal([]byte(factors.String), &t.DemandFactors); err != nil {
				return nil, fmt.Errorf("demand factors for %s: %w", t.Location, err)
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const (
	metaPriceSummary = "price_summary"
	metaComparative  = "comparative"
	metaInsights     = "insights"
)

func (s *SQLiteStore) loadMeta(ctx context.Context, c *catalog.Catalog) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM catalog_meta`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if err := decodeMeta(c, key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SeedCatalog replaces the stored catalog with c in a single transaction
func (s *SQLiteStore) SeedCatalog(ctx context.Context, c *catalog.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"properties", "locations", "services", "external_listings", "market_trends", "catalog_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, p := range c.Properties {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO properties (id, position, title, price, location, bedrooms, property_type, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, i, p.Title, p.Price, p.Location, p.Bedrooms, p.PropertyType, p.Description); err != nil {
			return fmt.Errorf("insert property %s: %w", p.ID, err)
		}
	}

	for i, l := range c.Locations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO locations (name, position, average_price, active_listings, growth_rate)
			VALUES (?, ?, ?, ?, ?)`,
			l.Name, i, l.AveragePrice, l.ActiveListings, l.GrowthRate); err != nil {
			return fmt.Errorf("insert location %s: %w", l.Name, err)
		}
	}

	for i, svc := range c.Services {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO services (name, position, description) VALUES (?, ?, ?)`,
			svc.Name, i, svc.Description); err != nil {
			return fmt.Errorf("insert service %s: %w", svc.Name, err)
		}
	}

	for i, e := range c.External {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO external_listings (id, position, title, price, location, provider, relevance, property_type, bedrooms, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, i, e.Title, e.Price, e.Location, e.Provider, e.Relevance, e.PropertyType, e.Bedrooms, e.Description); err != nil {
			return fmt.Errorf("insert external listing %s: %w", e.ID, err)
		}
	}

	for i, t := range c.MarketTrends {
		factors, _ := json.Marshal(t.DemandFactors)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO market_trends (location, position, average_price, growth, demand_factors, investment_outlook)
			VALUES (?, ?, ?, ?, ?, ?)`,
			t.Location, i, t.AveragePrice, t.Growth, string(factors), t.InvestmentOutlook); err != nil {
			return fmt.Errorf("insert market trend %s: %w", t.Location, err)
		}
	}

	meta, err := encodeMeta(c)
	if err != nil {
		return err
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO catalog_meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("insert %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// ReloadRun records one attempt to refresh the live catalog
type ReloadRun struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Status      string    `json:"status"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Error       string    `json:"error,omitempty"`
}

const (
	ReloadStatusChanged   = "changed"
	ReloadStatusUnchanged = "unchanged"
	ReloadStatusFailed    = "failed"
)

func (s *SQLiteStore) RecordReload(run *ReloadRun) error {
	result, err := s.db.Exec(`
		INSERT INTO reload_runs (source, started_at, finished_at, status, fingerprint, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.Source, run.StartedAt, run.FinishedAt, run.Status, run.Fingerprint, run.Error)
	if err != nil {
		return err
	}
	run.ID, err = result.LastInsertId()
	return err
}

// RecentReloads returns the latest runs, newest first
func (s *SQLiteStore) RecentReloads(limit int) ([]ReloadRun, error) {
	rows, err := s.db.Query(`
		SELECT id, source, started_at, finished_at, status, fingerprint, error
		FROM reload_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ReloadRun
	for rows.Next() {
		var r ReloadRun
		var fingerprint, errText sql.NullString
		if err := rows.Scan(&r.ID, &r.Source, &r.StartedAt, &r.FinishedAt, &r.Status, &fingerprint, &errText); err != nil {
			return nil, err
		}
		r.Fingerprint, r.Error = fingerprint.String, errText.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
