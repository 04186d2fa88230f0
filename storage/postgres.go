package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"raksproperties/catalog"
	"raksproperties/models"
)

// PostgresStore serves the catalog from a shared Postgres database
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Name() string { return "postgres" }

// Migrate creates the catalog tables if they do not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS catalog_properties (
			id TEXT PRIMARY KEY,
			position INT NOT NULL,
			title TEXT NOT NULL,
			price BIGINT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			bedrooms INT,
			property_type TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS catalog_locations (
			name TEXT PRIMARY KEY,
			position INT NOT NULL,
			average_price BIGINT NOT NULL,
			active_listings INT NOT NULL,
			growth_rate TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS catalog_services (
			name TEXT PRIMARY KEY,
			position INT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS catalog_external_listings (
			id TEXT PRIMARY KEY,
			position INT NOT NULL,
			title TEXT NOT NULL,
			price BIGINT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL DEFAULT '',
			relevance DOUBLE PRECISION NOT NULL,
			property_type TEXT NOT NULL DEFAULT '',
			bedrooms INT,
			description TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS catalog_market_trends (
			location TEXT PRIMARY KEY,
			position INT NOT NULL,
			average_price BIGINT NOT NULL,
			growth TEXT NOT NULL DEFAULT '',
			demand_factors TEXT[] NOT NULL DEFAULT '{}',
			investment_outlook TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS catalog_meta (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Load reads the whole catalog inside one read-only transaction so the
// snapshot is consistent even while a seed is running.
func (s *PostgresStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var c catalog.Catalog

	c.Properties, err = collect(ctx, tx, `
		SELECT id, title, price, location, bedrooms, property_type, description
		FROM catalog_properties ORDER BY position`,
		func(row pgx.CollectableRow) (models.ListingRecord, error) {
			var p models.ListingRecord
			err := row.Scan(&p.ID, &p.Title, &p.Price, &p.Location, &p.Bedrooms, &p.PropertyType, &p.Description)
			return p, err
		})
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}

	c.Locations, err = collect(ctx, tx, `
		SELECT name, average_price, active_listings, growth_rate
		FROM catalog_locations ORDER BY position`,
		func(row pgx.CollectableRow) (models.LocationRecord, error) {
			var l models.LocationRecord
			err := row.Scan(&l.Name, &l.AveragePrice, &l.ActiveListings, &l.GrowthRate)
			return l, err
		})
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}

	c.Services, err = collect(ctx, tx, `SELECT name, description FROM catalog_services ORDER BY position`,
		func(row pgx.CollectableRow) (models.ServiceRecord, error) {
			var svc models.ServiceRecord
			err := row.Scan(&svc.Name, &svc.Description)
			return svc, err
		})
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}

	c.External, err = collect(ctx, tx, `
		SELECT id, title, price, location, provider, relevance, property_type, bedrooms, description
		FROM catalog_external_listings ORDER BY position`,
		func(row pgx.CollectableRow) (models.ExternalListing, error) {
			var e models.ExternalListing
			err := row.Scan(&e.ID, &e.Title, &e.Price, &e.Location, &e.Provider, &e.Relevance,
				&e.PropertyType, &e.Bedrooms, &e.Description)
			return e, err
		})
	if err != nil {
		return nil, fmt.Errorf("load external listings: %w", err)
	}

	c.MarketTrends, err = collect(ctx, tx, `
		SELECT location, average_price, growth, demand_factors, investment_outlook
		FROM catalog_market_trends ORDER BY position`,
		func(row pgx.CollectableRow) (models.MarketTrend, error) {
			var t models.MarketTrend
			err := row.Scan(&t.Location, &t.AveragePrice, &t.Growth, &t.DemandFactors, &t.InvestmentOutlook)
			return t, err
		})
	if err != nil {
		return nil, fmt.Errorf("load market trends: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT key, value::text FROM catalog_meta`)
	if err != nil {
		return nil, fmt.Errorf("load catalog meta: %w", err)
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan catalog meta: %w", err)
		}
		if err := decodeMeta(&c, key, value); err != nil {
			rows.Close()
			return nil, err
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load catalog meta: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func collect[T any](ctx context.Context, tx pgx.Tx, query string, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scan)
}

// SeedCatalog replaces the stored catalog with c
func (s *PostgresStore) SeedCatalog(ctx context.Context, c *catalog.Catalog) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE catalog_properties, catalog_locations, catalog_services,
		catalog_external_listings, catalog_market_trends, catalog_meta`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	batch := &pgx.Batch{}
	for i, p := range c.Properties {
		batch.Queue(`INSERT INTO catalog_properties (id, position, title, price, location, bedrooms, property_type, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, i, p.Title, p.Price, p.Location, p.Bedrooms, p.PropertyType, p.Description)
	}
	for i, l := range c.Locations {
		batch.Queue(`INSERT INTO catalog_locations (name, position, average_price, active_listings, growth_rate)
			VALUES ($1, $2, $3, $4, $5)`,
			l.Name, i, l.AveragePrice, l.ActiveListings, l.GrowthRate)
	}
	for i, svc := range c.Services {
		batch.Queue(`INSERT INTO catalog_services (name, position, description) VALUES ($1, $2, $3)`,
			svc.Name, i, svc.Description)
	}
	for i, e := range c.External {
		batch.Queue(`INSERT INTO catalog_external_listings (id, position, title, price, location, provider, relevance, property_type, bedrooms, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			e.ID, i, e.Title, e.Price, e.Location, e.Provider, e.Relevance, e.PropertyType, e.Bedrooms, e.Description)
	}
	for i, t := range c.MarketTrends {
		batch.Queue(`INSERT INTO catalog_market_trends (location, position, average_price, growth, demand_factors, investment_outlook)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			t.Location, i, t.AveragePrice, t.Growth, t.DemandFactors, t.InvestmentOutlook)
	}
	meta, err := encodeMeta(c)
	if err != nil {
		return err
	}
	for key, value := range meta {
		batch.Queue(`INSERT INTO catalog_meta (key, value) VALUES ($1, $2::jsonb)`, key, value)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert catalog: %w", err)
	}
	return tx.Commit(ctx)
}

func encodeMeta(c *catalog.Catalog) (map[string]string, error) {
	out := make(map[string]string, 3)
	for key, v := range map[string]any{
		metaPriceSummary: c.PriceSummary,
		metaComparative:  c.Comparative,
		metaInsights:     c.Insights,
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = string(data)
	}
	return out, nil
}

func decodeMeta(c *catalog.Catalog, key, value string) error {
	var target any
	switch key {
	case metaPriceSummary:
		target = &c.PriceSummary
	case metaComparative:
		target = &c.Comparative
	case metaInsights:
		target = &c.Insights
	default:
		return nil
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
