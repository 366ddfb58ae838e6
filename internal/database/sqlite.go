package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"lager-backend/internal/models"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var sqliteBuckets = []string{"users", "articles", "bookings"}

// OpenSQLite legt jede Collection als JSON-Blob in eine eigene Zeile der
// Tabelle state. Nach jedem erfolgreichen Update werden alle Buckets in einer
// SQL-Transaktion geschrieben.
func OpenSQLite(path string, seed []byte) (*DocStore, error) {
	if path == "" {
		path = "lager.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("verzeichnis anlegen: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite öffnen: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tabelle state anlegen: %w", err)
	}

	doc, found, err := loadSQLite(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if !found {
		doc, err = ParseDocument(seed)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
		if err := persistSQLite(context.Background(), db, doc); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Printf("SQLite-Datenbank %s aus Seed angelegt", path)
	}

	persist := func(ctx context.Context, _, next *models.Document) error {
		return persistSQLite(ctx, db, next)
	}
	return newDocStore(doc, persist, db.Close), nil
}

func loadSQLite(db *sql.DB) (*models.Document, bool, error) {
	rows, err := db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, false, fmt.Errorf("state lesen: %w", err)
	}
	defer func() { _ = rows.Close() }()

	doc := &models.Document{}
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, false, fmt.Errorf("scan: %w", err)
		}
		found = true
		switch bucket {
		case "users":
			err = json.Unmarshal(payload, &doc.Users)
		case "articles":
			err = json.Unmarshal(payload, &doc.Articles)
		case "bookings":
			err = json.Unmarshal(payload, &doc.Bookings)
		}
		if err != nil {
			return nil, false, fmt.Errorf("bucket %s dekodieren: %w", bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	doc.Normalize()
	return doc, found, nil
}

func persistSQLite(ctx context.Context, db *sql.DB, doc *models.Document) (retErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, bucket := range sqliteBuckets {
		var data []byte
		switch bucket {
		case "users":
			data, err = json.Marshal(doc.Users)
		case "articles":
			data, err = json.Marshal(doc.Articles)
		case "bookings":
			data, err = json.Marshal(doc.Bookings)
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	return tx.Commit()
}
