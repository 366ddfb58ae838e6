package database

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"lager-backend/internal/config"
	"lager-backend/internal/models"
)

//go:embed seed/db.seed.json
var defaultSeed []byte

// Store: dokumentbasierter Speicher mit genau einem Schreiber.
//
// Update klont den committeten Stand, führt fn darauf aus, persistiert und
// tauscht erst danach den Stand aus. Schlägt fn oder die Persistierung fehl,
// bleibt der alte Stand unverändert. View bekommt den zuletzt committeten
// Stand und darf ihn nicht verändern.
type Store interface {
	View(ctx context.Context, fn func(doc *models.Document) error) error
	Update(ctx context.Context, fn func(doc *models.Document) error) error
	Close() error
}

type persistFunc func(ctx context.Context, prev, next *models.Document) error

// DocStore ist die gemeinsame Implementierung aller Backends.
type DocStore struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   *models.Document

	persist persistFunc
	closeFn func() error
}

var _ Store = (*DocStore)(nil)

func newDocStore(doc *models.Document, persist persistFunc, closeFn func() error) *DocStore {
	if doc == nil {
		doc = &models.Document{}
	}
	doc.Normalize()
	return &DocStore{state: doc, persist: persist, closeFn: closeFn}
}

// NewMemory: flüchtiger Speicher (Tests, Demo).
func NewMemory(doc *models.Document) *DocStore {
	return newDocStore(doc.Clone(), nil, nil)
}

func (s *DocStore) current() *models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *DocStore) View(ctx context.Context, fn func(doc *models.Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.current())
}

func (s *DocStore) Update(ctx context.Context, fn func(doc *models.Document) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	prev := s.current()
	next := prev.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.Normalize()

	if s.persist != nil {
		if err := s.persist(ctx, prev, next); err != nil {
			return fmt.Errorf("persistieren fehlgeschlagen: %w", err)
		}
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	return nil
}

// Snapshot: Kopie des committeten Stands (Export, Backup)
func (s *DocStore) Snapshot() *models.Document {
	return s.current().Clone()
}

func (s *DocStore) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// ParseDocument dekodiert ein DB-Dokument im JSON-Format der Datei.
func ParseDocument(data []byte) (*models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("dokument ungültig: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

// LoadSeed: Seed-Datei vom Pfad, sonst der eingebettete Standard-Seed
func LoadSeed(path string) ([]byte, error) {
	if path == "" {
		return defaultSeed, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed-datei lesen: %w", err)
	}
	return data, nil
}

// Open wählt das Backend anhand der Konfiguration.
func Open(cfg *config.Config) (*DocStore, error) {
	seed, err := LoadSeed(cfg.SeedFile)
	if err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case config.DriverJSON:
		path := filepath.Join(cfg.DataDir, "db.json")
		log.Printf("JSON-Datei als Speicher: %s", path)
		return OpenJSONFile(path, seed)
	case config.DriverSQLite:
		log.Printf("SQLite als Speicher: %s", cfg.SQLitePath)
		return OpenSQLite(cfg.SQLitePath, seed)
	case config.DriverPostgres:
		log.Println("Postgres als Speicher")
		return OpenPostgres(cfg.DatabaseDSN, seed)
	default:
		return nil, fmt.Errorf("unbekannter STORE_DRIVER %q", cfg.StoreDriver)
	}
}
