package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"lager-backend/internal/models"
)

// OpenJSONFile: das komplette Dokument liegt in einer JSON-Datei. Fehlt die
// Datei, wird sie aus dem Seed angelegt. Jeder Commit schreibt eine
// temporäre Datei und benennt sie atomar um.
func OpenJSONFile(path string, seed []byte) (*DocStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("datenverzeichnis anlegen: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		doc, err := ParseDocument(seed)
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		if err := writeJSONFile(path, doc); err != nil {
			return nil, err
		}
		log.Printf("%s fehlte, aus Seed angelegt", path)
	} else if err != nil {
		return nil, fmt.Errorf("db-datei prüfen: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("db-datei lesen: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}

	persist := func(_ context.Context, _, next *models.Document) error {
		return writeJSONFile(path, next)
	}
	return newDocStore(doc, persist, nil), nil
}

func writeJSONFile(path string, doc *models.Document) (retErr error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("dokument kodieren: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("temp-datei: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("temp-datei schreiben: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("temp-datei sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("temp-datei schließen: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("db-datei ersetzen: %w", err)
	}
	return nil
}
