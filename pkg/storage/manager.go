package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"mfcexport/pkg/models"
)

// Manager writes export files into an output directory
type Manager struct {
	outputDir string
	crlf      bool
	mu        sync.Mutex
}

// NewManager creates a new storage manager
func NewManager(outputDir string, crlf bool) (*Manager, error) {
	if outputDir == "" {
		outputDir = "."
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
		crlf:      crlf,
	}, nil
}

// FileName returns the export file name used for a username
func FileName(username string) string {
	return "mfcexport-" + strings.ReplaceAll(username, " ", "_") + ".csv"
}

// Path returns where the export for username is written
func (m *Manager) Path(username string) string {
	return filepath.Join(m.outputDir, FileName(username))
}

// SortByID returns a copy of records in ascending ID order. Records sharing
// an ID keep their relative order.
func SortByID(records []models.FigureRecord) []models.FigureRecord {
	sorted := make([]models.FigureRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// EncodeFigures writes the header and one row per record in the given order
func EncodeFigures(w io.Writer, records []models.FigureRecord, crlf bool) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = crlf

	if err := writer.Write(models.CSVHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record.Row()); err != nil {
			return fmt.Errorf("failed to write record %d: %w", record.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFigures sorts records by ID and replaces the username's export file.
// It returns the path written.
func (m *Manager) WriteFigures(username string, records []models.FigureRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filename := m.Path(username)

	// Create temporary file first
	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	err = EncodeFigures(out, SortByID(records), m.crlf)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	// Atomic rename
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return filename, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}
