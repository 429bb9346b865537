package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SchemaVersion is the current history file schema version.
const SchemaVersion = 1

// maxLineSize bounds a single history line.
const maxLineSize = 1024 * 1024

// Persistence stores history records.
type Persistence interface {
	// Load reads all records from storage, oldest first.
	Load() ([]Record, error)

	// Append adds a record to storage.
	Append(r Record) error

	// Rewrite replaces the stored records (used after trimming).
	Rewrite(rs []Record) error

	// Clear removes all stored records.
	Clear() error

	// Close releases file handles.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	EasytoastSchemaVersion int   `json:"easytoast_schema_version"`
	CreatedAt              int64 `json:"created_at"`
}

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// JSONLPersistence implements Persistence with one JSON record per line.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// DefaultPath returns the history file location.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "easytoast", "history.jsonl")
}

// NewJSONLPersistence opens the history file at path, creating it and its
// directory if needed.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	p := &JSONLPersistence{path: path, file: file}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := p.writeHeader(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return p, nil
}

// Path returns the file backing the persistence.
func (p *JSONLPersistence) Path() string {
	return p.path
}

func (p *JSONLPersistence) writeHeader() error {
	data, err := json.Marshal(schemaHeader{
		EasytoastSchemaVersion: SchemaVersion,
		CreatedAt:              time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = p.file.Write(append(data, '\n'))
	return err
}

func (p *JSONLPersistence) writeRecord(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = p.file.Write(append(data, '\n'))
	return err
}

// Load reads all records. Malformed lines are skipped.
func (p *JSONLPersistence) Load() ([]Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return nil, ErrPersistenceClosed
	}

	if _, err := p.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", p.path, err)
	}

	records, err := readRecords(p.file)
	if err != nil {
		return records, fmt.Errorf("read %s: %w", p.path, err)
	}

	if _, err := p.file.Seek(0, io.SeekEnd); err != nil {
		return records, err
	}
	return records, nil
}

func readRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if first {
			first = false
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.EasytoastSchemaVersion > 0 {
				if header.EasytoastSchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.EasytoastSchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil || rec.ID == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// Append adds a record and syncs the file.
func (p *JSONLPersistence) Append(r Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return ErrPersistenceClosed
	}
	if err := p.writeRecord(r); err != nil {
		return err
	}
	return p.file.Sync()
}

// Rewrite replaces the file contents with rs. The previous file is kept as
// a .bak until the new one is synced.
func (p *JSONLPersistence) Rewrite(rs []Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}
	if err := p.reopen(); err != nil {
		return err
	}
	for _, r := range rs {
		if err := p.writeRecord(r); err != nil {
			return err
		}
	}
	if err := p.file.Sync(); err != nil {
		return err
	}
	_ = os.Remove(p.path + ".bak")
	return nil
}

// Clear removes all records, leaving only the header.
func (p *JSONLPersistence) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}
	if err := p.reopen(); err != nil {
		return err
	}
	if err := p.file.Sync(); err != nil {
		return err
	}
	_ = os.Remove(p.path + ".bak")
	return nil
}

// reopen moves the current file aside and starts a fresh one with a header.
func (p *JSONLPersistence) reopen() error {
	if p.file != nil {
		if err := p.file.Close(); err != nil {
			return err
		}
		p.file = nil
	}

	backupPath := p.path + ".bak"
	if err := os.Rename(p.path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0600)
	if err != nil {
		_ = os.Rename(backupPath, p.path)
		return fmt.Errorf("failed to create new file: %w", err)
	}
	p.file = file
	return p.writeHeader()
}

// Close releases the file handle. It is safe to call more than once.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}
