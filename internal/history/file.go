package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrInvalidStructure is returned when a document lacks meta or a runs array
	ErrInvalidStructure = errors.New("invalid AR history file structure")
	// ErrMalformed is returned when a document is not JSON
	ErrMalformed = errors.New("failed to parse AR history file")
)

// envelope keeps the raw members so their presence can be checked before decoding
type envelope struct {
	Meta json.RawMessage `json:"meta"`
	Runs json.RawMessage `json:"runs"`
}

// Marshal encodes h as indented JSON
func Marshal(h *History) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes h to w as UTF-8 JSON with two-space indentation
func Write(w io.Writer, h *History) error {
	if h == nil {
		h = New()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("failed to encode AR history: %w", err)
	}
	return nil
}

// Unmarshal decodes and validates a history document
func Unmarshal(data []byte) (*History, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if isNull(env.Meta) || isNull(env.Runs) || !isArray(env.Runs) {
		return nil, ErrInvalidStructure
	}

	var h History
	if err := json.Unmarshal(env.Meta, &h.Meta); err != nil {
		return nil, fmt.Errorf("%w: meta: %v", ErrInvalidStructure, err)
	}
	if err := json.Unmarshal(env.Runs, &h.Runs); err != nil {
		return nil, fmt.Errorf("%w: runs: %v", ErrInvalidStructure, err)
	}
	return &h, nil
}

// Read decodes and validates a history document from r
func Read(r io.Reader) (*History, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read AR history: %w", err)
	}
	return Unmarshal(data)
}

// Load reads a history file from disk
func Load(path string) (*History, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open AR history file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Save writes h to path, creating parent directories as needed
func Save(path string, h *History) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	data, err := Marshal(h)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write AR history file: %w", err)
	}
	return nil
}

// ExportFilename names an exported history file after the export date
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("ar-history-%s.json", now.UTC().Format("2006-01-02"))
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
