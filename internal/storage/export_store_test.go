package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeString(s string) func(w io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestExportStore_Save(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "exports")
	store := NewExportStore(baseDir, zap.NewNop())

	t.Run("creates the directory and writes the file", func(t *testing.T) {
		path, err := store.Save("ar-history-2024-03-01.json", FileTypeJSON, writeString(`{"meta":{}}`))

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(baseDir, "ar-history-2024-03-01.json"), path)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `{"meta":{}}`, string(content))
	})

	t.Run("overwrites an existing export", func(t *testing.T) {
		_, err := store.Save("sent.xlsx", FileTypeExcel, writeString("first"))
		require.NoError(t, err)
		path, err := store.Save("sent.xlsx", FileTypeExcel, writeString("second"))
		require.NoError(t, err)

		content, _ := os.ReadFile(path)
		assert.Equal(t, "second", string(content))
	})

	t.Run("failed writer leaves nothing behind", func(t *testing.T) {
		_, err := store.Save("broken.json", FileTypeJSON, func(w io.Writer) error {
			return errors.New("boom")
		})

		require.Error(t, err)
		assert.NoFileExists(t, filepath.Join(baseDir, "broken.json"))

		entries, err := os.ReadDir(baseDir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), "broken")
		}
	})

	t.Run("strips traversal from the name", func(t *testing.T) {
		path, err := store.Save("../../etc/passwd.json", FileTypeJSON, writeString("{}"))

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(baseDir, "etcpasswd.json"), path)
	})

	t.Run("rejects mismatched extension", func(t *testing.T) {
		_, err := store.Save("history.xlsx", FileTypeJSON, writeString("{}"))
		assert.ErrorIs(t, err, ErrExtMismatch)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := store.Save("../", FileTypeJSON, writeString("{}"))
		assert.ErrorIs(t, err, ErrEmptyName)
	})
}

func TestExportStore_Open(t *testing.T) {
	store := NewExportStore(t.TempDir(), zap.NewNop())
	_, err := store.Save("links.xlsx", FileTypeExcel, writeString("data"))
	require.NoError(t, err)

	f, err := store.Open("links.xlsx")
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	_, err = store.Open("missing.xlsx")
	assert.True(t, os.IsNotExist(err))
}

func TestExportStore_ValidatePath(t *testing.T) {
	tempDir := t.TempDir()
	store := NewExportStore(tempDir, zap.NewNop())

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "inside base", path: filepath.Join(tempDir, "file.json")},
		{name: "outside base", path: "/etc/passwd", wantErr: true},
		{name: "traversal", path: filepath.Join(tempDir, "..", "..", "etc", "passwd"), wantErr: true},
		{name: "similar prefix", path: tempDir + "_malicious/file.json", wantErr: true},
		{name: "base itself", path: tempDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ValidatePath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPathEscapes)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "WIP March_updated_2024-03-01.xlsx", want: "WIP March_updated_2024-03-01.xlsx"},
		{in: "../secret.json", want: "secret.json"},
		{in: `a\b/c.json`, want: "abc.json"},
		{in: "report<1>.json", want: "report1.json"},
		{in: ".hidden.json", want: "hidden.json"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}
