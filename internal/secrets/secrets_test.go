// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "core-api-key", "  pk_abc123  \n")
				writeFile(t, dir, "semantic-scholar-api-key", "sk_xyz789")
				writeFile(t, dir, "openalex-email", "user@example.com\n")
				return dir
			},
			want: map[string]string{
				"core-api-key":       "pk_abc123",
				"semantic-scholar-api-key":  "sk_xyz789",
				"openalex-email":            "user@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "gemini-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"gemini-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "core-api-key", "pk_real")
				return dir
			},
			want: map[string]string{
				"core-api-key": "pk_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "gemini-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"gemini-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestResolve(t *testing.T) {
	clearEnv(t)

	t.Run("directory wins over environment", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, GeminiAPIKey, "from-file")
		t.Setenv("GEMINI_API_KEY", "from-env")

		got, err := Resolve(dir, "")
		require.NoError(t, err)
		assert.Equal(t, "from-file", got[GeminiAPIKey])
	})

	t.Run("lowercase aliases are honoured", func(t *testing.T) {
		t.Setenv("gemini_token", "g-lower")
		t.Setenv("core_api_key", "c-lower")

		got, err := Resolve(filepath.Join(t.TempDir(), "none"), "")
		require.NoError(t, err)
		assert.Equal(t, "g-lower", got[GeminiAPIKey])
		assert.Equal(t, "c-lower", got[CoreAPIKey])
	})

	t.Run("dotenv file fills gaps", func(t *testing.T) {
		dir := t.TempDir()
		envFile := filepath.Join(dir, ".env")
		writeFile(t, dir, ".env", "S2_API_KEY=s2-dotenv\n")
		t.Setenv("S2_API_KEY", "")
		os.Unsetenv("S2_API_KEY")

		got, err := Resolve(filepath.Join(dir, "none"), envFile)
		require.NoError(t, err)
		assert.Equal(t, "s2-dotenv", got[SemanticScholarAPIKey])
	})

	t.Run("missing dotenv is not an error", func(t *testing.T) {
		_, err := Resolve(t.TempDir(), filepath.Join(t.TempDir(), "missing.env"))
		assert.NoError(t, err)
	})
}

// clearEnv blanks every recognised variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, names := range envNames {
		for _, name := range names {
			t.Setenv(name, "")
		}
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
