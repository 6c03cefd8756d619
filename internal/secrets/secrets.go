// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: gemini-api-key, core-api-key, semantic-scholar-api-key, openalex-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Key file names recognised by Resolve.
const (
	GeminiAPIKey          = "gemini-api-key"
	CoreAPIKey            = "core-api-key"
	SemanticScholarAPIKey = "semantic-scholar-api-key"
	OpenAlexEmail         = "openalex-email"
)

// envNames lists the environment variables consulted for each key, in order.
var envNames = map[string][]string{
	GeminiAPIKey:          {"GEMINI_API_KEY", "gemini_token"},
	CoreAPIKey:            {"CORE_API_KEY", "core_api_key"},
	SemanticScholarAPIKey: {"S2_API_KEY", "SEMANTIC_SCHOLAR_API_KEY"},
	OpenAlexEmail:         {"OPENALEX_EMAIL"},
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve returns credentials from dir, falling back to the process
// environment after loading envFile with godotenv. Values already in the
// directory win. A missing envFile is not an error; existing environment
// variables are never overwritten.
func Resolve(dir, envFile string) (map[string]string, error) {
	found, err := Load(dir)
	if err != nil {
		return nil, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	for key, names := range envNames {
		if found[key] != "" {
			continue
		}
		for _, name := range names {
			if v := strings.TrimSpace(os.Getenv(name)); v != "" {
				found[key] = v
				break
			}
		}
	}
	return found, nil
}
