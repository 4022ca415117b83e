// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials for the remote relabel classifier.
// Each file in a secrets directory is one secret: the filename is the key
// and the trimmed file contents are the value. An environment variable
// TRANSCRIPT_SCREEN_<KEY> (key upper-cased, dashes as underscores) takes
// precedence over the file.
//
// Known keys: relabel-api-key.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// RelabelAPIKey is the bearer token sent to the remote classifier.
const RelabelAPIKey = "relabel-api-key"

const envPrefix = "TRANSCRIPT_SCREEN_"

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all regular, non-hidden files in dir. A missing directory is
// not an error and yields an empty map. Unreadable files are logged and
// skipped.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("skipping unreadable secret", "name", name, "err", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// EnvName returns the environment variable consulted for key.
func EnvName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Get returns the value for key, preferring the environment over files.
func (s Secrets) Get(key string) string {
	if v := strings.TrimSpace(os.Getenv(EnvName(key))); v != "" {
		return v
	}
	return s[key]
}
