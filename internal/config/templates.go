package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const configTemplate = `# Team Journal Configuration

[server]
# Interface and port the JSON API listens on
address = "127.0.0.1"
port = 8080
read_timeout = "15s"
write_timeout = "15s"
# Browser origins allowed by CORS
allowed_origins = ["http://localhost:3000"]

[database]
# SQLite file; empty means journal.db in this directory
path = ""
busy_timeout_ms = 5000
max_open_conns = 10
# Upper bound for each store call
query_timeout = "5s"
# Attempts for transient store failures
retry_attempts = 3

[auth]
# HS256 signing secret for bearer tokens (generated on first run)
jwt_secret = "{{JWT_SECRET}}"
token_ttl = "12h"
issuer = "team-journal"

[logging]
# debug, info, warn, error
level = "info"
console = true
file = false
# Empty means logs/journal.log in this directory
file_path = ""
max_size = 100
max_backups = 7
max_age = 30

[audit]
# JSON-lines audit trail of submissions, reviews and member changes
enabled = true
# Empty means audit/ in this directory
dir = ""
max_size = 50
max_backups = 30
max_age = 365

[security]
# Screen free-text notes for injection patterns
strict_validation = false

[risk]
# Trading day boundary for the daily risk lock
timezone = "America/New_York"
`

// createTemplateConfig writes a commented config.toml with a fresh signing secret
// and returns its path.
func createTemplateConfig(configDir, name string) (string, error) {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	secret, err := generateSecret()
	if err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	content := strings.Replace(configTemplate, "{{JWT_SECRET}}", secret, 1)
	// Restricted permissions: the file holds the signing secret
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}

	return path, nil
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
