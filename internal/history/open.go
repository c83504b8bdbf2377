package history

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Backend kinds accepted by Open.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Backends lists the supported backend kinds.
func Backends() []string {
	return []string{BackendFile, BackendMemory, BackendSQLite, BackendPostgres, BackendS3}
}

// Settings selects and configures a backend.
type Settings struct {
	Backend string
	// Path is the JSON file (file) or database file (sqlite).
	Path        string
	DatabaseURL string
	S3          S3Config
}

// Open creates the backend named by settings.
func Open(ctx context.Context, settings Settings, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kind := strings.ToLower(strings.TrimSpace(settings.Backend))
	if kind == "" {
		kind = BackendFile
	}

	switch kind {
	case BackendMemory:
		logger.Debug("history backend selected", "backend", kind)
		return NewMemoryBackend(), nil

	case BackendFile:
		path := settings.Path
		if path == "" {
			path = FileName
		}
		logger.Debug("history backend selected", "backend", kind, "path", path)
		return NewFileBackend(path), nil

	case BackendSQLite:
		path := settings.Path
		if path == "" || strings.EqualFold(filepath.Ext(path), ".json") {
			path = Key + ".db"
		}
		logger.Debug("history backend selected", "backend", kind, "path", path)
		return OpenSQLite(ctx, path)

	case BackendPostgres:
		if settings.DatabaseURL == "" {
			return nil, fmt.Errorf("history backend %q requires DATABASE_URL", kind)
		}
		logger.Debug("history backend selected", "backend", kind)
		return ConnectPostgres(ctx, settings.DatabaseURL)

	case BackendS3:
		logger.Debug("history backend selected", "backend", kind, "bucket", settings.S3.Bucket)
		return NewS3Backend(ctx, settings.S3)

	default:
		return nil, fmt.Errorf("unknown history backend %q (valid: %s)", settings.Backend, strings.Join(Backends(), ", "))
	}
}
