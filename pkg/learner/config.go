package learner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/liliang-cn/lexmem/internal/logging"
	"github.com/liliang-cn/lexmem/pkg/corpus"
	"github.com/liliang-cn/lexmem/pkg/store"
)

// BackendKind selects the persistence backend.
type BackendKind string

const (
	// BackendFile is the reference backend: meta.json, index.json and
	// memory.jsonl in the store directory.
	BackendFile BackendKind = "file"
	// BackendSQLite keeps the same state in lexmem.db inside the store
	// directory.
	BackendSQLite BackendKind = "sqlite"
)

// sqliteFile is the database filename used by BackendSQLite.
const sqliteFile = "lexmem.db"

// Config configures a learner instance. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// Dir is the store directory, created if absent. It must be owned
	// exclusively by one learner instance for its process lifetime.
	Dir string

	// Backend selects the persistence backend. Defaults to BackendFile.
	Backend BackendKind

	// Window is the sliding-window size for cooccurrence counting.
	// Defaults to corpus.DefaultWindow.
	Window int

	// Logger receives operational logs. Defaults to the nop logger.
	Logger logging.Logger
}

// DefaultConfig returns a config with the reference backend and defaults.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:     dir,
		Backend: BackendFile,
		Window:  corpus.DefaultWindow,
		Logger:  logging.Nop(),
	}
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.Window <= 0 {
		c.Window = corpus.DefaultWindow
	}
	if c.Logger == nil {
		c.Logger = logging.Nop()
	}
}

func (c *Config) openBackend() (store.Backend, error) {
	switch c.Backend {
	case BackendFile:
		return store.NewFileBackend(c.Dir, c.Window)
	case BackendSQLite:
		if err := os.MkdirAll(c.Dir, 0o755); err != nil {
			return nil, err
		}
		return store.NewSQLiteBackend(filepath.Join(c.Dir, sqliteFile), c.Window)
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
}
