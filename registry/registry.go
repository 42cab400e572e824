// Package registry stores encoded driver bind artifacts in a SQLite
// database and answers match queries against device properties.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/tliron/commonlog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/driverbind/bindc/pkg/artifact"
	"github.com/driverbind/bindc/pkg/bytecode"
)

// ErrDriverNotFound indicates the requested driver doesn't exist
var ErrDriverNotFound = errors.New("driver not found")

var log = commonlog.GetLogger("bindc.registry")

// Registry handles SQLite storage for driver artifacts
type Registry struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open opens (creating if necessary) a registry database at dbPath.
func Open(dbPath string) (*Registry, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS drivers (
		name TEXT PRIMARY KEY,
		artifact BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Registry{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection
func (r *Registry) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Put stores an artifact under its driver name, replacing any previous
// artifact with the same name.
func (r *Registry) Put(a *artifact.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	blob, err := a.Marshal()
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}

	_, err = r.db.Exec(
		"INSERT OR REPLACE INTO drivers (name, artifact) VALUES (?, ?)",
		a.Name, blob,
	)
	if err != nil {
		return fmt.Errorf("saving driver: %w", err)
	}

	log.Infof("stored driver %q (%d bytes)", a.Name, len(blob))
	return nil
}

// Get retrieves the artifact stored under name.
func (r *Registry) Get(name string) (*artifact.Artifact, error) {
	var blob []byte
	err := r.db.QueryRow("SELECT artifact FROM drivers WHERE name = ?", name).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDriverNotFound
		}
		return nil, fmt.Errorf("querying driver: %w", err)
	}

	a, err := artifact.Unmarshal(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding driver %q: %w", name, err)
	}
	return a, nil
}

// List returns the names of all stored drivers in sorted order.
func (r *Registry) List() ([]string, error) {
	rows, err := r.db.Query("SELECT name FROM drivers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing drivers: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning driver name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// MatchAll evaluates every stored driver against the given device
// properties and returns the names of drivers that match. A driver whose
// artifact fails to decode or whose bytecode fails to evaluate is logged
// and skipped; it never fails the whole query.
func (r *Registry) MatchAll(properties bytecode.DeviceProperties) ([]string, error) {
	rows, err := r.db.Query("SELECT name, artifact FROM drivers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing drivers: %w", err)
	}
	defer rows.Close()

	var matched []string
	for rows.Next() {
		var name string
		var blob []byte
		if err := rows.Scan(&name, &blob); err != nil {
			return nil, fmt.Errorf("scanning driver row: %w", err)
		}

		a, err := artifact.Unmarshal(blob)
		if err != nil {
			log.Errorf("skipping driver %q: %v", name, err)
			continue
		}

		ok, err := bytecode.MatchBytecode(a.Program(), properties)
		if err != nil {
			log.Errorf("skipping driver %q: %v", name, err)
			continue
		}
		if ok {
			matched = append(matched, name)
		}
	}
	return matched, rows.Err()
}
