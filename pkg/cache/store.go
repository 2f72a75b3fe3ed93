// Package cache persists one GitMetrics document per experiment block and
// short-circuits recomputation when a document already exists.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
	"github.com/Sumatoshi-tech/tryflow/pkg/persist"
)

// documentSuffix is appended to the block ID before the codec extension.
const documentSuffix = ".gitmetrics"

// Sentinel errors for the cache package.
var (
	// ErrNotCached is returned when no document exists for a key.
	ErrNotCached = errors.New("metrics not cached")

	// ErrInvalidDocument is returned when a stored document fails schema validation.
	ErrInvalidDocument = errors.New("invalid metrics document")

	// ErrInvalidKey is returned for keys that are empty or escape the cache directory.
	ErrInvalidKey = errors.New("invalid cache key")
)

// Key identifies one cached document.
type Key struct {
	ExperimentID string
	BlockID      string
}

func (k Key) String() string {
	return k.ExperimentID + "/" + k.BlockID
}

func (k Key) validate() error {
	for _, part := range []string{k.ExperimentID, k.BlockID} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("%w: %q", ErrInvalidKey, k.String())
		}
	}

	return nil
}

// Store reads and writes documents under a root directory, one file per key
// at <root>/<experiment>/<block>.gitmetrics<ext>.
type Store struct {
	root   string
	raw    *persist.Persister[json.RawMessage]
	schema *gojsonschema.Schema
}

// NewStore creates a Store rooted at dir. A nil codec uses indented JSON.
func NewStore(dir string, codec persist.Codec) (*Store, error) {
	if codec == nil {
		codec = persist.NewJSONCodec()
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	return &Store{
		root:   dir,
		raw:    persist.NewPersister[json.RawMessage](codec),
		schema: schema,
	}, nil
}

// Path returns the file a key's document lives in.
func (s *Store) Path(key Key) string {
	return s.raw.Path(s.dir(key), key.BlockID+documentSuffix)
}

// Stat describes the file holding key's document. It returns ErrNotCached
// when no document exists.
func (s *Store) Stat(key Key) (os.FileInfo, error) {
	keyErr := key.validate()
	if keyErr != nil {
		return nil, keyErr
	}

	info, err := os.Stat(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotCached, key)
		}

		return nil, fmt.Errorf("stat %s: %w", key, err)
	}

	return info, nil
}

// Load reads, validates and decodes the document for key.
func (s *Store) Load(key Key) (*gitmetrics.GitMetrics, error) {
	keyErr := key.validate()
	if keyErr != nil {
		return nil, keyErr
	}

	raw, err := s.raw.Load(s.dir(key), key.BlockID+documentSuffix)
	if err != nil {
		if persist.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotCached, key)
		}

		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	validateErr := validateDocument(s.schema, *raw)
	if validateErr != nil {
		return nil, fmt.Errorf("load %s: %w", key, validateErr)
	}

	var doc gitmetrics.GitMetrics

	decodeErr := json.Unmarshal(*raw, &doc)
	if decodeErr != nil {
		return nil, fmt.Errorf("load %s: %w: %w", key, ErrInvalidDocument, decodeErr)
	}

	return &doc, nil
}

// Save replaces the document for key in one atomic write.
func (s *Store) Save(key Key, doc *gitmetrics.GitMetrics) error {
	keyErr := key.validate()
	if keyErr != nil {
		return keyErr
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	message := json.RawMessage(raw)

	saveErr := s.raw.Save(s.dir(key), key.BlockID+documentSuffix, &message)
	if saveErr != nil {
		return fmt.Errorf("save %s: %w", key, saveErr)
	}

	return nil
}

func (s *Store) dir(key Key) string {
	return filepath.Join(s.root, key.ExperimentID)
}
