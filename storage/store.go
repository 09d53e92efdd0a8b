package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cuelang.org/go/cue/cuecontext"
	"go.yaml.in/yaml/v3"

	"github.com/kbukum/liftkit/errors"
	"github.com/kbukum/liftkit/logger"
)

// extensions are tried in order when resolving a key.
var extensions = []string{".json", ".yaml", ".yml", ".cue"}

type entry struct {
	ext  string
	data []byte
}

// Store is a keyed view over a directory of data files. Raw file contents
// are cached per key until Invalidate or Save.
type Store struct {
	basePath string
	format   string
	log      *logger.Logger

	mu    sync.RWMutex
	cache map[string]entry
}

// NewStore creates a store rooted at cfg.BasePath, creating the directory
// if needed.
func NewStore(cfg Config) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Store{
		basePath: abs,
		format:   cfg.Format,
		log:      logger.Get("storage"),
		cache:    make(map[string]entry),
	}, nil
}

// BasePath returns the absolute root directory.
func (s *Store) BasePath() string { return s.basePath }

// normalizeKey trims leading dots and rejects keys that could leave the base
// directory.
func normalizeKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), ".")
	switch {
	case key == "":
		return "", errors.InvalidInput("key", "must not be empty")
	case strings.Contains(key, ".."):
		return "", errors.InvalidInput("key", "must not contain '..'")
	case strings.Contains(key, `\`):
		return "", errors.InvalidInput("key", "must not contain '\\'")
	}
	return key, nil
}

// Path returns the file path for key without an extension.
func (s *Store) Path(key string) (string, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", err
	}
	rel := filepath.FromSlash(strings.ReplaceAll(key, ".", "/"))
	return filepath.Join(s.basePath, rel), nil
}

func (s *Store) read(ctx context.Context, key string) (entry, error) {
	if err := ctx.Err(); err != nil {
		return entry{}, errors.Cancelled("load "+key, err)
	}
	key, err := normalizeKey(key)
	if err != nil {
		return entry{}, err
	}

	s.mu.RLock()
	e, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return e, nil
	}

	base, err := s.Path(key)
	if err != nil {
		return entry{}, err
	}
	for _, ext := range extensions {
		data, err := os.ReadFile(base + ext)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return entry{}, errors.Internal(fmt.Errorf("storage: read %s: %w", key, err))
		}
		e = entry{ext: ext, data: data}
		s.mu.Lock()
		s.cache[key] = e
		s.mu.Unlock()
		s.log.Debug("data file loaded", logger.Fields("key", key, "path", base+ext))
		return e, nil
	}
	return entry{}, errors.NotFound("data file", key)
}

// Load decodes the file behind key into out.
func (s *Store) Load(ctx context.Context, key string, out any) error {
	e, err := s.read(ctx, key)
	if err != nil {
		return err
	}
	data := e.data
	switch e.ext {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
	case ".cue":
		data, err = cueToJSON(data)
	}
	if err != nil {
		return errors.Serialization("decode "+key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Serialization("decode "+key, err)
	}
	return nil
}

// LoadAs loads key into a new T.
func LoadAs[T any](ctx context.Context, s *Store, key string) (T, error) {
	var v T
	err := s.Load(ctx, key, &v)
	return v, err
}

// Exists reports whether a file backs key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.read(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.HasCode(err, errors.ErrCodeNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Save writes v under key in the configured format and drops the cached
// copy. Files of the other formats for the same key are left in place.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return errors.Cancelled("save "+key, err)
	}
	base, err := s.Path(key)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Serialization("encode "+key, err)
	}
	ext := ".json"
	if s.format == FormatYAML {
		if data, err = jsonToYAML(data); err != nil {
			return errors.Serialization("encode "+key, err)
		}
		ext = ".yaml"
	}

	if err := os.MkdirAll(filepath.Dir(base), 0o750); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}
	if err := os.WriteFile(base+ext, data, 0o640); err != nil {
		return fmt.Errorf("storage: write file: %w", err)
	}
	s.Invalidate(key)
	s.log.Debug("data file saved", logger.Fields("key", key, "path", base+ext))
	return nil
}

// Invalidate drops the cached contents of key.
func (s *Store) Invalidate(key string) {
	key, err := normalizeKey(key)
	if err != nil {
		return
	}
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func jsonToYAML(data []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// cueToJSON evaluates a CUE document. Every field must be concrete.
func cueToJSON(data []byte) ([]byte, error) {
	v := cuecontext.New().CompileBytes(data)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return v.MarshalJSON()
}
