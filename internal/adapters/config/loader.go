// Package config loads the cache configuration and query shapes from YAML.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// variablePrefix marks an argument string as a variable reference.
const variablePrefix = "$"

// Loader implements ports.ConfigLoader using YAML files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{Logger: log}
}

// Load reads the configuration file at path. A missing file yields the defaults.
func (l *Loader) Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultConfig(), nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}
	return l.convert(&file)
}

func (l *Loader) convert(file *File) (*domain.Config, error) {
	cfg := domain.DefaultConfig()
	cfg.JSONLogs = file.JSONLogs
	if file.NotifierCapacity > 0 {
		cfg.NotifierCapacity = file.NotifierCapacity
	}

	store, err := convertStore(file.Store)
	if err != nil {
		return nil, err
	}
	cfg.Store = store

	for typename, p := range file.TypePolicies {
		if len(p.KeyFields) == 0 {
			l.Logger.Warn("type policy for " + typename + " has no key fields, using id")
			continue
		}
		cfg.TypePolicies[typename] = domain.TypePolicy{KeyFields: p.KeyFields}
	}
	for typename, fields := range file.EmbeddedFields {
		cfg.EmbeddedFields[typename] = fields
	}

	for key, secs := range file.MaxAges {
		if !strings.Contains(key, ".") {
			return nil, zerr.With(domain.ErrInvalidMaxAge, "field", key)
		}
		maxAge, err := domain.MaxAgeFromSeconds(secs)
		if err != nil {
			return nil, zerr.With(err, "field", key)
		}
		cfg.MaxAges[key] = maxAge
	}
	if file.DefaultMaxAge != nil {
		maxAge, err := domain.MaxAgeFromSeconds(*file.DefaultMaxAge)
		if err != nil || maxAge.Kind == domain.MaxAgeInherit {
			return nil, zerr.With(domain.ErrInvalidMaxAge, "field", "defaultMaxAge")
		}
		cfg.DefaultMaxAge = maxAge
	}
	return cfg, nil
}

func convertStore(dto StoreDTO) (domain.StoreConfig, error) {
	cfg := domain.StoreConfig{
		Backend:    domain.Backend(dto.Backend),
		Path:       dto.Path,
		Persistent: domain.Backend(dto.Persistent),
		WithDates:  dto.WithDates,
		MaxRecords: dto.MaxRecords,
	}
	if cfg.Backend == "" {
		cfg.Backend = domain.BackendMemory
	}
	if cfg.Backend == domain.BackendChain && cfg.Persistent == "" {
		cfg.Persistent = domain.BackendSQLite
	}

	persistent := cfg.Backend
	if cfg.Backend == domain.BackendChain {
		persistent = cfg.Persistent
	}
	switch persistent {
	case domain.BackendMemory:
		if cfg.Backend == domain.BackendChain {
			return cfg, zerr.With(domain.ErrUnknownBackend, "persistent", string(persistent))
		}
	case domain.BackendSQLite:
		if cfg.Path == "" {
			cfg.Path = domain.DefaultSQLitePath()
		}
	case domain.BackendBolt:
		if cfg.Path == "" {
			cfg.Path = domain.DefaultBoltPath()
		}
	default:
		return cfg, zerr.With(domain.ErrUnknownBackend, "backend", string(persistent))
	}

	if dto.ExpireAfter != "" {
		d, err := time.ParseDuration(dto.ExpireAfter)
		if err != nil {
			return cfg, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "field", "store.expireAfter")
		}
		cfg.ExpireAfter = d
	}
	return cfg, nil
}

// LoadOperation reads a query shape file.
func (l *Loader) LoadOperation(path string) (*domain.Operation, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrQueryReadFailed.Error()), "path", path)
	}

	var file OperationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrQueryParseFailed.Error()), "path", path)
	}

	return &domain.Operation{
		Name:       file.Name,
		Selections: convertFields(file.Selections),
		Variables:  file.Variables,
	}, nil
}

func convertFields(dtos []FieldDTO) []domain.Field {
	if len(dtos) == 0 {
		return nil
	}
	fields := make([]domain.Field, len(dtos))
	for i, dto := range dtos {
		fields[i] = domain.Field{
			Name:       dto.Name,
			Alias:      dto.Alias,
			Selections: convertFields(dto.Selections),
		}
		if len(dto.Arguments) > 0 {
			args := make(map[string]any, len(dto.Arguments))
			for k, v := range dto.Arguments {
				args[k] = convertArgument(v)
			}
			fields[i].Arguments = args
		}
	}
	return fields
}

func convertArgument(v any) any {
	switch val := v.(type) {
	case string:
		if name, ok := strings.CutPrefix(val, variablePrefix); ok && name != "" {
			return domain.Variable(name)
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = convertArgument(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = convertArgument(e)
		}
		return out
	default:
		return val
	}
}

var _ ports.ConfigLoader = (*Loader)(nil)
