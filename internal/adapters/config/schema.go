package config

// File represents the structure of the normcache.yaml configuration file.
type File struct {
	Store            StoreDTO                 `yaml:"store"`
	NotifierCapacity int                      `yaml:"notifierCapacity"`
	JSONLogs         bool                     `yaml:"jsonLogs"`
	TypePolicies     map[string]TypePolicyDTO `yaml:"typePolicies"`
	EmbeddedFields   map[string][]string      `yaml:"embeddedFields"`
	MaxAges          map[string]int           `yaml:"maxAges"`
	DefaultMaxAge    *int                     `yaml:"defaultMaxAge"`
}

// StoreDTO represents the record store settings.
type StoreDTO struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Persistent  string `yaml:"persistent"`
	WithDates   bool   `yaml:"withDates"`
	MaxRecords  int    `yaml:"maxRecords"`
	ExpireAfter string `yaml:"expireAfter"`
}

// TypePolicyDTO represents the identity of one type.
type TypePolicyDTO struct {
	KeyFields []string `yaml:"keyFields"`
}

// OperationFile represents a query shape file.
type OperationFile struct {
	Name       string         `yaml:"name"`
	Variables  map[string]any `yaml:"variables"`
	Selections []FieldDTO     `yaml:"selections"`
}

// FieldDTO represents one selected field. Argument strings starting with '$'
// refer to operation variables.
type FieldDTO struct {
	Name       string         `yaml:"name"`
	Alias      string         `yaml:"alias"`
	Arguments  map[string]any `yaml:"arguments"`
	Selections []FieldDTO     `yaml:"selections"`
}
