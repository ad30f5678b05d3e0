// Package config defines the JSON configuration of an import: where records
// go, which classifier proposes mappings, chunking and timeouts, metrics, and
// the HTTP server address.
//
// Example (trimmed):
//
//	{
//	  "job": "herdimport",
//	  "parser":     { "options": { "delimiter": ";" } },
//	  "storage":    { "kind": "postgres", "db": { "dsn": "...", "table": "public.animals", "auto_create_table": true } },
//	  "classifier": { "kind": "http", "http": { "url": "http://classifier:8000/map", "timeout_ms": 10000 } },
//	  "runtime":    { "chunk_size": 50, "mapping_timeout_ms": 15000 }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Import is the top-level object decoded from a config file.
type Import struct {
	// Job labels metrics and log lines.
	Job        string     `json:"job"`
	Parser     Parser     `json:"parser"`
	Storage    Storage    `json:"storage"`
	Classifier Classifier `json:"classifier"`
	Runtime    Runtime    `json:"runtime"`
	Metrics    Metrics    `json:"metrics"`
	Server     Server     `json:"server"`
}

// Parser carries parser options. Recognized keys:
//
//	delimiter (string): force ",", ";" or "\t" instead of detecting it
type Parser struct {
	Options Options `json:"options"`
}

// Storage selects the record sink.
type Storage struct {
	// Kind is one of memory, sqlite, postgres, mssql.
	Kind string   `json:"kind"`
	DB   DBConfig `json:"db"`
}

type DBConfig struct {
	DSN   string `json:"dsn"`
	Table string `json:"table"`

	// AutoCreateTable creates the animal table when it does not exist.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Classifier selects the semantic mapper. Kind "none" uses the heuristic
// mapper only.
type Classifier struct {
	Kind      string          `json:"kind"`
	HTTP      HTTPClassifier  `json:"http"`
	Anthropic AnthropicConfig `json:"anthropic"`
}

type HTTPClassifier struct {
	URL        string            `json:"url"`
	TimeoutMS  int               `json:"timeout_ms"`
	MaxRetries int               `json:"max_retries"`
	Headers    map[string]string `json:"headers"`
}

// Timeout is TimeoutMS as a duration.
func (h HTTPClassifier) Timeout() time.Duration { return time.Duration(h.TimeoutMS) * time.Millisecond }

type AnthropicConfig struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `json:"api_key_env"`
}

// APIKey reads the key from the configured environment variable.
func (a AnthropicConfig) APIKey() string { return os.Getenv(a.APIKeyEnv) }

type Runtime struct {
	ChunkSize        int `json:"chunk_size"`
	MappingTimeoutMS int `json:"mapping_timeout_ms"`
	SampleRows       int `json:"sample_rows"`
}

// MappingTimeout is MappingTimeoutMS as a duration.
func (r Runtime) MappingTimeout() time.Duration {
	return time.Duration(r.MappingTimeoutMS) * time.Millisecond
}

// Metrics selects the metrics backend. Flags and environment variables
// override these values in cmd/herdimport.
type Metrics struct {
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr"`
}

type Server struct {
	Addr string `json:"addr"`
}

// Default returns a configuration that runs without any external service:
// in-memory sink, heuristic mapping, no metrics.
func Default() Import {
	return Import{
		Job:     "herdimport",
		Parser:  Parser{Options: Options{}},
		Storage: Storage{Kind: "memory", DB: DBConfig{Table: "animals"}},
		Classifier: Classifier{
			Kind:      "none",
			HTTP:      HTTPClassifier{TimeoutMS: 10000, MaxRetries: 1},
			Anthropic: AnthropicConfig{MaxTokens: 1024, APIKeyEnv: "ANTHROPIC_API_KEY"},
		},
		Runtime: Runtime{ChunkSize: 50, MappingTimeoutMS: 15000, SampleRows: 5},
		Metrics: Metrics{Backend: "none"},
		Server:  Server{Addr: ":8080"},
	}
}

// Load reads path over Default, so absent keys keep their defaults. Unknown
// keys are rejected.
func Load(path string) (Import, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Options fetches typed values from a free-form JSON object, returning def
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Rune returns the first rune of the string value for key, or def when the
// key is missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if s, ok := o[key].(string); ok && s != "" {
		return []rune(s)[0]
	}
	return def
}

// UnmarshalJSON decodes a missing or null object to an empty, non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
