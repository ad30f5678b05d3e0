package config

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// IssueSeverity is the severity of a configuration issue.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the
// config, e.g. "storage.db.dsn".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateImport lints cfg without mutating it. Callers decide whether
// warnings are fatal.
func ValidateImport(cfg Import) []Issue {
	var issues []Issue
	if strings.TrimSpace(cfg.Job) == "" {
		issues = append(issues, Issue{SeverityError, "job", "job must not be empty; it labels metrics and logs"})
	}
	issues = append(issues, validateParser(cfg.Parser)...)
	issues = append(issues, validateStorage(cfg.Storage)...)
	issues = append(issues, validateClassifier(cfg.Classifier)...)
	issues = append(issues, validateRuntime(cfg.Runtime)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	return issues
}

func validateParser(p Parser) []Issue {
	d := p.Options.String("delimiter", "")
	if d == "" {
		return nil
	}
	if utf8.RuneCountInString(d) != 1 || !strings.ContainsAny(d, ",;\t") {
		return []Issue{{SeverityError, "parser.options.delimiter", fmt.Sprintf("delimiter %q must be one of \",\", \";\" or a tab", d)}}
	}
	return nil
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	switch s.Kind {
	case "":
		return append(issues, Issue{SeverityError, "storage.kind", "storage.kind must not be empty"})
	case "memory":
		return nil
	case "sqlite", "postgres", "mssql":
	default:
		issues = append(issues, Issue{SeverityWarning, "storage.kind", fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind)})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{SeverityError, "storage.db.dsn", fmt.Sprintf("%s storage requires a dsn", s.Kind)})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{SeverityError, "storage.db.table", fmt.Sprintf("%s storage requires a table", s.Kind)})
	}
	return issues
}

func validateClassifier(c Classifier) []Issue {
	var issues []Issue
	switch c.Kind {
	case "", "none":
	case "http":
		if strings.TrimSpace(c.HTTP.URL) == "" {
			issues = append(issues, Issue{SeverityError, "classifier.http.url", "http classifier requires a url"})
		}
		if c.HTTP.TimeoutMS < 0 {
			issues = append(issues, Issue{SeverityError, "classifier.http.timeout_ms", "timeout_ms must not be negative"})
		}
		if c.HTTP.MaxRetries < 0 {
			issues = append(issues, Issue{SeverityError, "classifier.http.max_retries", "max_retries must not be negative"})
		}
	case "anthropic":
		if strings.TrimSpace(c.Anthropic.Model) == "" {
			issues = append(issues, Issue{SeverityError, "classifier.anthropic.model", "anthropic classifier requires a model"})
		}
		if strings.TrimSpace(c.Anthropic.APIKeyEnv) == "" {
			issues = append(issues, Issue{SeverityError, "classifier.anthropic.api_key_env", "api_key_env must name an environment variable"})
		} else if c.Anthropic.APIKey() == "" {
			issues = append(issues, Issue{SeverityWarning, "classifier.anthropic.api_key_env", fmt.Sprintf("%s is not set; mapping will fall back to the heuristic", c.Anthropic.APIKeyEnv)})
		}
	default:
		issues = append(issues, Issue{SeverityError, "classifier.kind", fmt.Sprintf("unknown classifier kind %q; use none, http or anthropic", c.Kind)})
	}
	return issues
}

func validateRuntime(r Runtime) []Issue {
	var issues []Issue
	if r.ChunkSize < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.chunk_size", "chunk_size must not be negative"})
	} else if r.ChunkSize == 0 {
		issues = append(issues, Issue{SeverityWarning, "runtime.chunk_size", "chunk_size=0; the default of 50 is used"})
	}
	if r.MappingTimeoutMS < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.mapping_timeout_ms", "mapping_timeout_ms must not be negative"})
	}
	if r.SampleRows < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.sample_rows", "sample_rows must not be negative"})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none", "pushgateway", "datadog":
		return nil
	default:
		return []Issue{{SeverityError, "metrics.backend", fmt.Sprintf("unknown metrics backend %q; use none, pushgateway or datadog", m.Backend)}}
	}
}
