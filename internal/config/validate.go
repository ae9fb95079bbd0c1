package config

import (
	"fmt"
	"strings"
)

// Validate reports configuration problems that would break the pipeline
// at runtime. All problems found are returned in a single error.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Partner.BaseURL) == "" {
		problems = append(problems, "partner.base_url must not be empty")
	}
	if c.Partner.RequestTimeout <= 0 {
		problems = append(problems, "partner.request_timeout must be positive")
	}
	if c.Storage.RequestTimeout <= 0 {
		problems = append(problems, "storage.request_timeout must be positive")
	}
	if c.Workflow.StorageRetryAttempts <= 0 {
		problems = append(problems, "workflow.storage_retry_attempts must be positive")
	}
	if c.Workflow.SubmitRetryAttempts <= 0 {
		problems = append(problems, "workflow.submit_retry_attempts must be positive")
	}
	if c.Workflow.RetryBaseSeconds <= 0 {
		problems = append(problems, "workflow.retry_base_seconds must be positive")
	}
	if c.Workflow.RetryMaxSeconds < c.Workflow.RetryBaseSeconds {
		problems = append(problems, "workflow.retry_max_seconds must be >= retry_base_seconds")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "auto", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not one of auto, console, json", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
