package config

const (
	defaultDataDir        = "~/.local/share/platen"
	defaultLogDir         = "~/.local/share/platen/logs"
	defaultFontsDir       = "~/.local/share/platen/fonts"
	defaultPartnerBaseURL = "https://api.printpartner.example/v1"
	defaultFallbackFamily = "Noto Sans JP"
	defaultRequestTimeout = 30
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"

	defaultStorageRetryAttempts = 4
	defaultSubmitRetryAttempts  = 4
	defaultRetryBaseSeconds     = 1
	defaultRetryMaxSeconds      = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			FontsDir: defaultFontsDir,
		},
		Partner: Partner{
			BaseURL:        defaultPartnerBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Storage: Storage{
			RequestTimeout: defaultRequestTimeout,
		},
		Fonts: Fonts{
			FallbackFamily: defaultFallbackFamily,
		},
		Workflow: Workflow{
			StorageRetryAttempts: defaultStorageRetryAttempts,
			SubmitRetryAttempts:  defaultSubmitRetryAttempts,
			RetryBaseSeconds:     defaultRetryBaseSeconds,
			RetryMaxSeconds:      defaultRetryMaxSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
