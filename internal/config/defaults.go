package config

const (
	defaultDataDir             = "~/.local/share/tryon"
	defaultLogDir              = "~/.local/share/tryon/logs"
	defaultAPIBind             = ""
	defaultServiceBaseURL      = "http://127.0.0.1:8000"
	defaultServiceTimeout      = 180
	defaultFetchTimeout        = 30
	defaultFetchUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) tryon/0.1"
	defaultFetchMaxBodyBytes   = 20 << 20
	defaultStaleJobTimeout     = 300
	defaultReaperInterval      = 30
	defaultPollInterval        = 1
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Service: Service{
			BaseURL:        defaultServiceBaseURL,
			TimeoutSeconds: defaultServiceTimeout,
		},
		Fetch: Fetch{
			TimeoutSeconds: defaultFetchTimeout,
			UserAgent:      defaultFetchUserAgent,
			MaxBodyBytes:   defaultFetchMaxBodyBytes,
		},
		Workflow: Workflow{
			StaleJobTimeoutSeconds: defaultStaleJobTimeout,
			ReaperIntervalSeconds:  defaultReaperInterval,
			PollIntervalSeconds:    defaultPollInterval,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
