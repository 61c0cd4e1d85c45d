package module

import (
	"historian/internal/core/paginate"
	"historian/internal/core/retry"
	"historian/internal/platform/config"
	"historian/internal/services/history/service"
)

// Options holds configuration settings for the history module
type Options struct {
	Config service.Config
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	hf := cfg.Prefix("CORE_HISTORY_")
	rf := cfg.Prefix("CORE_RETRY_")
	pd := paginate.DefaultConfig()
	rd := retry.DefaultConfig()
	return Options{
		Config: service.Config{
			Paginate: paginate.Config{
				MaxPageSize:     hf.MayInt("MAX_PAGE_SIZE", pd.MaxPageSize),
				DefaultPageSize: hf.MayInt("DEFAULT_PAGE_SIZE", pd.DefaultPageSize),
				MaxTotalRecords: hf.MayInt("MAX_TOTAL_RECORDS", pd.MaxTotalRecords),
			},
			Retry: retry.Config{
				MaxAttempts:   rf.MayInt("MAX_ATTEMPTS", rd.MaxAttempts),
				InitialDelay:  rf.MayDuration("INITIAL_DELAY", rd.InitialDelay),
				MaxDelay:      rf.MayDuration("MAX_DELAY", rd.MaxDelay),
				BackoffFactor: rf.MayFloat64("BACKOFF_FACTOR", rd.BackoffFactor),
			},
		},
	}
}
