package module

import (
	"historian/internal/platform/config"
	"historian/internal/services/export/service"
	"time"
)

// Options holds configuration settings for the export module
type Options struct {
	Config service.Config
	UsePG  bool
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	ef := cfg.Prefix("CORE_EXPORT_")
	def := service.DefaultConfig()
	return Options{
		Config: service.Config{
			Dir:            ef.MayString("DIR", def.Dir),
			MaxAge:         time.Duration(ef.MayInt("MAX_AGE_HOURS", 24)) * time.Hour,
			ThresholdItems: ef.MayInt("THRESHOLD_ITEMS", def.ThresholdItems),
			ReapEvery:      ef.MayDuration("REAP_EVERY", def.ReapEvery),
		},
		UsePG: ef.MayBool("PG", false),
	}
}
