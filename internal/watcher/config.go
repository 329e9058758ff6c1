package watcher

import "time"

type WatcherConfig struct {
	DebounceWindow time.Duration
	MaxBatchSize   int
	IgnorePatterns []string
	WatchHidden    bool
}

func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		DebounceWindow: 300 * time.Millisecond,
		MaxBatchSize:   100,
		IgnorePatterns: []string{
			"**/.git/**",
			"**/target/**",
		},
		WatchHidden: false,
	}
}
