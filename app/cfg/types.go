package cfg

import "time"

type Cfg struct {
	// CMS configuration
	CMSUsername string
	CMSPassword string
	CMSEndpoint string
	CMSTimeout  time.Duration

	// Publishing configuration
	PublishAttempts       int
	PublishMaxConcurrency int

	// Server configuration
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
