package config

// Config holds all configuration for the application.
type Config struct {
	DBName   string `env:"DB_NAME,required,notEmpty"`
	Port     string `env:"PORT" envDefault:"8080"`
	Timezone string `env:"TIMEZONE" envDefault:"UTC"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Turso    TursoConfig
	Slack    SlackConfig
	// ProjectID is the GCP project used for domain events. Empty disables publishing.
	ProjectID string `env:"GCP_PROJECT"`
	Playtomic PlaytomicConfig
}
type TursoConfig struct {
	PrimaryURL string `env:"TURSO_PRIMARY_URL"`
	AuthToken  string `env:"TURSO_AUTH_TOKEN"`
}
type SlackConfig struct {
	Token     string `env:"SLACK_BOT_TOKEN"`
	ChannelID string `env:"SLACK_CHANNEL_ID"`
}
type PlaytomicConfig struct {
	TenantID string `env:"PLAYTOMIC_TENANT_ID"`
}

// SlackEnabled reports whether schedule announcements can be posted.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ChannelID != ""
}
