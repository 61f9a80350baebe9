package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the herald API service.
type Config struct {
	Addr            string        `env:"ADDR,default=:8080"`
	DBDSN           string        `env:"DB_DSN,required"`
	JWTSigningKey   string        `env:"JWT_SIGNING_KEY,required"`
	JWTIssuer       string        `env:"JWT_ISSUER,default=herald"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,default=12h"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL,default=1h"`
	VerifyLinkTTL   time.Duration `env:"VERIFY_LINK_TTL,default=72h"`
	FrontendURL     string        `env:"FRONTEND_URL,default=http://localhost:5173"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	ImageBucket     string        `env:"IMAGE_BUCKET,default=herald-media"`
	ImageURLTTL     time.Duration `env:"IMAGE_URL_TTL,default=24h"`
	NATSURL         string        `env:"NATS_URL"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	SMTPHost        string        `env:"SMTP_HOST"`
	SMTPPort        int           `env:"SMTP_PORT,default=587"`
	SMTPUser        string        `env:"SMTP_USER"`
	SMTPPassword    string        `env:"SMTP_PASS"`
	MailFrom        string        `env:"MAIL_FROM,default=no-reply@herald.local"`
	MailTo          string        `env:"MAIL_TO,default=editors@herald.local"`
	SeedAdminEmail  string        `env:"SEED_ADMIN_EMAIL"`
	SeedAdminPass   string        `env:"SEED_ADMIN_PASS"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
