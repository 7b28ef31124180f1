package ses

// Config holds AWS SES v2 configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	SenderEmail     string `env:"OFFICIAL_EMAIL"`
	SenderName      string `env:"MAIL_FROM_NAME" envDefault:"Anonymous"`

	// Endpoint overrides the SES API endpoint (local stacks, tests).
	Endpoint string `env:"SES_ENDPOINT"`
}
