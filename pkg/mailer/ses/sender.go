package ses

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/anonmail/pkg/mailer"
)

const transportName = "ses"

// authErrorCodes are API error codes returned for bad or unauthorised credentials.
var authErrorCodes = map[string]struct{}{
	"UnrecognizedClientException": {},
	"InvalidClientTokenId":        {},
	"SignatureDoesNotMatch":       {},
	"AccessDeniedException":       {},
	"IncompleteSignature":         {},
	"MissingAuthenticationToken":  {},
}

// Sender implements mailer.Sender using AWS SES v2.
type Sender struct {
	client *sesv2.Client
	config Config
}

// New creates an SES sender with static credentials.
// The SDK retryer is limited to a single attempt.
func New(ctx context.Context, cfg Config) (*Sender, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("ses: load aws config: %w", err)
	}

	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Sender{client: client, config: cfg}, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	from := email.From
	if from == "" {
		from = mailer.Address(s.config.SenderName, s.config.SenderEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: email.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: utf8Content(email.Subject),
				Body: &types.Body{
					Html: utf8Content(email.HTML),
					Text: utf8Content(email.Text),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return classify(err)
	}
	return nil
}

func utf8Content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		_, auth := authErrorCodes[apiErr.ErrorCode()]
		detail := apiErr.ErrorCode()
		if msg := apiErr.ErrorMessage(); msg != "" {
			detail += ": " + msg
		}
		return mailer.NewTransportError(transportName, auth, detail, err)
	}
	return mailer.NewTransportError(transportName, false, "", err)
}
