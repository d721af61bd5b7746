package push

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"gatherly/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// DispatcherConfig holds configuration for creating a notification dispatcher.
// GatewayAddress is the delivery bridge inbox that fans notifications out to
// device push channels.
type DispatcherConfig struct {
	Provider       string
	FromAddress    string
	FromName       string
	GatewayAddress string
	SES            SESConfig
}

// NewDispatcher creates a dispatcher from config. Provider "ses" forwards
// notifications through AWS SES; "noop" or unknown logs and drops them.
func NewDispatcher(config DispatcherConfig) (domain.NotificationDispatcher, error) {
	switch config.Provider {
	case "ses":
		sesConfig := config.SES
		if sesConfig.InsecureSkipVerify {
			log.Printf("[PUSH] WARNING: TLS certificate verification is disabled for SES. Use only in development.")
		}
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: sesConfig.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
		awsCfg := aws.Config{
			Region: sesConfig.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					sesConfig.AccessKeyID,
					sesConfig.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
		}
		client := ses.NewFromConfig(awsCfg)
		return &sesDispatcher{
			client:         client,
			fromAddress:    config.FromAddress,
			fromName:       config.FromName,
			gatewayAddress: config.GatewayAddress,
		}, nil
	case "noop":
		return &noopDispatcher{}, nil
	default:
		log.Printf("[PUSH] Unknown push provider %q, using noop", config.Provider)
		return &noopDispatcher{}, nil
	}
}

type sesDispatcher struct {
	client         *ses.Client
	fromAddress    string
	fromName       string
	gatewayAddress string
}

func (d *sesDispatcher) Dispatch(ctx context.Context, n *domain.Notification) error {
	source := d.fromAddress
	if d.fromName != "" {
		source = fmt.Sprintf("%s <%s>", d.fromName, d.fromAddress)
	}
	subject := fmt.Sprintf("notification/%s/%s", n.Kind, n.RecipientID)
	body := fmt.Sprintf("recipient=%s event=%s sender=%s kind=%s\n%s",
		n.RecipientID, n.EventID, n.SenderID, n.Kind, n.Message)

	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{d.gatewayAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}
	result, err := d.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to dispatch via SES: %w", err)
	}
	log.Printf("[PUSH] Notification dispatched via SES. MessageID: %s", aws.ToString(result.MessageId))
	return nil
}

type noopDispatcher struct{}

func (d *noopDispatcher) Dispatch(ctx context.Context, n *domain.Notification) error {
	log.Println("[PUSH] Notification would be dispatched (noop)", "recipient", n.RecipientID, "kind", n.Kind)
	return nil
}
