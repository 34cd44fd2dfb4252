package push

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/nhle/meetup-scheduler/internal/model"
)

// DefaultBatchSize is the provider's maximum tokens per multicast call.
const DefaultBatchSize = 500

// multicastSender is the slice of the FCM client the gateway uses.
// *messaging.Client satisfies it.
type multicastSender interface {
	SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// TokenStore is the device-token registry the gateway reads and prunes.
type TokenStore interface {
	GetDeviceTokens(ctx context.Context, userIDs []string) ([]model.DeviceToken, error)
	DeleteDeviceTokens(ctx context.Context, tokens []string) error
}

// DeliveryResult summarizes a user-addressed send. When the provider is
// not configured, NotConfigured is set and both counts are zero; callers
// never need to special-case this.
type DeliveryResult struct {
	Sent          int
	Failed        int
	NotConfigured bool
}

// TokenReport summarizes a token-addressed send across all batches.
type TokenReport struct {
	SuccessCount   int
	FailureCount   int
	TokensToDelete []string
	NotConfigured  bool
}

// Gateway fans a notification out to device tokens through Firebase
// Cloud Messaging, batching to the provider limit and pruning tokens the
// provider reports as dead.
type Gateway struct {
	client    multicastSender
	tokens    TokenStore
	limiter   *rate.Limiter
	batchSize int

	// isTerminal classifies a per-token delivery error. Terminal errors
	// mean the token will never work again and must be deleted;
	// everything else is transient and only logged.
	isTerminal func(error) bool
}

// NewFirebaseClient initializes an FCM messaging client from a
// service-account credentials file. An empty path means push delivery is
// disabled: the returned client is nil and the gateway degrades to
// not-configured results.
func NewFirebaseClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	if credentialsFile == "" {
		return nil, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing fcm client: %w", err)
	}
	return client, nil
}

// NewGateway builds a Gateway over the given FCM client and token
// registry. A nil client is allowed and produces not-configured results.
func NewGateway(client *messaging.Client, tokens TokenStore, batchSize, rateLimit int) *Gateway {
	g := &Gateway{
		tokens:     tokens,
		batchSize:  batchSize,
		isTerminal: isTerminalError,
	}
	if client != nil {
		g.client = client
	}
	if g.batchSize <= 0 || g.batchSize > DefaultBatchSize {
		g.batchSize = DefaultBatchSize
	}
	if rateLimit > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
	}
	return g
}

// isTerminalError reports whether a per-token FCM error means the token
// is dead: unregistered tokens and invalid arguments (malformed tokens)
// are terminal, everything else is transient.
func isTerminalError(err error) bool {
	return messaging.IsRegistrationTokenNotRegistered(err) ||
		errorutils.IsInvalidArgument(err)
}

// SendToUsers resolves the users' registered device tokens and delivers
// the notification to all of them. Users with no tokens simply receive
// nothing; that is a no-op result, not an error.
func (g *Gateway) SendToUsers(
	ctx context.Context,
	userIDs []string,
	title, body string,
	data map[string]string,
) DeliveryResult {
	if g.client == nil {
		return DeliveryResult{NotConfigured: true}
	}

	tokens, err := g.tokens.GetDeviceTokens(ctx, userIDs)
	if err != nil {
		log.Printf("push: resolving device tokens: %v", err)
		return DeliveryResult{}
	}
	if len(tokens) == 0 {
		return DeliveryResult{}
	}

	values := make([]string, 0, len(tokens))
	for _, t := range tokens {
		values = append(values, t.Token)
	}

	report := g.SendToTokens(ctx, values, title, body, data)
	return DeliveryResult{
		Sent:          report.SuccessCount,
		Failed:        report.FailureCount,
		NotConfigured: report.NotConfigured,
	}
}

// SendToTokens delivers the notification to the given tokens in batches
// of at most the provider limit, aggregates counts across batches, and
// deletes every token the provider reported as dead.
func (g *Gateway) SendToTokens(
	ctx context.Context,
	tokens []string,
	title, body string,
	data map[string]string,
) TokenReport {
	if g.client == nil {
		return TokenReport{NotConfigured: true}
	}

	var report TokenReport
	for start := 0; start < len(tokens); start += g.batchSize {
		end := start + g.batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				log.Printf("push: rate limiter: %v", err)
				report.FailureCount += len(tokens) - start
				break
			}
		}

		msg := &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}

		resp, err := g.client.SendEachForMulticast(ctx, msg)
		if err != nil {
			// Whole-call failure is transient: count and move on.
			log.Printf("push: multicast call failed for %d tokens: %v", len(batch), err)
			report.FailureCount += len(batch)
			continue
		}

		report.SuccessCount += resp.SuccessCount
		report.FailureCount += resp.FailureCount

		for i, r := range resp.Responses {
			if r.Success || r.Error == nil {
				continue
			}
			if g.isTerminal(r.Error) {
				report.TokensToDelete = append(report.TokensToDelete, batch[i])
			} else {
				log.Printf("push: transient failure for token %s: %v", batch[i], r.Error)
			}
		}
	}

	if len(report.TokensToDelete) > 0 {
		// A failed delete just means the token fails again next time.
		if err := g.tokens.DeleteDeviceTokens(ctx, report.TokensToDelete); err != nil {
			log.Printf("push: deleting %d dead tokens: %v", len(report.TokensToDelete), err)
		} else {
			log.Printf("push: deleted %d dead tokens", len(report.TokensToDelete))
		}
	}

	return report
}
