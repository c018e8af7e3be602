package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/ecosentry/ecosentry/pkg/geo"
)

// Job types accepted on the subscription.
const (
	JobAssessmentRefresh = "assessment_refresh"
	JobModelRefit        = "model_refit"
	JobHealthCheck       = "health_check"
)

// JobMessage is the wire format of a worker job.
type JobMessage struct {
	JobType string `json:"job_type"`

	// Lat/Lon narrow a health check to one location. Ignored for
	// other job types.
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

// PubSubHandler consumes worker jobs from a Cloud Pub/Sub
// subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	refreshJob       *RefreshJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	RefreshJob       *RefreshJob
	Logger           zerolog.Logger
}

// NewPubSubHandler creates the handler and its client.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		refreshJob:       cfg.RefreshJob,
		logger:           cfg.Logger.With().Str("component", "pubsub_handler").Logger(),
	}, nil
}

// Start blocks, processing messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	start := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Logger()

	var job JobMessage
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch job.JobType {
	case JobAssessmentRefresh:
		err = h.handleRefresh(ctx)
	case JobModelRefit:
		err = h.handleRefit(ctx)
	case JobHealthCheck:
		err = h.handleHealthCheck(ctx, job)
	default:
		logger.Warn().Str("job_type", job.JobType).Msg("unknown job type")
		// Ack unknown messages to prevent redelivery.
		msg.Ack()
		return
	}

	if err != nil {
		logger.Error().Err(err).Str("job_type", job.JobType).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Str("job_type", job.JobType).
		Dur("duration", time.Since(start)).
		Msg("job completed")

	msg.Ack()
}

func (h *PubSubHandler) handleRefresh(ctx context.Context) error {
	result := h.refreshJob.Run(ctx)

	// A sweep where most targets failed signals a systemic upstream
	// problem, so let the message redeliver.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many refresh failures: %d/%d", result.Failed, result.Total)
	}
	return nil
}

func (h *PubSubHandler) handleRefit(ctx context.Context) error {
	if h.refreshJob.service.FitDetector(ctx) {
		h.logger.Info().Msg("anomaly model refitted")
	} else {
		h.logger.Info().Msg("refit skipped, insufficient history")
	}
	return nil
}

func (h *PubSubHandler) handleHealthCheck(ctx context.Context, job JobMessage) error {
	target := DefaultTargets()[0]
	if job.Lat != nil && job.Lon != nil {
		target.Lat = *job.Lat
		target.Lon = *job.Lon
	}

	probe := NewRefreshJob(RefreshJobConfig{
		Config: RefreshConfig{
			Targets:     []geo.Point{target},
			Concurrency: 1,
			Timeout:     10 * time.Second,
		},
		Service: h.refreshJob.service,
		Logger:  h.logger,
	})

	result := probe.Run(ctx)
	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", result.Failed)
	}
	return nil
}
