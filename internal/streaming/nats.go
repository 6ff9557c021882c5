package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"signalguard/internal/config"
	"signalguard/pkg/logger"
)

// NATSPublisher publishes pipeline events to NATS JetStream
type NATSPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	config config.NATSConfig
	logger *logger.Logger

	mu        sync.RWMutex
	connected bool
}

// NewNATSPublisher connects to NATS and ensures the event stream exists
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, log *logger.Logger) (*NATSPublisher, error) {
	log = log.WithComponent("nats")

	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.StreamName == "" {
		cfg.StreamName = "SIGNALGUARD_EVENTS"
	}

	log.Info().Str("url", cfg.URL).Str("stream", cfg.StreamName).Msg("connecting to NATS")

	conn, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "SignalGuard verdict and campaign events",
		Subjects:    []string{"signalguard.>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
		MaxMsgs:     100000,
		Discard:     jetstream.DiscardOld,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	log.Info().Msg("NATS stream ready")

	return &NATSPublisher{
		conn:      conn,
		js:        js,
		stream:    stream,
		config:    cfg,
		logger:    log,
		connected: true,
	}, nil
}

// Close closes the NATS connection
func (p *NATSPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.connected = false
	}
}

// IsConnected returns whether NATS is connected
func (p *NATSPublisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.conn.IsConnected()
}

// PublishEvent publishes one pipeline event to its subject
func (p *NATSPublisher) PublishEvent(ctx context.Context, event *Event) error {
	if !p.IsConnected() {
		return fmt.Errorf("NATS not connected")
	}

	subject := p.subjectFor(event)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug().
		Str("subject", subject).
		Str("event_type", string(event.Type)).
		Msg("published event")

	return nil
}

func (p *NATSPublisher) subjectFor(event *Event) string {
	switch event.Type {
	case EventTypeCampaignDetected:
		if p.config.Subjects.CampaignDetected != "" {
			return p.config.Subjects.CampaignDetected
		}
		return "signalguard.campaign.detected"
	default:
		if p.config.Subjects.VerdictCreated != "" {
			return p.config.Subjects.VerdictCreated
		}
		return "signalguard.verdict.created"
	}
}
