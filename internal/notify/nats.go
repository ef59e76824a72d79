package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

const (
	DefaultSubject = "docsite.reports"
	DefaultStream  = "DOCSITE_REPORTS"
	DefaultBucket  = "docsite_reports"
)

// NATSOptions configures the JetStream publisher.
type NATSOptions struct {
	URL     string
	Subject string
	Stream  string
	// Bucket holds the latest report per site.
	Bucket  string
	Timeout time.Duration
	// Retry governs republishing after transient failures. Each attempt
	// gets its own Timeout.
	Retry retry.Policy
}

func (o *NATSOptions) applyDefaults() {
	if o.Subject == "" {
		o.Subject = DefaultSubject
	}
	if o.Stream == "" {
		o.Stream = DefaultStream
	}
	if o.Bucket == "" {
		o.Bucket = DefaultBucket
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.Retry.Validate() != nil {
		o.Retry = retry.NewPolicy(retry.BackoffExponential, 200*time.Millisecond, 2*time.Second, 2)
	}
}

type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type latestStore interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
}

// NATSPublisher publishes reports to a JetStream stream and keeps the latest
// report per site in a key-value bucket.
type NATSPublisher struct {
	conn   *nats.Conn
	js     streamPublisher
	kv     latestStore
	opts   NATSOptions
	logger *slog.Logger
}

// NewNATSPublisher connects to NATS and ensures the stream and bucket exist.
func NewNATSPublisher(ctx context.Context, opts NATSOptions, logger *slog.Logger) (*NATSPublisher, error) {
	opts.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(opts.URL, nats.Name("docsite"), nats.Timeout(opts.Timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*opts.Timeout)
	defer cancel()

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        opts.Stream,
		Description: "docsite build reports",
		Subjects:    []string{opts.Subject + ".>"},
		MaxAge:      30 * 24 * time.Hour,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure report stream: %w", err)
	}

	kv, err := js.KeyValue(ctx, opts.Bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      opts.Bucket,
			Description: "Latest docsite report per site",
			History:     1,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create KV bucket: %w", err)
		}
		logger.Info("Created KV bucket for reports", slog.String("bucket", opts.Bucket))
	}

	logger.Info("NATS report publisher initialized",
		slog.String("url", opts.URL),
		slog.String("subject", opts.Subject),
		slog.String("stream", opts.Stream))

	return &NATSPublisher{conn: conn, js: js, kv: kv, opts: opts, logger: logger}, nil
}

// PublishReport publishes msg on "<subject>.<site>" and stores it as the
// site's latest report.
func (p *NATSPublisher) PublishReport(ctx context.Context, msg ReportMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	subject := p.opts.Subject + "." + msg.Site
	attempts := 0
	err = retry.Do(ctx, p.opts.Retry, func(ctx context.Context) error {
		attempts++
		ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()

		if _, err := p.js.Publish(ctx, subject, data); err != nil {
			p.logger.Debug("Report publish attempt failed",
				slog.Int("attempt", attempts),
				logfields.Error(err))
			return fmt.Errorf("failed to publish report: %w", err)
		}
		if _, err := p.kv.Put(ctx, msg.Site, data); err != nil {
			return fmt.Errorf("failed to store latest report: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.logger.Debug("Published build report",
		logfields.BuildID(msg.BuildID),
		slog.String("subject", subject),
		slog.Int("attempts", attempts),
		logfields.Warnings(len(msg.Warnings)))
	return nil
}

// LatestReport returns the last report stored for siteKey, or nil when none
// has been published.
func (p *NATSPublisher) LatestReport(ctx context.Context, siteKey string) (*ReportMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	entry, err := p.kv.Get(ctx, siteKey)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	var msg ReportMessage
	if err := json.Unmarshal(entry.Value(), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &msg, nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
