package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/retry"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
	"git.home.luguber.info/inful/docsite/internal/site"
)

type published struct {
	subject string
	data    []byte
}

type fakeStream struct {
	msgs  []published
	err   error
	calls int
	// failures makes the first n publishes fail.
	failures int
}

func (f *fakeStream) Publish(_ context.Context, subject string, payload []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls <= f.failures {
		return nil, errors.New("nats: timeout")
	}
	f.msgs = append(f.msgs, published{subject: subject, data: payload})
	return &jetstream.PubAck{Stream: DefaultStream, Sequence: uint64(len(f.msgs))}, nil
}

type fakeKV struct {
	values map[string][]byte
}

func (f *fakeKV) Put(_ context.Context, key string, value []byte) (uint64, error) {
	f.values[key] = value
	return uint64(len(f.values)), nil
}

func (f *fakeKV) Get(context.Context, string) (jetstream.KeyValueEntry, error) {
	return nil, jetstream.ErrKeyNotFound
}

func testPublisher(stream *fakeStream, kv *fakeKV) *NATSPublisher {
	opts := NATSOptions{Retry: retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 2)}
	opts.applyDefaults()
	return &NATSPublisher{js: stream, kv: kv, opts: opts, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testModel(t *testing.T) *site.Model {
	t.Helper()
	cfg, _, err := config.FromRaw(config.Example())
	require.NoError(t, err)
	tree, err := sidebar.Resolve((&sidebar.RawDocument{}).Add("otherSidebar", sidebar.Doc("intro")), sidebar.Options{})
	require.NoError(t, err)
	cfg.OnBrokenLinks = config.BrokenLinksWarn
	m, err := site.Assemble(cfg, tree, nil, site.Options{
		BuildID: "b-7",
		Now:     func() time.Time { return time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return m
}

func TestSiteKey(t *testing.T) {
	tests := []struct {
		url, base, want string
	}{
		{"https://yourusername.github.io", "/keycloak-getting-started/", "yourusername_github_io_keycloak-getting-started"},
		{"https://Docs.Example.com", "/", "docs_example_com"},
		{"https://example.com:8443", "/a/b/", "example_com_8443_a_b"},
		{"", "/", "site"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SiteKey(tt.url, tt.base), tt.url+tt.base)
	}
}

func TestNewReportMessage(t *testing.T) {
	msg := NewReportMessage(testModel(t), "hash-1")
	assert.Equal(t, "b-7", msg.BuildID)
	assert.Equal(t, "yourusername_github_io_keycloak-getting-started", msg.Site)
	assert.Equal(t, "warning", msg.Outcome, "navbar targets tutorialSidebar which is absent")
	assert.Equal(t, "hash-1", msg.InputsHash)
	assert.NotEmpty(t, msg.Warnings)
}

func TestNATSPublisher_PublishReport(t *testing.T) {
	stream := &fakeStream{}
	kv := &fakeKV{values: map[string][]byte{}}
	p := testPublisher(stream, kv)

	msg := NewReportMessage(testModel(t), "hash-1")
	require.NoError(t, p.PublishReport(t.Context(), msg))

	require.Len(t, stream.msgs, 1)
	assert.Equal(t, "docsite.reports."+msg.Site, stream.msgs[0].subject)

	var decoded ReportMessage
	require.NoError(t, json.Unmarshal(stream.msgs[0].data, &decoded))
	assert.Equal(t, msg.BuildID, decoded.BuildID)
	assert.Equal(t, stream.msgs[0].data, kv.values[msg.Site])
}

func TestNATSPublisher_PublishError(t *testing.T) {
	kv := &fakeKV{values: map[string][]byte{}}
	p := testPublisher(&fakeStream{err: errors.New("no responders")}, kv)

	err := p.PublishReport(t.Context(), ReportMessage{Site: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no responders")
	assert.Empty(t, kv.values, "failed publishes are not stored")
	assert.Equal(t, 3, p.js.(*fakeStream).calls)
}

func TestNATSPublisher_RetriesTransientFailure(t *testing.T) {
	stream := &fakeStream{failures: 1}
	kv := &fakeKV{values: map[string][]byte{}}
	p := testPublisher(stream, kv)

	require.NoError(t, p.PublishReport(t.Context(), ReportMessage{Site: "s"}))
	assert.Equal(t, 2, stream.calls)
	assert.Len(t, stream.msgs, 1)
	assert.Contains(t, kv.values, "s")
}

func TestNATSOptions_Defaults(t *testing.T) {
	opts := NATSOptions{}
	opts.applyDefaults()
	assert.Equal(t, DefaultSubject, opts.Subject)
	assert.Equal(t, DefaultStream, opts.Stream)
	assert.Equal(t, DefaultBucket, opts.Bucket)
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, retry.BackoffExponential, opts.Retry.Mode)
	assert.Equal(t, 2, opts.Retry.MaxRetries)
}

func TestNATSPublisher_LatestReportMissing(t *testing.T) {
	p := testPublisher(&fakeStream{}, &fakeKV{values: map[string][]byte{}})
	msg, err := p.LatestReport(t.Context(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher(t.Context(), NATSOptions{URL: "nats://127.0.0.1:1", Timeout: 200 * time.Millisecond}, nil)
	require.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	require.NoError(t, p.PublishReport(t.Context(), ReportMessage{}))
	require.NoError(t, p.Close())
}
