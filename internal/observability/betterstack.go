package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap/zapcore"

	"github.com/riskibarqy/live-tracker/internal/config"
	"github.com/riskibarqy/live-tracker/internal/platform/logging"
)

const betterStackQueueSize = 1024

// InitBetterStackLogger tees records at or above BETTERSTACK_MIN_LEVEL to a Better Stack source.
// Stdout logging is unchanged.
func InitBetterStackLogger(cfg config.Config) (*logging.Logger, func(context.Context) error, error) {
	stdout := logging.NewJSONCore(zapcore.AddSync(os.Stdout), cfg.LogLevel)
	if !cfg.BetterStackEnabled {
		logger := logging.NewTee(stdout)
		logger.Info("betterstack disabled", "reason", "BETTERSTACK_ENABLED=false")
		return logger, func(context.Context) error { return nil }, nil
	}

	endpoint := normalizeBetterStackEndpoint(cfg.BetterStackEndpoint)
	if endpoint == "" {
		return nil, nil, fmt.Errorf("betterstack endpoint cannot be empty")
	}

	drain := newBetterStackDrain(betterStackDrainConfig{
		Endpoint:      endpoint,
		Token:         strings.TrimSpace(cfg.BetterStackToken),
		Timeout:       cfg.BetterStackTimeout,
		BatchSize:     cfg.BetterStackBatchSize,
		FlushInterval: cfg.BetterStackFlushInterval,
	})
	logger := logging.NewTee(stdout, logging.NewJSONCore(drain, cfg.BetterStackMinLevel))
	logger.Info("betterstack enabled",
		"endpoint", endpoint,
		"min_level", cfg.BetterStackMinLevel.String(),
		"batch_size", cfg.BetterStackBatchSize,
	)

	return logger, func(ctx context.Context) error {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			withTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			ctx = withTimeout
		}
		if err := drain.Close(ctx); err != nil {
			return fmt.Errorf("drain betterstack queue: %w", err)
		}
		if err := logger.Sync(); err != nil && !isIgnorableLoggerSyncError(err) {
			return err
		}
		return nil
	}, nil
}

func normalizeBetterStackEndpoint(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "https://" + value
}

type betterStackDrainConfig struct {
	Endpoint      string
	Token         string
	Timeout       time.Duration
	BatchSize     int
	FlushInterval time.Duration
}

// betterStackDrain queues encoded records and ships them as JSON arrays.
// A full queue drops records rather than blocking the caller.
type betterStackDrain struct {
	cfg       betterStackDrainConfig
	client    *http.Client
	queue     chan []byte
	queueMu   sync.RWMutex
	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
	dropped   atomic.Uint64
}

func newBetterStackDrain(cfg betterStackDrainConfig) *betterStackDrain {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}

	d := &betterStackDrain{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		queue:  make(chan []byte, betterStackQueueSize),
		done:   make(chan struct{}),
	}
	go d.run()

	return d
}

func (d *betterStackDrain) Write(p []byte) (int, error) {
	record := bytes.TrimSpace(p)
	if len(record) == 0 {
		return len(p), nil
	}

	d.queueMu.RLock()
	defer d.queueMu.RUnlock()
	if d.closed.Load() {
		return len(p), nil
	}

	// zap reuses its buffer once Write returns.
	copied := append([]byte(nil), record...)
	select {
	case d.queue <- copied:
	default:
		if dropped := d.dropped.Add(1); dropped == 1 || dropped%100 == 0 {
			fmt.Fprintf(os.Stderr, "betterstack queue full; dropped logs=%d\n", dropped)
		}
	}

	return len(p), nil
}

func (d *betterStackDrain) Sync() error {
	return nil
}

func (d *betterStackDrain) run() {
	defer close(d.done)

	ticker := time.NewTicker(d.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([][]byte, 0, d.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		d.send(batch)
		batch = batch[:0]
	}

	for {
		select {
		case record, ok := <-d.queue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, record)
			if len(batch) >= d.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (d *betterStackDrain) send(batch [][]byte) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_ = buf.WriteByte('[')
	for i, record := range batch {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		_, _ = buf.Write(record)
	}
	_ = buf.WriteByte(']')

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, d.cfg.Endpoint, bytes.NewReader(buf.B))
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack create request failed: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if d.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.cfg.Token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack send logs failed: %v\n", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		fmt.Fprintf(os.Stderr, "betterstack send logs got non-2xx status=%d records=%d\n", resp.StatusCode, len(batch))
	}
}

// Close stops accepting records and waits for the queue to flush.
func (d *betterStackDrain) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.queueMu.Lock()
		d.closed.Store(true)
		close(d.queue)
		d.queueMu.Unlock()
	})

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isIgnorableLoggerSyncError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bad file descriptor") || strings.Contains(msg, "invalid argument")
}
