package marketwatch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"papersim/internal/domain"
	"papersim/pkg/retrier"
)

const (
	feedHandshakeTimeout = 10 * time.Second
	feedReadTimeout      = 60 * time.Second
	feedReconnectDelay   = time.Second
	feedMaxReconnect     = 30 * time.Second
	feedDialRetries      = 10
)

// feedMessage is the wire shape pushed by the quote feed: the asset symbol
// and its price exactly as displayed on the source page.
type feedMessage struct {
	Asset string `json:"asset"`
	Text  string `json:"text"`
}

// Feed receives raw base-asset price text pushed over a websocket and keeps
// the latest reading per asset. It implements Provider so the watcher can
// hand readings to the cache on its own timer.
type Feed struct {
	url    string
	logger *zap.Logger

	mu     sync.RWMutex
	latest map[domain.Asset]string
}

// NewFeed creates a feed for the given websocket URL.
func NewFeed(url string, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		url:    url,
		logger: logger,
		latest: make(map[domain.Asset]string),
	}
}

// Quotes returns the most recently received raw reading per asset.
func (f *Feed) Quotes(_ context.Context) ([]Quote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	quotes := make([]Quote, 0, len(f.latest))
	for asset, text := range f.latest {
		quotes = append(quotes, Quote{Asset: asset, Text: text})
	}
	return quotes, nil
}

// Run connects to the feed and consumes messages until ctx is cancelled,
// reconnecting on any transport error. Dialing retries with exponential
// backoff; a feed that stays unreachable past the retry budget stops Run.
func (f *Feed) Run(ctx context.Context) error {
	r := retrier.New(
		retrier.WithInitialInterval(feedReconnectDelay),
		retrier.WithMaxInterval(feedMaxReconnect),
		retrier.WithMaxRetries(feedDialRetries),
	)

	for {
		conn, err := retrier.DoWithData(r, ctx, f.dial)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "connect quote feed")
		}

		if err := f.consume(ctx, conn); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Warn("quote feed disconnected", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(feedReconnectDelay):
		}
	}
}

func (f *Feed) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: feedHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "dial quote feed")
	}
	return conn, nil
}

func (f *Feed) consume(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	// unblock ReadMessage when the context is cancelled
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	f.logger.Info("quote feed connected", zap.String("url", f.url))

	for {
		if err := conn.SetReadDeadline(time.Now().Add(feedReadTimeout)); err != nil {
			return errors.Wrap(err, "set read deadline")
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			return errors.Wrap(err, "read quote feed message")
		}

		var msg feedMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			f.logger.Warn("malformed feed message", zap.Error(err))
			continue
		}

		asset := domain.Asset(msg.Asset)
		if asset != domain.AssetSOL && asset != domain.AssetBNB {
			continue
		}

		f.mu.Lock()
		f.latest[asset] = msg.Text
		f.mu.Unlock()
	}
}
