package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/case-dashboard/internal/domain"
)

// HTTPSource downloads the CSV export of the case spreadsheet
type HTTPSource struct {
	url      string
	client   *retryablehttp.Client
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
	decoder  *Decoder
	cache    PayloadCache
	cacheTTL time.Duration
	log      *logrus.Logger
}

// NewHTTPSource creates an HTTP source. cache may be nil.
func NewHTTPSource(config domain.SourceConfig, decoder *Decoder, cache PayloadCache, cacheTTL time.Duration, logger *logrus.Logger) *HTTPSource {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 2
	}

	client := retryablehttp.NewClient()
	client.RetryMax = config.RetryCount
	client.HTTPClient.Timeout = config.Timeout
	client.Logger = leveledLogger{logger}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "case-source",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &HTTPSource{
		url:      config.URL,
		client:   client,
		breaker:  breaker,
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		decoder:  decoder,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      logger,
	}
}

// Name implements domain.DataSource
func (s *HTTPSource) Name() string {
	return "http:" + s.url
}

// Load fetches the export, preferring a cached payload
func (s *HTTPSource) Load(ctx context.Context) (domain.Dataset, error) {
	payload, err := s.payload(ctx)
	if err != nil {
		return domain.Dataset{}, wrapUnavailable(s.Name(), err)
	}

	ds, err := s.decoder.Decode(bytes.NewReader(payload))
	if err != nil {
		return domain.Dataset{}, wrapUnavailable(s.Name(), err)
	}
	return ds, nil
}

func (s *HTTPSource) payload(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, s.url)
		if err != nil {
			s.log.WithError(err).Warn("Payload cache read failed")
		} else if ok {
			s.log.WithField("url", s.url).Debug("Serving case export from cache")
			return data, nil
		}
	}

	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.url, data, s.cacheTTL); err != nil {
			s.log.WithError(err).Warn("Payload cache write failed")
		}
	}
	return data, nil
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching case export: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	data := result.([]byte)
	s.log.WithFields(logrus.Fields{
		"url":   s.url,
		"bytes": len(data),
	}).Info("Fetched case export")
	return data, nil
}

// leveledLogger adapts logrus to retryablehttp.LeveledLogger
type leveledLogger struct {
	log *logrus.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.entry(kv).Error(msg) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.entry(kv).Debug(msg) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.entry(kv).Debug(msg) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.entry(kv).Warn(msg) }

func (l leveledLogger) entry(kv []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return l.log.WithFields(fields)
}
