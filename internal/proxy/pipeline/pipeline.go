// Package pipeline runs one fetch request: retrieve the origin page,
// rewrite its text and extract the title.
package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edgecomet/faleproxy/internal/common/configtypes"
	"github.com/edgecomet/faleproxy/internal/common/htmlprocessor"
	"github.com/edgecomet/faleproxy/internal/common/wordrule"
	"github.com/edgecomet/faleproxy/internal/proxy/fetcher"
	"github.com/edgecomet/faleproxy/internal/proxy/metrics"
)

// Fetcher retrieves a raw origin document
type Fetcher interface {
	Fetch(rawURL string, logger *zap.Logger) (*fetcher.RawDocument, error)
}

// Result is the outcome of a successful Process call
type Result struct {
	Content     string
	Title       string
	OriginalURL string

	FinalURL      string
	OriginStatus  int
	FetchSize     int
	FetchDuration time.Duration
	Stats         htmlprocessor.RewriteStats
}

// Service is safe for concurrent use; each call owns its document.
type Service struct {
	fetcher Fetcher
	rule    *wordrule.Rule
	opts    Options
	metrics *metrics.MetricsCollector
}

// Options control how fetched pages are rewritten
type Options struct {
	Rewrite htmlprocessor.RewriteOptions
}

// NewService builds a pipeline from the rewrite section of cfg
func NewService(cfg *configtypes.Config, f Fetcher, mc *metrics.MetricsCollector) (*Service, error) {
	rule, err := wordrule.New(cfg.Rewrite.Target, cfg.Rewrite.Replacement)
	if err != nil {
		return nil, fmt.Errorf("rewrite rule: %w", err)
	}

	return &Service{
		fetcher: f,
		rule:    rule,
		opts: Options{
			Rewrite: htmlprocessor.RewriteOptions{SkipTags: cfg.Rewrite.SkipTags},
		},
		metrics: mc,
	}, nil
}

// Rule returns the substitution rule in use
func (s *Service) Rule() *wordrule.Rule {
	return s.rule
}

// Process fetches rawURL and returns the rewritten page.
// Errors from the fetcher (*fetcher.InvalidURLError, *fetcher.FetchError)
// are returned unwrapped so callers can classify them.
func (s *Service) Process(rawURL string, logger *zap.Logger) (*Result, error) {
	fetchStart := time.Now()
	raw, err := s.fetcher.Fetch(rawURL, logger)
	if err != nil {
		return nil, err
	}
	fetchDuration := time.Since(fetchStart)
	s.metrics.RecordFetch(fetchDuration, len(raw.Body))

	content, title, stats, err := Rewrite(raw.Body, s.rule, s.opts)
	if err != nil {
		logger.Error("Failed to rewrite page", zap.String("url", raw.URL), zap.Error(err))
		return nil, err
	}
	s.metrics.RecordRewrite(stats.TextNodes, stats.Elements)

	if !stats.Changed() {
		logger.Debug("Page has no text to rewrite",
			zap.String("url", raw.URL),
			zap.String("target", s.rule.Target()))
	}

	logger.Debug("Page rewritten",
		zap.String("url", raw.URL),
		zap.Int("text_nodes", stats.TextNodes),
		zap.Int("elements", stats.Elements),
		zap.Int("size", len(content)),
		zap.Duration("fetch_duration", fetchDuration))

	return &Result{
		Content:       string(content),
		Title:         title,
		OriginalURL:   rawURL,
		FinalURL:      raw.URL,
		OriginStatus:  raw.StatusCode,
		FetchSize:     len(raw.Body),
		FetchDuration: fetchDuration,
		Stats:         stats,
	}, nil
}

// Rewrite parses rawHTML, applies rule to its text, and returns the
// serialized page together with the title of the rewritten page.
func Rewrite(rawHTML []byte, rule *wordrule.Rule, opts Options) ([]byte, string, htmlprocessor.RewriteStats, error) {
	doc, err := htmlprocessor.ParseWithDOM(rawHTML)
	if err != nil {
		return nil, "", htmlprocessor.RewriteStats{}, fmt.Errorf("parse html: %w", err)
	}

	stats := doc.Rewrite(rule, opts.Rewrite)

	content, err := doc.HTML()
	if err != nil {
		return nil, "", stats, fmt.Errorf("render html: %w", err)
	}

	return content, doc.Title(), stats, nil
}
