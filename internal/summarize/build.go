package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deusflow/trenddigest/internal/cache"
	"github.com/deusflow/trenddigest/internal/config"
	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/gemini"
	"github.com/deusflow/trenddigest/internal/llm"
	"github.com/deusflow/trenddigest/internal/ratelimit"
	"github.com/deusflow/trenddigest/internal/retry"
	"github.com/deusflow/trenddigest/internal/scraper"
	"github.com/deusflow/trenddigest/internal/translate"
)

// BudgetWindow is how long request counts accumulate before resetting.
// Digest slots are hours apart, so each run starts with a fresh budget.
const BudgetWindow = time.Hour

// Pipeline is the summarizer assembled from configuration.
type Pipeline struct {
	// Summarizer is nil when summaries are disabled.
	Summarizer digest.Summarizer
	Chain      *Chain
	Budget     *ratelimit.Budget
	Cache      *cache.Cache

	closers []func()
	log     *slog.Logger
}

// Close reports budget usage and releases provider clients and the cache.
func (p *Pipeline) Close() {
	if p.Budget != nil && p.log != nil {
		p.log.Info("summary budget", "stats", p.Budget.GetStats())
	}
	for _, c := range p.closers {
		c()
	}
	if p.Cache != nil {
		p.Cache.Close()
	}
}

// Build selects providers per cfg.SummaryProvider. With "auto", Gemini and
// OpenAI join when their keys are set, followed by the headline template when
// the OpenAI key is set. Auto without any key yields no summarizer, so every
// story gets the fallback summary.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Pipeline, error) {
	if log == nil {
		log = slog.Default()
	}
	p := &Pipeline{log: log}
	if cfg.SummaryProvider == config.ProviderNone {
		return p, nil
	}

	p.Cache = cache.New()
	p.Budget = ratelimit.NewBudget(nil, cfg.MaxSummaryRequests, BudgetWindow)
	rc := retry.RetryConfig{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true}
	chain := &Chain{Logger: log.With("component", "summarize")}

	want := func(name string) bool {
		return cfg.SummaryProvider == config.ProviderAuto || cfg.SummaryProvider == name
	}

	if want(config.ProviderGemini) && cfg.GeminiAPIKey != "" {
		g, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, rc, log)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.closers = append(p.closers, g.Close)
		chain.Providers = append(chain.Providers, p.budgeted(config.ProviderGemini, g))
	}

	if want(config.ProviderOpenAI) && cfg.OpenAIAPIKey != "" {
		s, err := llm.New(ctx, llm.Config{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			RPM:     cfg.SummaryRPM,
		}, rc, log)
		if err != nil {
			p.Close()
			return nil, err
		}
		chain.Providers = append(chain.Providers, p.budgeted(config.ProviderOpenAI, s))
	}

	// The headline template calls out to translation services, so auto only
	// uses it when a credential is configured.
	if cfg.SummaryProvider == config.ProviderHeadline ||
		(cfg.SummaryProvider == config.ProviderAuto && cfg.OpenAIAPIKey != "") {
		tr := translate.NewClient(translate.Options{
			OpenAIKey:     cfg.OpenAIAPIKey,
			OpenAIBaseURL: cfg.OpenAIBaseURL,
			OpenAIModel:   cfg.OpenAIModel,
			Cache:         p.Cache,
			Logger:        log,
		})
		chain.Providers = append(chain.Providers, Provider{
			Name:       config.ProviderHeadline,
			Summarizer: &translate.HeadlineSummarizer{Translator: tr},
		})
	}

	if len(chain.Providers) == 0 {
		p.Close()
		if cfg.SummaryProvider == config.ProviderAuto {
			log.Info("no summary credentials configured, using fallback summaries")
			return &Pipeline{log: log}, nil
		}
		return nil, fmt.Errorf("summary provider %q is not configured", cfg.SummaryProvider)
	}
	p.Chain = chain
	p.Summarizer = chain

	if cfg.FetchArticles {
		p.Summarizer = &scraper.ContentSummarizer{
			Next:    chain,
			Fetcher: scraper.NewFetcher(cfg.RequestTimeout, p.Cache, log),
			MaxURLs: 2,
			Logger:  log.With("component", "scraper"),
		}
	}

	log.Info("summarizers ready", "providers", chain.Names(), "fetch_articles", cfg.FetchArticles)
	return p, nil
}

func (p *Pipeline) budgeted(name string, s digest.Summarizer) Provider {
	return Provider{
		Name: name,
		Summarizer: &Budgeted{
			Name:   name,
			Next:   s,
			Budget: p.Budget,
			Cache:  p.Cache,
		},
	}
}
