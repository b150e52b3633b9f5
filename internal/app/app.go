package app

import (
	"context"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/config"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/feed"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/geo"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/scorer"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/search"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/store"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/trends"
)

// App is the main application container holding all dependencies.
type App struct {
	Config     *config.Config
	Store      *store.Store
	Trends     *trends.Source
	Searcher   *search.Searcher
	Scorer     *scorer.Scorer
	Aggregator *feed.Aggregator
	Geo        *geo.Resolver
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Create database connection
	st, err := store.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	// Create trend source
	src := trends.New(trends.Config{
		FeedURL:   cfg.TrendsFeedURL,
		UserAgent: cfg.UserAgent,
		TTL:       cfg.TrendsTTL,
	})

	// Create searcher. Without a bearer token the searcher runs
	// credential-less and every live search returns empty.
	var client *search.Client
	if cfg.XBearerToken != "" {
		client = search.NewClient(search.ClientConfig{
			BaseURL:   cfg.SearchURL,
			Bearer:    cfg.XBearerToken,
			UserAgent: cfg.UserAgent,
		})
	}
	searcher := search.NewSearcher(search.SearcherConfig{
		Client: client,
		TTL:    cfg.SearchTTL,
	})

	// Create scorer
	members := []scorer.Member{
		{Model: scorer.Heuristic{}, Weight: cfg.HeuristicWeight},
	}
	if cfg.TextModelURL != "" {
		members = append(members, scorer.Member{
			Model: scorer.NewRemoteTextModel(scorer.RemoteTextConfig{
				Endpoint: cfg.TextModelURL,
				Token:    cfg.HFToken,
			}),
			Weight: cfg.TextModelWeight,
		})
	}

	var images scorer.ImageClassifier
	if cfg.ImageModelURL != "" {
		images = scorer.NewRemoteImageModel(scorer.RemoteImageConfig{
			Endpoint: cfg.ImageModelURL,
			Token:    cfg.HFToken,
		})
	}

	sc := scorer.New(scorer.Config{
		Images:   images,
		Ensemble: scorer.NewEnsemble(members...),
		MemoTTL:  cfg.ScoreTTL,
	})

	// Create aggregator
	agg := feed.New(feed.Config{
		Topics:       src,
		Searcher:     searcher,
		Scorer:       sc,
		TopicWorkers: cfg.TopicWorkers,
	})

	var resolver *geo.Resolver
	if cfg.GeocoderURL != "" {
		resolver = geo.NewResolver(geo.WithBaseURL(cfg.GeocoderURL))
	} else {
		resolver = geo.NewResolver()
	}

	return &App{
		Config:     cfg,
		Store:      st,
		Trends:     src,
		Searcher:   searcher,
		Scorer:     sc,
		Aggregator: agg,
		Geo:        resolver,
	}, nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
