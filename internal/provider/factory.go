package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fathom-search/fathom/internal/config"
)

// Build constructs the full provider set from configuration. The returned
// close function releases every adapter that holds resources.
//
// The knowledge corpus, when configured, is ingested here so the index is
// ready before the first query.
func Build(ctx context.Context, cfg *config.Config) (map[string]Provider, func() error, error) {
	client := &http.Client{}
	set := make(map[string]Provider, len(cfg.Providers))
	var closers []func() error

	closeAll := func() error {
		var firstErr error
		for _, c := range closers {
			if err := c(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for _, pc := range cfg.Providers {
		switch pc.Kind {
		case config.KindKnowledge:
			kp, err := NewKnowledgeProvider(pc.ID, cfg.Knowledge.Backend, cfg.Knowledge.Path)
			if err != nil {
				_ = closeAll()
				return nil, nil, err
			}
			closers = append(closers, kp.Close)
			if cfg.Knowledge.CorpusPath != "" {
				if err := kp.LoadCorpus(ctx, cfg.Knowledge.CorpusPath); err != nil {
					_ = closeAll()
					return nil, nil, err
				}
			}
			set[pc.ID] = kp

		case config.KindScrape:
			sp, err := NewScrapeProvider(pc, client)
			if err != nil {
				_ = closeAll()
				return nil, nil, err
			}
			closers = append(closers, sp.Close)
			set[pc.ID] = sp

		case config.KindPrivacy, config.KindSemantic, config.KindAggregator, config.KindUnrestricted:
			set[pc.ID] = NewWebProvider(pc, client)

		default:
			_ = closeAll()
			return nil, nil, fmt.Errorf("provider %s: unknown kind %q", pc.ID, pc.Kind)
		}
	}

	return set, closeAll, nil
}
