// Package meaning resolves word meanings from online dictionary services
// and patches them into the vocabulary asynchronously. Lookups are best
// effort: offline or failed requests yield no meaning, never an error that
// would stall the pipeline.
package meaning

import (
	"context"

	"linguavoice/log"
)

// Lookup resolves a word in the given language to a short English meaning.
// An empty result with nil error means the service had nothing for us.
type Lookup interface {
	Meaning(ctx context.Context, word, language string) (string, error)
}

// Applier receives resolved meanings. *vocab.Tracker satisfies this.
type Applier interface {
	ApplyMeaning(userID, word, language, meaning string) error
}

// Enricher fans word lookups out to a bounded worker pool and applies the
// results. Failed lookups are logged and dropped.
type Enricher struct {
	lookup Lookup
	apply  Applier
	pool   *Pool
}

func NewEnricher(lookup Lookup, apply Applier, workers int) *Enricher {
	return &Enricher{
		lookup: lookup,
		apply:  apply,
		pool:   NewPool(workers, workers*16),
	}
}

// Start brings up the lookup workers. ctx cancellation stops them.
func (e *Enricher) Start(ctx context.Context) {
	e.pool.Start(ctx)
}

// Enrich schedules meaning lookups for words. Words that no longer need a
// meaning by the time the job runs are handled by the Applier's no-op on
// empty results.
func (e *Enricher) Enrich(userID, language string, words []string) {
	for _, word := range words {
		word := word
		err := e.pool.Submit(func(ctx context.Context) {
			m, err := e.lookup.Meaning(ctx, word, language)
			if err != nil {
				log.Debugf("meaning lookup failed for %q (%s): %v", word, language, err)
				return
			}
			if m == "" {
				return
			}
			if err := e.apply.ApplyMeaning(userID, word, language, m); err != nil {
				log.Errorf("applying meaning for %q: %v", word, err)
			}
		})
		if err != nil {
			log.Debugf("meaning lookup dropped for %q: %v", word, err)
		}
	}
}

// Close stops accepting lookups and waits for in-flight ones to finish.
func (e *Enricher) Close() {
	e.pool.Close()
}
