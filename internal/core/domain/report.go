package domain

import "errors"

// LoadReport summarises one pass of the embedding loader.
type LoadReport struct {
	Saved         int
	Skipped       int
	EmbedFailures int
	StoreFailures int

	// Errors holds one entry per chunk that was not saved.
	Errors []*LoadError
}

// Record adds a per-chunk failure and bumps the matching counter.
func (r *LoadReport) Record(e *LoadError) {
	switch e.Kind {
	case EmbeddingCallError:
		r.EmbedFailures++
	case PersistenceError:
		r.StoreFailures++
	case MalformedChunkContent:
		r.Skipped++
	}
	r.Errors = append(r.Errors, e)
}

// Err joins all per-chunk failures, or returns nil when there were none.
func (r *LoadReport) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}
