package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/grasp-news/grasp/internal/provider"
)

// ProviderOutcome is one provider's slice of a cycle summary.
type ProviderOutcome struct {
	Success    bool   `json:"success"`
	Fetched    int    `json:"fetched"`
	Stored     int    `json:"stored"`
	Duplicates int    `json:"duplicates"`
	Errors     int    `json:"errors"`
	Error      string `json:"error,omitempty"`
}

// CycleResult aggregates one ingestion cycle. It is structured data for
// logging and monitoring; no caller branches on it.
type CycleResult struct {
	Stored     int                        `json:"stored"`
	Duplicates int                        `json:"duplicates"`
	Errors     int                        `json:"errors"`
	Providers  map[string]ProviderOutcome `json:"providers"`
	StartedAt  time.Time                  `json:"started_at"`
	Duration   time.Duration              `json:"duration"`
}

// Orchestrator runs all configured adapters for one ingestion cycle,
// isolating failures per provider. Providers run sequentially; each
// successful fetch is stored on its own so one provider's insert failure
// cannot block another's.
type Orchestrator struct {
	adapters  []provider.Adapter
	writer    *Writer
	selectors map[string]provider.Selector
}

// NewOrchestrator wires adapters to the dedup writer. selectors optionally
// overrides the per-provider fetch selector; absent entries use the zero
// selector and each adapter's defaults.
func NewOrchestrator(adapters []provider.Adapter, writer *Writer, selectors map[string]provider.Selector) *Orchestrator {
	if selectors == nil {
		selectors = map[string]provider.Selector{}
	}
	return &Orchestrator{
		adapters:  adapters,
		writer:    writer,
		selectors: selectors,
	}
}

// AdapterNames lists the configured providers in registration order.
func (o *Orchestrator) AdapterNames() []string {
	names := make([]string, 0, len(o.adapters))
	for _, adapter := range o.adapters {
		names = append(names, adapter.Name())
	}
	return names
}

// RunCycle fetches and stores from every adapter, or only the named ones.
// The cycle itself never fails; it fails a provider at a time.
func (o *Orchestrator) RunCycle(ctx context.Context, only ...string) CycleResult {
	return o.runCycle(ctx, 0, only)
}

// RunCycleSized is RunCycle with every provider's batch size overridden.
func (o *Orchestrator) RunCycleSized(ctx context.Context, pageSize int, only ...string) CycleResult {
	return o.runCycle(ctx, pageSize, only)
}

func (o *Orchestrator) runCycle(ctx context.Context, pageSize int, only []string) CycleResult {
	start := time.Now().UTC()
	result := CycleResult{
		Providers: make(map[string]ProviderOutcome, len(o.adapters)),
		StartedAt: start,
	}

	wanted := make(map[string]struct{}, len(only))
	for _, name := range only {
		wanted[name] = struct{}{}
	}

	for _, adapter := range o.adapters {
		name := adapter.Name()
		if len(wanted) > 0 {
			if _, ok := wanted[name]; !ok {
				continue
			}
		}

		sel := o.selectors[name]
		if pageSize > 0 {
			sel.PageSize = pageSize
		}

		drafts, err := adapter.FetchBatch(ctx, sel)
		if err != nil {
			slog.Warn("provider fetch failed", "provider", name, "error", err)
			result.Providers[name] = ProviderOutcome{Success: false, Error: err.Error()}
			continue
		}

		batch := o.writer.StoreBatch(ctx, drafts)
		result.Providers[name] = ProviderOutcome{
			Success:    true,
			Fetched:    len(drafts),
			Stored:     batch.Stored,
			Duplicates: batch.Duplicates,
			Errors:     batch.Errors,
		}
		result.Stored += batch.Stored
		result.Duplicates += batch.Duplicates
		result.Errors += batch.Errors
	}

	result.Duration = time.Since(start)
	slog.Info("ingestion cycle completed",
		"stored", result.Stored,
		"duplicates", result.Duplicates,
		"errors", result.Errors,
		"providers", len(result.Providers),
		"duration", result.Duration,
	)
	return result
}
