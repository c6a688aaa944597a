package apportionment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Processor replays apportionment over every case present in the staging
// store. Cases are processed strictly one at a time; the engine's ordering
// guarantees hold within a case, so there is no intra-case parallelism.
type Processor struct {
	service *Service
}

func NewProcessor(service *Service) *Processor {
	return &Processor{service: service}
}

// ReplaySummary reports what one replay pass did.
type ReplaySummary struct {
	CasesProcessed int
	CasesFailed    int
	EntriesCreated int
	SurplusCases   int
	ShortfallCases int
}

// Run performs one replay pass over all staged cases. A failure on one case is
// logged and counted but does not stop the pass; the context cancels between
// cases, never mid-case.
func (p *Processor) Run(ctx context.Context) (*ReplaySummary, error) {
	logger := log.With().Str("component", "replay_processor").Logger()
	logger.Info().Msg("starting historical apportionment replay")

	caseNumbers, err := p.service.GetStagingDB().GetDistinctCaseNumbers()
	if err != nil {
		return nil, fmt.Errorf("failed to list staged cases: %w", err)
	}

	logger.Info().Int("case_count", len(caseNumbers)).Msg("found staged cases to replay")

	summary := &ReplaySummary{}
	for _, ccd := range caseNumbers {
		select {
		case <-ctx.Done():
			logger.Warn().
				Int("cases_processed", summary.CasesProcessed).
				Msg("replay cancelled")
			return summary, ctx.Err()
		default:
		}

		resp, err := p.service.ApportionCase(ccd)
		if err != nil {
			logger.Error().
				Err(err).
				Str("ccd_case_number", ccd).
				Msg("failed to apportion case, continuing replay")
			summary.CasesFailed++
			continue
		}

		summary.CasesProcessed++
		summary.EntriesCreated += resp.EntriesCreated
		if resp.IsSurplus {
			summary.SurplusCases++
		}
		if resp.IsShortfall {
			summary.ShortfallCases++
		}
	}

	logger.Info().
		Int("cases_processed", summary.CasesProcessed).
		Int("cases_failed", summary.CasesFailed).
		Int("entries_created", summary.EntriesCreated).
		Int("surplus_cases", summary.SurplusCases).
		Int("shortfall_cases", summary.ShortfallCases).
		Msg("historical apportionment replay completed")

	return summary, nil
}
