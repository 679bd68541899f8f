package artificialanalysis

import (
	"github.com/vn6295337/intelligent-model-selector/internal/models"
)

// TransformResult holds the rows ready for loading plus the filter count
type TransformResult struct {
	Records []*models.PerformanceRecord
	Skipped int
}

// Transform maps API models onto metrics rows. Models without an intelligence
// index are excluded and counted; that is a filter, not an error.
func Transform(apiModels []Model) TransformResult {
	result := TransformResult{
		Records: make([]*models.PerformanceRecord, 0, len(apiModels)),
	}

	for _, m := range apiModels {
		evals := m.Evaluations
		if evals == nil {
			evals = &Evaluations{}
		}
		if evals.IntelligenceIndex == nil {
			result.Skipped++
			continue
		}

		pricing := m.Pricing
		if pricing == nil {
			pricing = &Pricing{}
		}
		creator := m.ModelCreator
		if creator == nil {
			creator = &Creator{}
		}

		result.Records = append(result.Records, &models.PerformanceRecord{
			AAModelID:   m.ID,
			AASlug:      m.Slug,
			Name:        m.Name,
			CreatorName: creator.Name,
			CreatorSlug: creator.Slug,
			ReleaseDate: m.ReleaseDate,

			IntelligenceIndex: *evals.IntelligenceIndex,
			CodingIndex:       evals.CodingIndex,
			MathIndex:         evals.MathIndex,

			MMLUPro:           evals.MMLUPro,
			GPQA:              evals.GPQA,
			HLE:               evals.HLE,
			LiveCodeBench:     evals.LiveCodeBench,
			SciCode:           evals.SciCode,
			Math500:           evals.Math500,
			AIME:              evals.AIME,
			AIME25:            evals.AIME25,
			IFBench:           evals.IFBench,
			LCR:               evals.LCR,
			TerminalBenchHard: evals.TerminalBenchHard,
			Tau2:              evals.Tau2,

			Price1MInputTokens:  pricing.Price1MInputTokens,
			Price1MOutputTokens: pricing.Price1MOutputTokens,
			Price1MBlended:      pricing.Price1MBlended3To1,

			MedianOutputTokensPerSecond:   m.MedianOutputTokensPerSecond,
			MedianTimeToFirstTokenSeconds: m.MedianTimeToFirstTokenSeconds,
			MedianTimeToFirstAnswerToken:  m.MedianTimeToFirstAnswerToken,
		})
	}

	return result
}
