package models

//
// PerformanceRecord (ims.20_aa_performance_metrics)
//

// PerformanceRecord is one benchmarked model as stored in the metrics table.
// IntelligenceIndex is mandatory; records without it never reach this type.
type PerformanceRecord struct {
	// 1. Identity
	AAModelID   *string `db:"aa_model_id" json:"aa_model_id"`
	AASlug      string  `db:"aa_slug" json:"aa_slug"`
	Name        *string `db:"name" json:"name,omitempty"`
	CreatorName *string `db:"creator_name" json:"creator_name,omitempty"`
	CreatorSlug *string `db:"creator_slug" json:"creator_slug,omitempty"`
	ReleaseDate *string `db:"release_date" json:"release_date,omitempty"`

	// 2. Aggregate indexes
	IntelligenceIndex float64  `db:"intelligence_index" json:"intelligence_index"`
	CodingIndex       *float64 `db:"coding_index" json:"coding_index,omitempty"`
	MathIndex         *float64 `db:"math_index" json:"math_index,omitempty"`

	// 3. Benchmarks
	MMLUPro           *float64 `db:"mmlu_pro" json:"mmlu_pro,omitempty"`
	GPQA              *float64 `db:"gpqa" json:"gpqa,omitempty"`
	HLE               *float64 `db:"hle" json:"hle,omitempty"`
	LiveCodeBench     *float64 `db:"livecodebench" json:"livecodebench,omitempty"`
	SciCode           *float64 `db:"scicode" json:"scicode,omitempty"`
	Math500           *float64 `db:"math_500" json:"math_500,omitempty"`
	AIME              *float64 `db:"aime" json:"aime,omitempty"`
	AIME25            *float64 `db:"aime_25" json:"aime_25,omitempty"`
	IFBench           *float64 `db:"ifbench" json:"ifbench,omitempty"`
	LCR               *float64 `db:"lcr" json:"lcr,omitempty"`
	TerminalBenchHard *float64 `db:"terminalbench_hard" json:"terminalbench_hard,omitempty"`
	Tau2              *float64 `db:"tau2" json:"tau2,omitempty"`

	// 4. Pricing (USD per 1M tokens)
	Price1MInputTokens  *float64 `db:"price_1m_input_tokens" json:"price_1m_input_tokens,omitempty"`
	Price1MOutputTokens *float64 `db:"price_1m_output_tokens" json:"price_1m_output_tokens,omitempty"`
	Price1MBlended      *float64 `db:"price_1m_blended" json:"price_1m_blended,omitempty"`

	// 5. Latency
	MedianOutputTokensPerSecond   *float64 `db:"median_output_tokens_per_second" json:"median_output_tokens_per_second,omitempty"`
	MedianTimeToFirstTokenSeconds *float64 `db:"median_time_to_first_token_seconds" json:"median_time_to_first_token_seconds,omitempty"`
	MedianTimeToFirstAnswerToken  *float64 `db:"median_time_to_first_answer_token" json:"median_time_to_first_answer_token,omitempty"`
}

// PerformanceColumns lists the metrics table columns in insert order
var PerformanceColumns = []string{
	"aa_model_id", "aa_slug", "name", "creator_name", "creator_slug", "release_date",
	"intelligence_index", "coding_index", "math_index",
	"mmlu_pro", "gpqa", "hle", "livecodebench", "scicode", "math_500", "aime", "aime_25",
	"ifbench", "lcr", "terminalbench_hard", "tau2",
	"price_1m_input_tokens", "price_1m_output_tokens", "price_1m_blended",
	"median_output_tokens_per_second", "median_time_to_first_token_seconds",
	"median_time_to_first_answer_token",
}
