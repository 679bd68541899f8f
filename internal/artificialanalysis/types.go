package artificialanalysis

import "encoding/json"

// Model is one entry of the /data/llms/models response.
// Every numeric field is nullable upstream.
type Model struct {
	ID                            *string      `json:"id"`
	Slug                          string       `json:"slug"`
	Name                          *string      `json:"name"`
	ReleaseDate                   *string      `json:"release_date"`
	ModelCreator                  *Creator     `json:"model_creator"`
	Evaluations                   *Evaluations `json:"evaluations"`
	Pricing                       *Pricing     `json:"pricing"`
	MedianOutputTokensPerSecond   *float64     `json:"median_output_tokens_per_second"`
	MedianTimeToFirstTokenSeconds *float64     `json:"median_time_to_first_token_seconds"`
	MedianTimeToFirstAnswerToken  *float64     `json:"median_time_to_first_answer_token"`
}

// Creator is the organisation that released the model
type Creator struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

// Evaluations holds the benchmark scores
type Evaluations struct {
	IntelligenceIndex *float64 `json:"artificial_analysis_intelligence_index"`
	CodingIndex       *float64 `json:"artificial_analysis_coding_index"`
	MathIndex         *float64 `json:"artificial_analysis_math_index"`
	MMLUPro           *float64 `json:"mmlu_pro"`
	GPQA              *float64 `json:"gpqa"`
	HLE               *float64 `json:"hle"`
	LiveCodeBench     *float64 `json:"livecodebench"`
	SciCode           *float64 `json:"scicode"`
	Math500           *float64 `json:"math_500"`
	AIME              *float64 `json:"aime"`
	AIME25            *float64 `json:"aime_25"`
	IFBench           *float64 `json:"ifbench"`
	LCR               *float64 `json:"lcr"`
	TerminalBenchHard *float64 `json:"terminalbench_hard"`
	Tau2              *float64 `json:"tau2"`
}

// Pricing holds USD prices per million tokens
type Pricing struct {
	Price1MBlended3To1  *float64 `json:"price_1m_blended_3_to_1"`
	Price1MInputTokens  *float64 `json:"price_1m_input_tokens"`
	Price1MOutputTokens *float64 `json:"price_1m_output_tokens"`
}

// FetchResult is a decoded response plus the raw entries it came from
type FetchResult struct {
	Models             []Model
	Raw                []json.RawMessage
	RateLimitRemaining string
}

// envelope is the top-level response shape
type envelope struct {
	Data json.RawMessage `json:"data"`
}
