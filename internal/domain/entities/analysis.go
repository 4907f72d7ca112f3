package entities

// Sentiment is the coarse communication label derived from verbal metrics.
type Sentiment string

const (
	SentimentFastExcited      Sentiment = "Fast/Excited"
	SentimentSlowThoughtful   Sentiment = "Slow/Thoughtful"
	SentimentNervousUncertain Sentiment = "Nervous/Uncertain"
	SentimentConfidentCalm    Sentiment = "Confident/Calm"
)

// Sentinel transcripts substituted when recognition yields no usable text.
const (
	TranscriptNoMatch      = "Could not understand audio"
	TranscriptServiceError = "Speech recognition service error"
)

// DemoTranscript is the placeholder transcript of the canned result.
const DemoTranscript = "This is a demonstration transcript. The real analysis encountered an error, but you can see how the feedback would look with actual data."

// AnalysisResult is the communication-feedback report for one video.
// It is built once per analysis and passed around by value.
type AnalysisResult struct {
	FillerWordCount      int       `json:"filler_word_count"`
	SpeakingPace         int       `json:"speaking_pace"`
	EyeContactPercentage float64   `json:"eye_contact_percentage"`
	Sentiment            Sentiment `json:"sentiment"`
	Transcript           string    `json:"transcript"`
}

// CannedResult returns the fixed demonstration result used on fallback.
func CannedResult() AnalysisResult {
	return AnalysisResult{
		FillerWordCount:      8,
		SpeakingPace:         145,
		EyeContactPercentage: 78.5,
		Sentiment:            SentimentConfidentCalm,
		Transcript:           DemoTranscript,
	}
}

// IsSentinelTranscript reports whether text is one of the recognition sentinels.
func IsSentinelTranscript(text string) bool {
	return text == TranscriptNoMatch || text == TranscriptServiceError
}

// Stage names a state of the analysis pipeline.
type Stage string

const (
	StageValidating             Stage = "validating"
	StageExtractingAudio        Stage = "extracting_audio"
	StageTranscribing           Stage = "transcribing"
	StageComputingVerbalMetrics Stage = "computing_verbal_metrics"
	StageSamplingVisual         Stage = "sampling_visual"
	StageClassifying            Stage = "classifying"
	StageAssembled              Stage = "assembled"
	StageFallback               Stage = "fallback"
)

// OutcomeStatus tells real results apart from canned ones.
type OutcomeStatus string

const (
	OutcomeOK       OutcomeStatus = "ok"
	OutcomeDegraded OutcomeStatus = "degraded"
)

// Outcome wraps the result of one pipeline run. A degraded outcome carries
// the canned result plus the stage and error that caused the fallback.
type Outcome struct {
	Result      AnalysisResult
	Status      OutcomeStatus
	FailedStage Stage
	Err         error
}

// Degraded reports whether the outcome holds the canned result.
func (o Outcome) Degraded() bool {
	return o.Status == OutcomeDegraded
}

// Reason returns the failure text of a degraded outcome, or "".
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// OKOutcome wraps a computed result.
func OKOutcome(result AnalysisResult) Outcome {
	return Outcome{Result: result, Status: OutcomeOK}
}

// DegradedOutcome wraps the canned result with the failing stage.
func DegradedOutcome(stage Stage, err error) Outcome {
	return Outcome{
		Result:      CannedResult(),
		Status:      OutcomeDegraded,
		FailedStage: stage,
		Err:         err,
	}
}
