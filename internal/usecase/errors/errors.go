package errors

import "errors"

// Pipeline errors. Recognition outcomes are absorbed by the transcriber,
// everything else is absorbed by the pipeline fallback.
var (
	ErrInputNotFound      = errors.New("input video not found")
	ErrNoAudioTrack       = errors.New("video has no audio track")
	ErrUnreadableMedia    = errors.New("media could not be opened or decoded")
	ErrRecognitionNoMatch = errors.New("speech recognizer could not map audio to text")
	ErrRecognitionService = errors.New("speech recognition service call failed")
	ErrDetector           = errors.New("face detector failed")
)

// Upload errors
var (
	ErrMissingVideo         = errors.New("missing video upload")
	ErrUnsupportedVideoType = errors.New("unsupported video type")
	ErrUploadTooLarge       = errors.New("upload exceeds size limit")
	ErrAnalysisBusy         = errors.New("too many analyses in progress")
)

// Analysis record errors
var (
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// Question errors
var (
	ErrInvalidJobRole     = errors.New("invalid job role")
	ErrQuestionsMalformed = errors.New("question response is not a JSON array of strings")
	ErrQuestionsGenerator = errors.New("question generator unavailable")
)
