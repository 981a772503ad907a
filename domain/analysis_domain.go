package domain

import (
	"errors"
	"mime/multipart"
)

var (
	MessageSuccessAnalyzeImage = "image analyzed successfully"
	MessageFailedAnalyzeImage  = "AI analysis failed. Try again later."

	// ErrEncoding means the image could not be read or encoded. Never retried.
	ErrEncoding = errors.New("image encoding failed")
	// ErrTransientService means the inference endpoint kept throttling or failing
	// at the transport level until the retry budget ran out, or answered with a
	// non-retryable error status.
	ErrTransientService = errors.New("inference service unavailable")
	// ErrMalformedResponse means the model output was missing, unparsable or
	// failed schema validation. Never retried.
	ErrMalformedResponse = errors.New("malformed inference response")
)

const (
	AnalysisErrorEncoding  = "encoding"
	AnalysisErrorTransient = "transient_service"
	AnalysisErrorMalformed = "malformed_response"
	AnalysisErrorUnknown   = "unknown"
)

type (
	ImageAsset struct {
		Data      []byte
		MediaType string
	}

	AnalysisRequest struct {
		SubjectLabel string
		Image        ImageAsset
	}

	AnalysisResult struct {
		SubjectName     string  `json:"subjectName"`
		FreshnessStatus string  `json:"freshnessStatus"`
		QualityGrade    string  `json:"qualityGrade"`
		Confidence      float64 `json:"confidence"`
		Justification   string  `json:"justification"`
	}

	AnalyzeImageRequest struct {
		SubjectLabel string                `json:"subject_label" form:"subject_label" validate:"required,max=100"`
		Image        *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	AnalyzeImageResponse struct {
		Result   AnalysisResult `json:"result"`
		ImageURL string         `json:"image_url,omitempty"`
	}

	AnalyzeImageFailure struct {
		Kind        string         `json:"kind"`
		Placeholder AnalysisResult `json:"placeholder"`
	}
)

// AnalysisErrorKind names which of the pipeline failure kinds err belongs to.
func AnalysisErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrEncoding):
		return AnalysisErrorEncoding
	case errors.Is(err, ErrTransientService):
		return AnalysisErrorTransient
	case errors.Is(err, ErrMalformedResponse):
		return AnalysisErrorMalformed
	default:
		return AnalysisErrorUnknown
	}
}

// PlaceholderAnalysis is the card dashboards show after a failed analysis.
func PlaceholderAnalysis(subjectLabel string) AnalysisResult {
	return AnalysisResult{
		SubjectName:     subjectLabel,
		FreshnessStatus: "N/A",
		QualityGrade:    "N/A",
		Confidence:      0,
		Justification:   "Analysis unavailable.",
	}
}
