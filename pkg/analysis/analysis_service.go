package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"farmxchain/domain"
	"farmxchain/internal/metrics"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	_ "golang.org/x/image/webp"
)

const promptTemplate = "Analyze the provided image of %s for its quality. " +
	"Determine its freshness (e.g. Fresh, Stale, Ripe), assign a quality grade (A, B, C or D), " +
	"estimate your confidence as a number between 0 and 1, and give a brief justification. " +
	"Respond ONLY with a JSON object that follows the response schema."

// ResultFields is the declared field order of the structured result.
var ResultFields = []string{"subjectName", "freshnessStatus", "qualityGrade", "confidence", "justification"}

type (
	AnalysisService interface {
		Analyze(ctx context.Context, subjectLabel string, img domain.ImageAsset) (domain.AnalysisResult, error)
		AnalyzeUpload(ctx context.Context, subjectLabel string, file *multipart.FileHeader) (domain.AnalysisResult, error)
	}

	analysisService struct {
		client    GeminiClient
		validator *validator.Validate
	}

	modelOutput struct {
		SubjectName     string   `json:"subjectName" validate:"required"`
		FreshnessStatus string   `json:"freshnessStatus" validate:"required"`
		QualityGrade    string   `json:"qualityGrade" validate:"required"`
		Confidence      *float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
		Justification   string   `json:"justification" validate:"required"`
	}
)

func NewAnalysisService(client GeminiClient, validator *validator.Validate) AnalysisService {
	return &analysisService{
		client:    client,
		validator: validator,
	}
}

func (s *analysisService) Analyze(ctx context.Context, subjectLabel string, img domain.ImageAsset) (domain.AnalysisResult, error) {
	result, err := s.analyze(ctx, subjectLabel, img)
	if err != nil {
		metrics.AnalysisResultsTotal.WithLabelValues(domain.AnalysisErrorKind(err)).Inc()
		log.Errorf("image analysis for %q failed: %v", subjectLabel, err)
		return domain.AnalysisResult{}, err
	}
	metrics.AnalysisResultsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *analysisService) analyze(ctx context.Context, subjectLabel string, img domain.ImageAsset) (domain.AnalysisResult, error) {
	subjectLabel = strings.TrimSpace(subjectLabel)
	if subjectLabel == "" {
		return domain.AnalysisResult{}, fmt.Errorf("%w: subject label is required", domain.ErrEncoding)
	}

	mediaType, encoded, err := EncodeImage(img)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	text, err := s.client.GenerateContent(ctx, BuildRequest(subjectLabel, mediaType, encoded))
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	return s.ParseResult(text)
}

func (s *analysisService) AnalyzeUpload(ctx context.Context, subjectLabel string, file *multipart.FileHeader) (domain.AnalysisResult, error) {
	img, err := ReadUpload(file)
	if err != nil {
		metrics.AnalysisResultsTotal.WithLabelValues(domain.AnalysisErrorEncoding).Inc()
		return domain.AnalysisResult{}, err
	}
	return s.Analyze(ctx, subjectLabel, img)
}

// ReadUpload loads a multipart image and resolves its media type from the form
// header, falling back to the file extension.
func ReadUpload(file *multipart.FileHeader) (domain.ImageAsset, error) {
	if file == nil {
		return domain.ImageAsset{}, fmt.Errorf("%w: no file", domain.ErrEncoding)
	}
	f, err := file.Open()
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}

	mediaType := file.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(file.Filename)) {
		case ".png":
			mediaType = "image/png"
		case ".jpg", ".jpeg":
			mediaType = "image/jpeg"
		case ".gif":
			mediaType = "image/gif"
		case ".webp":
			mediaType = "image/webp"
		default:
			mediaType = ""
		}
	}
	return domain.ImageAsset{Data: data, MediaType: mediaType}, nil
}

// EncodeImage checks that img decodes as an image and returns its media type
// and base64 payload.
func EncodeImage(img domain.ImageAsset) (string, string, error) {
	if len(img.Data) == 0 {
		return "", "", fmt.Errorf("%w: empty image", domain.ErrEncoding)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err != nil {
		return "", "", fmt.Errorf("%w: unreadable image: %v", domain.ErrEncoding, err)
	}

	mediaType := strings.ToLower(strings.TrimSpace(img.MediaType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	if mediaType == "" {
		mediaType = mimetype.Detect(img.Data).String()
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return "", "", fmt.Errorf("%w: unsupported media type %q", domain.ErrEncoding, mediaType)
	}

	return mediaType, base64.StdEncoding.EncodeToString(img.Data), nil
}

// BuildRequest assembles the instruction, the inline image and the response schema.
func BuildRequest(subjectLabel, mediaType, encodedImage string) GenerateContentRequest {
	return GenerateContentRequest{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{Text: fmt.Sprintf(promptTemplate, subjectLabel)},
					{InlineData: &inlineData{MimeType: mediaType, Data: encodedImage}},
				},
			},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   resultSchema(),
		},
	}
}

func resultSchema() *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]schema{
			"subjectName":     {Type: "STRING"},
			"freshnessStatus": {Type: "STRING"},
			"qualityGrade":    {Type: "STRING"},
			"confidence":      {Type: "NUMBER", Format: "float"},
			"justification":   {Type: "STRING"},
		},
		PropertyOrdering: ResultFields,
		Required:         ResultFields,
	}
}

// ParseResult decodes and validates the model's structured output.
func (s *analysisService) ParseResult(text string) (domain.AnalysisResult, error) {
	var out modelOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if out.Confidence == nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: confidence missing", domain.ErrMalformedResponse)
	}
	if err := s.validator.Struct(out); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	return domain.AnalysisResult{
		SubjectName:     out.SubjectName,
		FreshnessStatus: out.FreshnessStatus,
		QualityGrade:    out.QualityGrade,
		Confidence:      *out.Confidence,
		Justification:   out.Justification,
	}, nil
}
