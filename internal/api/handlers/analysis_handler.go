package handlers

import (
	"errors"

	"farmxchain/domain"
	"farmxchain/internal/api/presenters"
	"farmxchain/internal/utils/storage"
	"farmxchain/pkg/analysis"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

type (
	AnalysisHandler interface {
		AnalyzeImage(c *fiber.Ctx) error
	}

	analysisHandler struct {
		analysisService analysis.AnalysisService
		s3              storage.AwsS3
		validator       *validator.Validate
	}
)

func NewAnalysisHandler(analysisService analysis.AnalysisService, s3 storage.AwsS3, validator *validator.Validate) AnalysisHandler {
	return &analysisHandler{
		analysisService: analysisService,
		s3:              s3,
		validator:       validator,
	}
}

func (h *analysisHandler) AnalyzeImage(c *fiber.Ctx) error {
	req := new(domain.AnalyzeImageRequest)
	req.SubjectLabel = c.FormValue("subject_label")

	file, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	req.Image = file

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAnalyzeImage, err)
	}

	result, err := h.analysisService.AnalyzeUpload(c.Context(), req.SubjectLabel, req.Image)
	if err != nil {
		return presenters.ErrorResponseWithData(c, analysisStatus(err), domain.MessageFailedAnalyzeImage, err, domain.AnalyzeImageFailure{
			Kind:        domain.AnalysisErrorKind(err),
			Placeholder: domain.PlaceholderAnalysis(req.SubjectLabel),
		})
	}

	res := domain.AnalyzeImageResponse{Result: result}
	if h.s3 != nil && h.s3.Enabled() {
		objectKey, err := h.s3.UploadFile("analysis-"+uuid.NewString(), req.Image, "analyses", storage.AllowImage...)
		if err != nil {
			log.Warnf("archive analyzed image: %v", err)
		} else {
			res.ImageURL = h.s3.GetPublicLinkKey(objectKey)
		}
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessAnalyzeImage)
}

func analysisStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrEncoding), errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrTransientService):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrMalformedResponse):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}
