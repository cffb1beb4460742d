package handler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/interview-analyzer/internal/dto"
	"github.com/fadilmartias/interview-analyzer/internal/middleware"
	"github.com/fadilmartias/interview-analyzer/internal/transcript"
	"github.com/fadilmartias/interview-analyzer/internal/usecase"
	"github.com/fadilmartias/interview-analyzer/internal/util"
	"github.com/gofiber/fiber/v2"
)

type AnalysisHandler struct {
	uc *usecase.AnalysisUsecase
}

func NewAnalysisHandler(uc *usecase.AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

func (h *AnalysisHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/analysis", middleware.RateLimiter(1, 4*time.Second), h.Analyze)
	app.Get("/analysis", h.Analyze)
}

// Analyze accepts the transcript and job description as JSON body, query
// parameters, or a multipart form. In multipart form the job description
// may be uploaded as a .pdf or .txt file and the transcript as a .txt file.
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return err
	}

	if strings.TrimSpace(req.Transcript) == "" {
		formErr := util.NewFormError("transcript is required", map[string]string{
			"transcript": "required",
		})
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: formErr.Message,
			Details: formErr.Errors,
		}, formErr)
	}

	result, err := h.uc.Analyze(c.Context(), req.Transcript, req.JobDescription)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingJobDescription):
			formErr := util.NewFormError("job description is required", map[string]string{
				"job_description": "required",
			})
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: formErr.Message,
				Details: formErr.Errors,
			}, err)
		case errors.Is(err, transcript.ErrNoTurns):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "transcript could not be parsed into speaker turns",
			}, err)
		default:
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadGateway,
				Message: "failed to analyze transcript",
			}, err)
		}
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success analyze transcript",
		Data:    result,
	})
}

func (h *AnalysisHandler) parseRequest(c *fiber.Ctx) (*dto.AnalysisRequest, error) {
	req := &dto.AnalysisRequest{}

	switch {
	case c.Method() == fiber.MethodGet:
		req.Transcript = c.Query("transcript")
		req.JobDescription = c.Query("job_description")
	case strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm):
		req.Transcript = c.FormValue("transcript")
		req.JobDescription = c.FormValue("job_description")

		if req.Transcript == "" {
			content, err := h.processFile(c, "transcript_file", ".txt")
			if err != nil {
				return nil, err
			}
			req.Transcript = content
		}
		if req.JobDescription == "" {
			content, err := h.processFile(c, "job_description_file", ".pdf", ".txt")
			if err != nil {
				return nil, err
			}
			req.JobDescription = content
		}
	default:
		if err := c.BodyParser(req); err != nil {
			return nil, util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "invalid request body",
			}, err)
		}
	}

	return req, nil
}

// processFile reads an uploaded form file, extracting text from PDFs via
// the text layer. Returns an empty string when the field is absent so the
// caller can fall through to its own validation.
func (h *AnalysisHandler) processFile(c *fiber.Ctx, fieldName string, allowedExts ...string) (string, error) {
	file, err := c.FormFile(fieldName)
	if err != nil {
		return "", nil
	}

	if file.Size > 5*1024*1024 {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("%s file size is too large (max 5MB)", fieldName),
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, allowedExt := range allowedExts {
		if ext == allowedExt {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("unsupported %s file type", fieldName),
		})
	}

	switch ext {
	case ".pdf":
		tmp, err := os.CreateTemp("", "upload-*.pdf")
		if err != nil {
			return "", util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: fmt.Sprintf("cannot save %s file", fieldName),
			}, err)
		}
		tmpPath := tmp.Name()
		tmp.Close()
		defer os.Remove(tmpPath)

		if err := c.SaveFile(file, tmpPath); err != nil {
			return "", util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: fmt.Sprintf("cannot save %s file", fieldName),
			}, err)
		}

		content, err := util.ExtractPDFText(tmpPath)
		if err != nil {
			return "", util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: fmt.Sprintf("failed to extract %s text", fieldName),
			}, err)
		}
		return content, nil
	default:
		src, err := file.Open()
		if err != nil {
			return "", util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: fmt.Sprintf("cannot read %s file", fieldName),
			}, err)
		}
		defer src.Close()

		content, err := io.ReadAll(src)
		if err != nil {
			return "", util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: fmt.Sprintf("cannot read %s file", fieldName),
			}, err)
		}
		return string(content), nil
	}
}
