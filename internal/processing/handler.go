package processing

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"csvreporter/internal/event"
	"csvreporter/internal/logger"
	pkgerrors "csvreporter/pkg/errors"
)

// Handler exposes the pipeline on the webhook contract: a single POST
// endpoint at the root path that always answers with a classified status
// body, never with an unhandled fault.
type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/", h.HandleEvent)
}

func (h *Handler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()

	var envelope event.PushEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.logger.WarnwCtx(ctx, "Request body is not a valid envelope", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  StatusError,
			Message: "Invalid push message format",
		})
		return
	}

	outcome, err := h.service.Process(ctx, &envelope)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if outcome.Status == StatusSkipped {
		c.JSON(http.StatusOK, SkippedResponse{
			Status:  StatusSkipped,
			Message: fmt.Sprintf("File %s already processed", outcome.FileName),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Status:     StatusSuccess,
		InputFile:  outcome.InputFile,
		OutputFile: outcome.OutputFile,
		MetricsSummary: MetricsSummary{
			RowCount:    outcome.RowCount,
			ColumnCount: outcome.ColumnCount,
		},
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	status := pkgerrors.ToHTTPStatus(err)

	if pkgerrors.IsValidation(err) {
		h.logger.WarnwCtx(ctx, "Event rejected", "error", err)
	} else {
		h.logger.ErrorwCtx(ctx, "Event processing failed",
			"error", err,
			"failed_write", pkgerrors.FailedWrite(err),
		)
	}

	c.JSON(status, ErrorResponse{
		Status:  StatusError,
		Message: pkgerrors.ClientMessage(err),
	})
}
