package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/oceanwatch/hazard-api/internal/apperr"
	"github.com/oceanwatch/hazard-api/internal/config"
	"github.com/oceanwatch/hazard-api/internal/middleware"
	"github.com/oceanwatch/hazard-api/internal/model"
	"github.com/oceanwatch/hazard-api/internal/queue"
	"github.com/oceanwatch/hazard-api/internal/repository"
	queue_publisher "github.com/oceanwatch/hazard-api/internal/service"
	"github.com/oceanwatch/hazard-api/internal/storage"
)

// ReportHandler serves hazard report submission, listing and
// validation.
type ReportHandler struct {
	Cfg     config.Config
	Reports *repository.ReportRepo
	Blobs   storage.BlobStore
}

func NewReportHandler(cfg config.Config, reports *repository.ReportRepo, blobs storage.BlobStore) *ReportHandler {
	return &ReportHandler{Cfg: cfg, Reports: reports, Blobs: blobs}
}

// Create submits a hazard report from a multipart form. Media files are
// uploaded to the blob store first; the report plus media rows are then
// persisted in one pass and a report.submitted event is published
// best-effort. A broker outage never fails the submission.
func (h *ReportHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("You are not logged in. Please log in to get access.")
	}

	eventType := strings.TrimSpace(c.FormValue("event_type"))
	description := strings.TrimSpace(c.FormValue("description"))
	if eventType == "" || description == "" {
		return apperr.BadRequest("event_type and description are required")
	}
	lat, err := strconv.ParseFloat(c.FormValue("latitude"), 64)
	if err != nil {
		return apperr.BadRequest("latitude must be a number")
	}
	lng, err := strconv.ParseFloat(c.FormValue("longitude"), 64)
	if err != nil {
		return apperr.BadRequest("longitude must be a number")
	}
	category := strings.TrimSpace(c.FormValue("report_category"))
	sourceType := strings.TrimSpace(c.FormValue("source_type"))
	if category == "" || sourceType == "" {
		return apperr.BadRequest("report_category and source_type are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	media, err := h.uploadMedia(ctx, c, u.ID)
	if err != nil {
		return err
	}

	rep := model.HazardReport{
		UserID:              u.ID,
		EventType:           eventType,
		Description:         description,
		Latitude:            lat,
		Longitude:           lng,
		LocationDescription: optional(strings.TrimSpace(c.FormValue("location_description"))),
		ReportCategory:      category,
		SourceType:          sourceType,
		ReportStatus:        model.ReportUnverified,
		SubmissionTime:      time.Now().UTC(),
		Media:               media,
	}
	if err := h.Reports.Create(ctx, &rep); err != nil {
		return apperr.Internal("could not create report")
	}

	event := queue.ReportSubmittedEvent{
		ReportID:       rep.ID,
		UserID:         rep.UserID,
		EventType:      rep.EventType,
		ReportCategory: rep.ReportCategory,
		Latitude:       rep.Latitude,
		Longitude:      rep.Longitude,
		MediaCount:     len(rep.Media),
		SubmittedAt:    rep.SubmissionTime.Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishReportSubmitted(pubCtx, h.Cfg.AMQPURL, event)
	}()

	return c.JSON(http.StatusCreated, rep)
}

// List returns all reports newest first with their media and reporter
// identity. The route sits behind the Redis response cache.
func (h *ReportHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reports, err := h.Reports.List(ctx)
	if err != nil {
		return apperr.Internal("could not list reports")
	}
	return c.JSON(http.StatusOK, reports)
}

// Validate marks a report as validated by the calling official or
// analyst. The route is role-gated; citizens never reach this handler.
func (h *ReportHandler) Validate(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return apperr.Unauthorized("You are not logged in. Please log in to get access.")
	}
	reportID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return apperr.BadRequest("invalid report id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Reports.Validate(ctx, reportID, u.ID, time.Now().UTC())
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.NotFound("Report not found")
		}
		return apperr.Internal("could not validate report")
	}
	return c.JSON(http.StatusOK, rep)
}

// uploadMedia stores every file in the "media" multipart field and
// returns the media rows to persist. Only images and videos are
// accepted, matching what the mobile clients can produce.
func (h *ReportHandler) uploadMedia(ctx context.Context, c echo.Context, userID uint64) ([]model.MediaUpload, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil // no files attached
	}
	files := form.File["media"]
	if len(files) == 0 {
		return nil, nil
	}

	baseID := "report_" + uuid.NewString()
	media := make([]model.MediaUpload, 0, len(files))
	for i, fh := range files {
		data, contentType, err := readUpload(fh)
		if err != nil {
			return nil, apperr.Internal("could not read uploaded file")
		}
		var mediaType string
		switch {
		case strings.HasPrefix(contentType, "image"):
			mediaType = model.MediaImage
		case strings.HasPrefix(contentType, "video"):
			mediaType = model.MediaVideo
		default:
			return nil, apperr.BadRequest("Not an image or video! Please upload only images or videos.")
		}
		name := baseID + "_" + strconv.Itoa(i) + "_" + fh.Filename
		url, err := h.Blobs.Upload(ctx, storage.HazardMediaBucket, name, data, contentType)
		if err != nil {
			return nil, apperr.Internal("File upload failed")
		}
		media = append(media, model.MediaUpload{
			UserID:    userID,
			MediaType: mediaType,
			FilePath:  url,
		})
	}
	return media, nil
}
