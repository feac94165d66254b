package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanwatch/hazard-api/internal/model"
	"github.com/oceanwatch/hazard-api/internal/repository"
)

func newReportTest(t *testing.T) (*ReportHandler, sqlmock.Sqlmock, *fakeBlob, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	blob := newFakeBlob()
	h := NewReportHandler(testConfig(), repository.NewReportRepo(db), blob)
	return h, mock, blob, func() { _ = db.Close() }
}

func reportForm(t *testing.T, fields map[string]string, mediaNames map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, contentType := range mediaNames {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="media"; filename="`+name+`"`)
		hdr.Set("Content-Type", contentType)
		fw, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = fw.Write([]byte("media-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func reportFields() map[string]string {
	return map[string]string{
		"event_type":      "High Waves",
		"description":     "Waves breaching the sea wall near the harbor",
		"latitude":        "13.0827",
		"longitude":       "80.2707",
		"report_category": "Coastal",
		"source_type":     "Citizen Report",
	}
}

func TestCreateReportWithMedia(t *testing.T) {
	h, mock, blob, cleanup := newReportTest(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO hazard_reports").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO media_uploads").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	e := echo.New()
	rec := httptest.NewRecorder()
	req := reportForm(t, reportFields(), map[string]string{"wave.jpg": "image/jpeg"})
	c := authedContext(e, req, rec, &model.User{ID: 7, Role: model.RoleCitizen})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var rep model.HazardReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, uint64(11), rep.ID)
	assert.Equal(t, uint64(7), rep.UserID)
	assert.Equal(t, model.ReportUnverified, rep.ReportStatus)
	require.Len(t, rep.Media, 1)
	assert.Equal(t, model.MediaImage, rep.Media[0].MediaType)
	assert.Contains(t, rep.Media[0].FilePath, "https://blob.example/hazard-media/report_")

	require.Len(t, blob.uploads, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReportRejectsNonMediaFile(t *testing.T) {
	h, _, _, cleanup := newReportTest(t)
	defer cleanup()

	e := echo.New()
	req := reportForm(t, reportFields(), map[string]string{"malware.exe": "application/octet-stream"})
	c := authedContext(e, req, httptest.NewRecorder(), &model.User{ID: 7, Role: model.RoleCitizen})
	appErr := appErrOf(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestCreateReportInvalidCoordinates(t *testing.T) {
	h, _, _, cleanup := newReportTest(t)
	defer cleanup()

	fields := reportFields()
	fields["latitude"] = "north-ish"

	e := echo.New()
	req := reportForm(t, fields, nil)
	c := authedContext(e, req, httptest.NewRecorder(), &model.User{ID: 7, Role: model.RoleCitizen})
	appErr := appErrOf(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestListReports(t *testing.T) {
	h, mock, _, cleanup := newReportTest(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectQuery("FROM hazard_reports h").
		WillReturnRows(sqlmock.NewRows([]string{
			"report_id", "user_id", "event_type", "description", "latitude", "longitude",
			"location_description", "report_category", "source_type", "report_status",
			"submission_time", "validated_by", "validated_time", "name", "profile_photo",
		}).AddRow(
			11, 7, "High Waves", "Waves breaching the sea wall", 13.0827, 80.2707,
			nil, "Coastal", "Citizen Report", model.ReportUnverified,
			now, nil, nil, "Jane Doe", nil,
		))
	mock.ExpectQuery("FROM media_uploads WHERE report_id IN").
		WillReturnRows(sqlmock.NewRows([]string{"media_id", "report_id", "user_id", "media_type", "file_path"}).
			AddRow(21, 11, 7, model.MediaImage, "https://blob.example/hazard-media/x.jpg"))

	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	c := authedContext(e, req, rec, &model.User{ID: 7, Role: model.RoleCitizen})
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reports []model.HazardReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "Jane Doe", reports[0].ReporterName)
	require.Len(t, reports[0].Media, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateReport(t *testing.T) {
	h, mock, _, cleanup := newReportTest(t)
	defer cleanup()

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE hazard_reports SET report_status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM hazard_reports WHERE report_id=").
		WillReturnRows(sqlmock.NewRows([]string{
			"report_id", "user_id", "event_type", "description", "latitude", "longitude",
			"location_description", "report_category", "source_type", "report_status",
			"submission_time", "validated_by", "validated_time",
		}).AddRow(
			11, 7, "High Waves", "Waves breaching the sea wall", 13.0827, 80.2707,
			nil, "Coastal", "Citizen Report", model.ReportValidated,
			now, 3, now,
		))

	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reports/11/validate", nil)
	c := authedContext(e, req, rec, &model.User{ID: 3, Role: model.RoleOfficial})
	c.SetParamNames("id")
	c.SetParamValues("11")
	require.NoError(t, h.Validate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var rep model.HazardReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, model.ReportValidated, rep.ReportStatus)
	require.NotNil(t, rep.ValidatedBy)
	assert.Equal(t, uint64(3), *rep.ValidatedBy)
}

func TestValidateReportNotFound(t *testing.T) {
	h, mock, _, cleanup := newReportTest(t)
	defer cleanup()

	mock.ExpectExec("UPDATE hazard_reports SET report_status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM hazard_reports WHERE report_id=").
		WillReturnError(sql.ErrNoRows)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reports/999/validate", nil)
	c := authedContext(e, req, httptest.NewRecorder(), &model.User{ID: 3, Role: model.RoleOfficial})
	c.SetParamNames("id")
	c.SetParamValues("999")
	appErr := appErrOf(t, h.Validate(c))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}
