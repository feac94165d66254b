package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/oceanwatch/hazard-api/internal/model"
)

// ReportRepo persists hazard reports and their media attachments.
type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

// Create inserts the report and its media rows in one transaction,
// filling in assigned IDs. The caller's submission time is stored as
// given so the persisted row matches what the response echoes. The
// blob uploads happened before this call, so a rollback leaves
// orphaned blobs at worst, never a report pointing at missing media.
func (r *ReportRepo) Create(ctx context.Context, rep *model.HazardReport) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO hazard_reports (user_id,event_type,description,latitude,longitude,
		  location_description,report_category,source_type,report_status,submission_time)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rep.UserID, rep.EventType, rep.Description, rep.Latitude, rep.Longitude,
		rep.LocationDescription, rep.ReportCategory, rep.SourceType, rep.ReportStatus,
		rep.SubmissionTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)

	for i := range rep.Media {
		m := &rep.Media[i]
		m.ReportID = rep.ID
		m.UserID = rep.UserID
		res, err := tx.ExecContext(ctx,
			"INSERT INTO media_uploads (report_id,user_id,media_type,file_path) VALUES (?,?,?,?)",
			m.ReportID, m.UserID, m.MediaType, m.FilePath)
		if err != nil {
			return err
		}
		if mid, err := res.LastInsertId(); err == nil {
			m.ID = uint64(mid)
		}
	}
	return tx.Commit()
}

// List returns all reports newest first, with reporter name/photo from
// the users table and media attachments.
func (r *ReportRepo) List(ctx context.Context) ([]model.HazardReport, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT h.report_id,h.user_id,h.event_type,h.description,h.latitude,h.longitude,
		   h.location_description,h.report_category,h.source_type,h.report_status,
		   h.submission_time,h.validated_by,h.validated_time,u.name,u.profile_photo
		 FROM hazard_reports h
		 JOIN users u ON u.user_id = h.user_id
		 ORDER BY h.submission_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.HazardReport
	ids := []any{}
	for rows.Next() {
		var rep model.HazardReport
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.EventType, &rep.Description,
			&rep.Latitude, &rep.Longitude, &rep.LocationDescription,
			&rep.ReportCategory, &rep.SourceType, &rep.ReportStatus,
			&rep.SubmissionTime, &rep.ValidatedBy, &rep.ValidatedTime,
			&rep.ReporterName, &rep.ReporterPhoto); err != nil {
			return nil, err
		}
		rep.Media = []model.MediaUpload{}
		reports = append(reports, rep)
		ids = append(ids, rep.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return []model.HazardReport{}, nil
	}

	media, err := r.mediaFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if ms, ok := media[reports[i].ID]; ok {
			reports[i].Media = ms
		}
	}
	return reports, nil
}

func (r *ReportRepo) mediaFor(ctx context.Context, reportIDs []any) (map[uint64][]model.MediaUpload, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(reportIDs)), ",")
	rows, err := r.DB.QueryContext(ctx,
		"SELECT media_id,report_id,user_id,media_type,file_path FROM media_uploads WHERE report_id IN ("+placeholders+")",
		reportIDs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64][]model.MediaUpload)
	for rows.Next() {
		var m model.MediaUpload
		if err := rows.Scan(&m.ID, &m.ReportID, &m.UserID, &m.MediaType, &m.FilePath); err != nil {
			return nil, err
		}
		out[m.ReportID] = append(out[m.ReportID], m)
	}
	return out, rows.Err()
}

// Validate marks the report as validated by the given official and
// returns the updated row. sql.ErrNoRows signals an unknown report id.
func (r *ReportRepo) Validate(ctx context.Context, reportID, validatorID uint64, at time.Time) (model.HazardReport, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE hazard_reports SET report_status=?, validated_by=?, validated_time=? WHERE report_id=?",
		model.ReportValidated, validatorID, at, reportID)
	if err != nil {
		return model.HazardReport{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "no such report" from "already validated by the
		// same official at the same instant"; the latter is unreachable
		// in practice, so zero rows means not found.
		var exists int
		probeErr := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM hazard_reports WHERE report_id=? LIMIT 1", reportID).Scan(&exists)
		if probeErr == sql.ErrNoRows {
			return model.HazardReport{}, sql.ErrNoRows
		}
	}

	var rep model.HazardReport
	err = r.DB.QueryRowContext(ctx,
		`SELECT report_id,user_id,event_type,description,latitude,longitude,
		   location_description,report_category,source_type,report_status,
		   submission_time,validated_by,validated_time
		 FROM hazard_reports WHERE report_id=? LIMIT 1`, reportID).
		Scan(&rep.ID, &rep.UserID, &rep.EventType, &rep.Description,
			&rep.Latitude, &rep.Longitude, &rep.LocationDescription,
			&rep.ReportCategory, &rep.SourceType, &rep.ReportStatus,
			&rep.SubmissionTime, &rep.ValidatedBy, &rep.ValidatedTime)
	return rep, err
}
