package app

import (
	"fmt"
	"strings"

	"campusnest/pkg/domain"
)

// SubmitReport files an abuse report against a listing. Duplicate reports
// from the same user are allowed; every report starts pending.
func (a *App) SubmitReport(sess domain.Session, listingID int64, landlordID, reason string) (domain.Report, error) {
	if !can(sess, ActionSubmitReport, "") {
		return domain.Report{}, ErrForbidden
	}
	if listingID <= 0 {
		return domain.Report{}, &ValidationError{Field: "listingId", Message: "listingId is required"}
	}
	if strings.TrimSpace(landlordID) == "" {
		return domain.Report{}, &ValidationError{Field: "landlordId", Message: "landlordId is required"}
	}
	if strings.TrimSpace(reason) == "" {
		return domain.Report{}, &ValidationError{Field: "reason", Message: "reason is required"}
	}
	report := domain.Report{
		ListingID:  listingID,
		LandlordID: strings.TrimSpace(landlordID),
		ReportedBy: sess.UserID(),
		Reason:     strings.TrimSpace(reason),
	}
	created, err := a.data.InsertReport(sess.Principal.AccessToken, report)
	if err != nil {
		return domain.Report{}, fmt.Errorf("submit report: %w", err)
	}
	return created, nil
}

// Reports lists reports for review, optionally filtered by status.
func (a *App) Reports(sess domain.Session, status domain.ReportStatus) ([]domain.Report, error) {
	if !can(sess, ActionListReports, "") {
		return nil, ErrForbidden
	}
	switch status {
	case "", domain.ReportPending, domain.ReportReviewed, domain.ReportResolved:
	default:
		return nil, &ValidationError{Field: "status", Message: "unknown report status"}
	}
	return a.data.Reports(status)
}

// UpdateReportStatus overwrites a report's status. Transitions are not
// restricted beyond the known status set; review order is a moderation
// convention, not a server rule.
func (a *App) UpdateReportStatus(sess domain.Session, id int64, status domain.ReportStatus) error {
	if !can(sess, ActionResolveReport, "") {
		return ErrForbidden
	}
	if status != domain.ReportReviewed && status != domain.ReportResolved {
		return &ValidationError{Field: "status", Message: "status must be reviewed or resolved"}
	}
	if err := a.data.UpdateReportStatus(id, status); err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	return nil
}
