package dataclient

import (
	"time"

	"campusnest/pkg/domain"
)

type reportRow struct {
	ID         int64     `json:"id"`
	ListingID  int64     `json:"listing_id"`
	LandlordID string    `json:"landlord_id"`
	ReportedBy string    `json:"reported_by"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r reportRow) toDomain() domain.Report {
	return domain.Report{
		ID:         r.ID,
		ListingID:  r.ListingID,
		LandlordID: r.LandlordID,
		ReportedBy: r.ReportedBy,
		Reason:     r.Reason,
		Status:     domain.ReportStatus(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}

// InsertReport files a report under the reporter's own access token and
// returns the created row.
func (c *Client) InsertReport(token string, report domain.Report) (domain.Report, error) {
	row := map[string]any{
		"listing_id":  report.ListingID,
		"landlord_id": report.LandlordID,
		"reported_by": report.ReportedBy,
		"reason":      report.Reason,
		"status":      string(domain.ReportPending),
	}
	var rows []reportRow
	if err := c.insertRows("reports", token, row, &rows); err != nil {
		return domain.Report{}, err
	}
	if len(rows) == 0 {
		return domain.Report{}, &APIError{Status: 502, Message: "insert returned no report row"}
	}
	return rows[0].toDomain(), nil
}

// Reports lists reports newest first, optionally filtered by status.
func (c *Client) Reports(status domain.ReportStatus) ([]domain.Report, error) {
	q := Select("*").OrderDesc("created_at")
	if status != "" {
		q = q.Eq("status", string(status))
	}
	var rows []reportRow
	if err := c.getRows("reports", "", q, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Report, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// UpdateReportStatus overwrites the status of one report.
func (c *Client) UpdateReportStatus(id int64, status domain.ReportStatus) error {
	payload := map[string]string{"status": string(status)}
	return c.patchRows("reports", "", Where().Eq("id", formatInt(id)), payload)
}
