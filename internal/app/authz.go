package app

import "campusnest/pkg/domain"

type Action string

const (
	ActionCreateProperty     Action = "property.create"
	ActionEditProperty       Action = "property.edit"
	ActionDeleteProperty     Action = "property.delete"
	ActionSubmitReport       Action = "report.submit"
	ActionListReports        Action = "report.list"
	ActionResolveReport      Action = "report.resolve"
	ActionReviewVerification Action = "verification.review"
)

// can is the single capability check consulted before protected operations.
// ownerID scopes owner-or-admin actions and is ignored elsewhere.
func can(sess domain.Session, action Action, ownerID string) bool {
	if !sess.IsAuthenticated() {
		return false
	}
	switch action {
	case ActionCreateProperty:
		return sess.UserRole() == domain.RoleLandlord
	case ActionEditProperty, ActionDeleteProperty:
		return sess.UserRole() == domain.RoleAdmin || sess.UserID() == ownerID
	case ActionSubmitReport:
		return true
	case ActionListReports, ActionResolveReport, ActionReviewVerification:
		return sess.UserRole() == domain.RoleAdmin
	}
	return false
}
