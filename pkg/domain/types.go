package domain

import "time"

type Role string

const (
	RoleStudent  Role = "student"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// VerificationStatus uses the numeric codes stored in profile rows.
type VerificationStatus int

const (
	VerificationUnverified VerificationStatus = 0
	VerificationVerified   VerificationStatus = 1
	VerificationPending    VerificationStatus = 2
	VerificationRejected   VerificationStatus = 3
)

func (v VerificationStatus) String() string {
	switch v {
	case VerificationVerified:
		return "verified"
	case VerificationPending:
		return "pending"
	case VerificationRejected:
		return "rejected"
	default:
		return "unverified"
	}
}

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
)

// Principal is the authenticated identity issued by the hosted auth service.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AccessToken string `json:"-"`
}

// Profile is the application-level user record keyed by the principal ID.
type Profile struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Email                string             `json:"email"`
	Phone                string             `json:"phone,omitempty"`
	Role                 Role               `json:"role"`
	UniqueID             string             `json:"uniqueId,omitempty"`
	VerificationDocument string             `json:"-"`
	VerificationStatus   VerificationStatus `json:"verificationStatus"`
}

// Session pairs a principal with its profile snapshot.
// Both halves are required: a principal without a profile is not logged in.
type Session struct {
	Principal Principal `json:"principal"`
	Profile   Profile   `json:"profile"`
}

// IsAuthenticated reports whether the session carries a complete identity.
func (s Session) IsAuthenticated() bool {
	return s.Principal.ID != "" && s.Profile.ID != ""
}

// UserID returns the session owner's ID, or "" when unauthenticated.
func (s Session) UserID() string {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.Profile.ID
}

// UserRole returns the session owner's role, or "" when unauthenticated.
func (s Session) UserRole() Role {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.Profile.Role
}

type Property struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Price            float64   `json:"price"`
	Address          string    `json:"address"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	LandlordID       string    `json:"landlordId"`
	TargetUniversity string    `json:"targetUniversity,omitempty"`
	Type             string    `json:"type,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`

	// Enrichment attached by listing queries.
	LandlordName     string          `json:"landlordName,omitempty"`
	LandlordVerified bool            `json:"landlordVerified"`
	ImageURL         string          `json:"imageUrl,omitempty"`
	Images           []PropertyImage `json:"images,omitempty"`
	Amenities        []string        `json:"amenities,omitempty"`
}

type PropertyImage struct {
	ID          int64  `json:"id"`
	PropertyID  int64  `json:"propertyId"`
	StoragePath string `json:"-"`
	URL         string `json:"url"`
	IsPrimary   bool   `json:"isPrimary"`
}

// ListingFilter narrows property queries. Nil price bounds mean unbounded.
type ListingFilter struct {
	TargetUniversity string
	Type             string
	PriceMin         *float64
	PriceMax         *float64
}

type Amenity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Report struct {
	ID         int64        `json:"id"`
	ListingID  int64        `json:"listingId"`
	LandlordID string       `json:"landlordId"`
	ReportedBy string       `json:"reportedBy"`
	Reason     string       `json:"reason"`
	Status     ReportStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
}
