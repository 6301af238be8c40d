package dataclient

import (
	"campusnest/pkg/domain"
)

type profileRow struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Role                 string `json:"role"`
	UniqueID             string `json:"unique_id"`
	IsVerified           int    `json:"is_verified"`
	VerificationDocument string `json:"verification_document"`
}

func (r profileRow) toDomain() domain.Profile {
	return domain.Profile{
		ID:                   r.ID,
		Name:                 r.Name,
		Email:                r.Email,
		Phone:                r.Phone,
		Role:                 domain.Role(r.Role),
		UniqueID:             r.UniqueID,
		VerificationDocument: r.VerificationDocument,
		VerificationStatus:   domain.VerificationStatus(r.IsVerified),
	}
}

// ProfileUpdate carries the full merged field set for a profile PATCH.
// Callers merge omitted inputs with the stored profile before calling.
type ProfileUpdate struct {
	Name                 string `json:"name"`
	Phone                string `json:"phone"`
	VerificationDocument string `json:"verification_document"`
	IsVerified           int    `json:"is_verified"`
}

// ProfileByID fetches one profile row. Missing rows return ok=false.
func (c *Client) ProfileByID(id string) (domain.Profile, bool, error) {
	var rows []profileRow
	q := Select("*").Eq("id", id)
	if err := c.getRows("profiles", "", q, &rows); err != nil {
		return domain.Profile{}, false, err
	}
	if len(rows) == 0 {
		return domain.Profile{}, false, nil
	}
	return rows[0].toDomain(), true, nil
}

// InsertProfile creates the profile row paired with a new auth identity.
func (c *Client) InsertProfile(p domain.Profile) error {
	row := profileRow{
		ID:       p.ID,
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		Role:     string(p.Role),
		UniqueID: p.UniqueID,
	}
	return c.insertRows("profiles", "", row, nil)
}

// UpdateProfile applies the merged field set to one profile row.
func (c *Client) UpdateProfile(id string, update ProfileUpdate) error {
	return c.patchRows("profiles", "", Where().Eq("id", id), update)
}

// LandlordsByVerificationStatus lists landlord profiles in the given state.
func (c *Client) LandlordsByVerificationStatus(status domain.VerificationStatus) ([]domain.Profile, error) {
	var rows []profileRow
	q := Select("*").
		Eq("role", string(domain.RoleLandlord)).
		Eq("is_verified", formatInt(int64(status)))
	if err := c.getRows("profiles", "", q, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
