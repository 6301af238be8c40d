package dataclient

import (
	"time"

	"campusnest/pkg/domain"
)

const (
	listingSelect = "*,profiles(name,is_verified)"
	detailSelect  = "*,profiles(name,is_verified),property_images(id,property_id,storage_path,is_primary),property_amenities(amenities(id,name))"
)

type propertyRow struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Price            float64   `json:"price"`
	Address          string    `json:"address"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	LandlordID       string    `json:"landlord_id"`
	TargetUniversity string    `json:"target_university"`
	Type             string    `json:"type"`
	CreatedAt        time.Time `json:"created_at"`

	Profiles          *landlordRef     `json:"profiles"`
	PropertyImages    []imageRow       `json:"property_images"`
	PropertyAmenities []amenityJoinRow `json:"property_amenities"`
}

type landlordRef struct {
	Name       string `json:"name"`
	IsVerified int    `json:"is_verified"`
}

type imageRow struct {
	ID          int64  `json:"id"`
	PropertyID  int64  `json:"property_id"`
	StoragePath string `json:"storage_path"`
	IsPrimary   bool   `json:"is_primary"`
}

type amenityJoinRow struct {
	Amenities *amenityRow `json:"amenities"`
}

type amenityRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (r propertyRow) toDomain() domain.Property {
	p := domain.Property{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Price:            r.Price,
		Address:          r.Address,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		LandlordID:       r.LandlordID,
		TargetUniversity: r.TargetUniversity,
		Type:             r.Type,
		CreatedAt:        r.CreatedAt,
	}
	if r.Profiles != nil {
		p.LandlordName = r.Profiles.Name
		p.LandlordVerified = r.Profiles.IsVerified == int(domain.VerificationVerified)
	}
	for _, img := range r.PropertyImages {
		p.Images = append(p.Images, domain.PropertyImage{
			ID:          img.ID,
			PropertyID:  img.PropertyID,
			StoragePath: img.StoragePath,
			IsPrimary:   img.IsPrimary,
		})
	}
	for _, join := range r.PropertyAmenities {
		if join.Amenities != nil {
			p.Amenities = append(p.Amenities, join.Amenities.Name)
		}
	}
	return p
}

// PropertyInsert is the writable column set of a property row.
type PropertyInsert struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Price            float64 `json:"price"`
	Address          string  `json:"address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	LandlordID       string  `json:"landlord_id"`
	TargetUniversity string  `json:"target_university"`
	Type             string  `json:"type"`
}

// Properties lists rows matching the filter, newest first, with the
// landlord's name and verification embedded.
func (c *Client) Properties(filter domain.ListingFilter) ([]domain.Property, error) {
	q := Select(listingSelect).OrderDesc("created_at")
	if filter.TargetUniversity != "" {
		q = q.Eq("target_university", filter.TargetUniversity)
	}
	if filter.Type != "" {
		q = q.Eq("type", filter.Type)
	}
	if filter.PriceMin != nil {
		q = q.Gte("price", formatFloat(*filter.PriceMin))
	}
	if filter.PriceMax != nil {
		q = q.Lte("price", formatFloat(*filter.PriceMax))
	}
	var rows []propertyRow
	if err := c.getRows("properties", "", q, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Property, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// PropertiesByLandlord lists one landlord's rows, newest first.
func (c *Client) PropertiesByLandlord(landlordID string) ([]domain.Property, error) {
	q := Select(listingSelect).Eq("landlord_id", landlordID).OrderDesc("created_at")
	var rows []propertyRow
	if err := c.getRows("properties", "", q, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Property, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// PropertyByID fetches one row with landlord, images, and amenities embedded.
// A missing row returns (nil, nil).
func (c *Client) PropertyByID(id int64) (*domain.Property, error) {
	q := Select(detailSelect).Eq("id", formatInt(id))
	var rows []propertyRow
	if err := c.getRows("properties", "", q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := rows[0].toDomain()
	return &p, nil
}

// PrimaryImages fetches the primary image row for each listed property.
func (c *Client) PrimaryImages(propertyIDs []int64) (map[int64]domain.PropertyImage, error) {
	if len(propertyIDs) == 0 {
		return map[int64]domain.PropertyImage{}, nil
	}
	ids := make([]string, 0, len(propertyIDs))
	for _, id := range propertyIDs {
		ids = append(ids, formatInt(id))
	}
	q := Select("id,property_id,storage_path,is_primary").
		In("property_id", ids).
		Eq("is_primary", "true")
	var rows []imageRow
	if err := c.getRows("property_images", "", q, &rows); err != nil {
		return nil, err
	}
	out := make(map[int64]domain.PropertyImage, len(rows))
	for _, row := range rows {
		if _, seen := out[row.PropertyID]; seen {
			continue
		}
		out[row.PropertyID] = domain.PropertyImage{
			ID:          row.ID,
			PropertyID:  row.PropertyID,
			StoragePath: row.StoragePath,
			IsPrimary:   row.IsPrimary,
		}
	}
	return out, nil
}

// InsertProperty creates a row and returns its generated ID.
func (c *Client) InsertProperty(insert PropertyInsert) (int64, error) {
	var rows []propertyRow
	if err := c.insertRows("properties", "", insert, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, &APIError{Status: 502, Message: "insert returned no property row"}
	}
	return rows[0].ID, nil
}

// UpdateProperty patches the scalar columns of one row.
func (c *Client) UpdateProperty(id int64, update PropertyInsert) error {
	return c.patchRows("properties", "", Where().Eq("id", formatInt(id)), update)
}

// DeleteProperty removes one row.
func (c *Client) DeleteProperty(id int64) error {
	return c.deleteRows("properties", "", Where().Eq("id", formatInt(id)))
}

// InsertPropertyImage links an uploaded object to a property.
func (c *Client) InsertPropertyImage(propertyID int64, storagePath string, isPrimary bool) error {
	row := map[string]any{
		"property_id":  propertyID,
		"storage_path": storagePath,
		"is_primary":   isPrimary,
	}
	return c.insertRows("property_images", "", row, nil)
}

// PropertyImagesByProperty lists all image rows of a property.
func (c *Client) PropertyImagesByProperty(propertyID int64) ([]domain.PropertyImage, error) {
	q := Select("id,property_id,storage_path,is_primary").Eq("property_id", formatInt(propertyID))
	var rows []imageRow
	if err := c.getRows("property_images", "", q, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.PropertyImage, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.PropertyImage{
			ID:          row.ID,
			PropertyID:  row.PropertyID,
			StoragePath: row.StoragePath,
			IsPrimary:   row.IsPrimary,
		})
	}
	return out, nil
}

// DeletePropertyImages removes all image rows of a property.
func (c *Client) DeletePropertyImages(propertyID int64) error {
	return c.deleteRows("property_images", "", Where().Eq("property_id", formatInt(propertyID)))
}

// InsertPropertyAmenities links amenities to a property in one insert.
func (c *Client) InsertPropertyAmenities(propertyID int64, amenityIDs []int64) error {
	if len(amenityIDs) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(amenityIDs))
	for _, amenityID := range amenityIDs {
		rows = append(rows, map[string]any{
			"property_id": propertyID,
			"amenity_id":  amenityID,
		})
	}
	return c.insertRows("property_amenities", "", rows, nil)
}

// DeletePropertyAmenities unlinks all amenities of a property.
func (c *Client) DeletePropertyAmenities(propertyID int64) error {
	return c.deleteRows("property_amenities", "", Where().Eq("property_id", formatInt(propertyID)))
}

// Amenities lists the amenity reference table.
func (c *Client) Amenities() ([]domain.Amenity, error) {
	var rows []amenityRow
	if err := c.getRows("amenities", "", Select("id,name").OrderAsc("name"), &rows); err != nil {
		return nil, err
	}
	out := make([]domain.Amenity, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Amenity{ID: row.ID, Name: row.Name})
	}
	return out, nil
}
