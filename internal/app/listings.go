package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"campusnest/internal/dataclient"
	"campusnest/internal/objstore"
	"campusnest/pkg/domain"
)

// PropertyInput carries the writable fields of a listing.
type PropertyInput struct {
	Title            string
	Description      string
	Price            float64
	Address          string
	Latitude         float64
	Longitude        float64
	TargetUniversity string
	Type             string
	AmenityIDs       []int64
}

// ImageUpload is one photo attached to a create request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ListProperties returns filtered listings, newest first, each carrying
// its landlord summary and a card image. A failed image lookup degrades
// every card to the placeholder instead of failing the listing call.
func (a *App) ListProperties(filter domain.ListingFilter) ([]domain.Property, error) {
	props, err := a.data.Properties(filter)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	ids := make([]int64, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	images, err := a.data.PrimaryImages(ids)
	if err != nil {
		slog.Warn("primary image lookup failed, using placeholders", "err", err)
		images = nil
	}
	for i := range props {
		if img, ok := images[props[i].ID]; ok {
			props[i].ImageURL = a.objects.PublicURL(objstore.BucketProperties, img.StoragePath)
		} else {
			props[i].ImageURL = a.placeholder
		}
	}
	return props, nil
}

// PropertiesByLandlord returns one landlord's listings with the same
// enrichment as ListProperties.
func (a *App) PropertiesByLandlord(landlordID string) ([]domain.Property, error) {
	props, err := a.data.PropertiesByLandlord(landlordID)
	if err != nil {
		return nil, fmt.Errorf("list landlord properties: %w", err)
	}
	ids := make([]int64, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	images, err := a.data.PrimaryImages(ids)
	if err != nil {
		slog.Warn("primary image lookup failed, using placeholders", "err", err)
		images = nil
	}
	for i := range props {
		if img, ok := images[props[i].ID]; ok {
			props[i].ImageURL = a.objects.PublicURL(objstore.BucketProperties, img.StoragePath)
		} else {
			props[i].ImageURL = a.placeholder
		}
	}
	return props, nil
}

// PropertyByID returns the full listing detail, or (nil, nil) when no
// such property exists.
func (a *App) PropertyByID(id int64) (*domain.Property, error) {
	prop, err := a.data.PropertyByID(id)
	if err != nil {
		return nil, fmt.Errorf("fetch property: %w", err)
	}
	if prop == nil {
		return nil, nil
	}
	// Primary image first; order of the rest is preserved.
	sort.SliceStable(prop.Images, func(i, j int) bool {
		return prop.Images[i].IsPrimary && !prop.Images[j].IsPrimary
	})
	for i := range prop.Images {
		prop.Images[i].URL = a.objects.PublicURL(objstore.BucketProperties, prop.Images[i].StoragePath)
	}
	if len(prop.Images) > 0 {
		prop.ImageURL = prop.Images[0].URL
	} else {
		prop.ImageURL = a.placeholder
	}
	return prop, nil
}

// CreateProperty inserts the listing row, then uploads its photos and
// links its amenities. The follow-up writes are not transactional: once
// the row is committed, their failures are logged and the listing stands.
func (a *App) CreateProperty(sess domain.Session, in PropertyInput, images []ImageUpload) (*domain.Property, error) {
	if !can(sess, ActionCreateProperty, "") {
		return nil, ErrForbidden
	}
	if err := validatePropertyInput(in); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, &ValidationError{Field: "images", Message: "at least one photo is required"}
	}

	id, err := a.data.InsertProperty(propertyInsert(in, sess.UserID()))
	if err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	for i, img := range images {
		path := imagePath(id, img.Filename)
		if err := a.objects.Upload(sess.Principal.AccessToken, objstore.BucketProperties, path, img.ContentType, img.Data); err != nil {
			slog.Error("partial_failure", "op", "property.image.upload", "property_id", id, "err", err)
			continue
		}
		if err := a.data.InsertPropertyImage(id, path, i == 0); err != nil {
			slog.Error("partial_failure", "op", "property.image.link", "property_id", id, "err", err)
		}
	}
	if err := a.data.InsertPropertyAmenities(id, in.AmenityIDs); err != nil {
		slog.Error("partial_failure", "op", "property.amenities", "property_id", id, "err", err)
	}
	return a.refetchProperty(id)
}

// UpdateProperty patches the scalar fields and replaces the amenity links.
func (a *App) UpdateProperty(sess domain.Session, id int64, in PropertyInput) (*domain.Property, error) {
	existing, err := a.data.PropertyByID(id)
	if err != nil {
		return nil, fmt.Errorf("fetch property: %w", err)
	}
	if existing == nil {
		return nil, ErrPropertyNotFound
	}
	if !can(sess, ActionEditProperty, existing.LandlordID) {
		return nil, ErrForbidden
	}
	if err := validatePropertyInput(in); err != nil {
		return nil, err
	}
	if err := a.data.UpdateProperty(id, propertyInsert(in, existing.LandlordID)); err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	if err := a.data.DeletePropertyAmenities(id); err != nil {
		return nil, fmt.Errorf("replace amenities: %w", err)
	}
	if err := a.data.InsertPropertyAmenities(id, in.AmenityIDs); err != nil {
		return nil, fmt.Errorf("replace amenities: %w", err)
	}
	return a.refetchProperty(id)
}

// refetchProperty re-reads a row that was just written. The row is
// committed at this point, so an empty re-fetch is an upstream failure,
// not a missing property.
func (a *App) refetchProperty(id int64) (*domain.Property, error) {
	prop, err := a.PropertyByID(id)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, fmt.Errorf("property %d unreadable after write", id)
	}
	return prop, nil
}

// DeleteProperty removes the listing and its dependent rows. Stored
// photo objects are cleaned up in the background, best-effort.
func (a *App) DeleteProperty(sess domain.Session, id int64) error {
	existing, err := a.data.PropertyByID(id)
	if err != nil {
		return fmt.Errorf("fetch property: %w", err)
	}
	if existing == nil {
		return ErrPropertyNotFound
	}
	if !can(sess, ActionDeleteProperty, existing.LandlordID) {
		return ErrForbidden
	}
	if err := a.data.DeletePropertyImages(id); err != nil {
		return fmt.Errorf("delete property images: %w", err)
	}
	if err := a.data.DeletePropertyAmenities(id); err != nil {
		return fmt.Errorf("delete property amenities: %w", err)
	}
	if err := a.data.DeleteProperty(id); err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	for _, img := range existing.Images {
		go a.removeObject(objstore.BucketProperties, img.StoragePath, "")
	}
	return nil
}

// Amenities lists the amenity reference table for listing forms.
func (a *App) Amenities() ([]domain.Amenity, error) {
	return a.data.Amenities()
}

func validatePropertyInput(in PropertyInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if in.Price <= 0 {
		return &ValidationError{Field: "price", Message: "price must be greater than zero"}
	}
	if strings.TrimSpace(in.Address) == "" {
		return &ValidationError{Field: "address", Message: "address is required"}
	}
	if in.Latitude == 0 && in.Longitude == 0 {
		return &ValidationError{Field: "location", Message: "map coordinates are required"}
	}
	return nil
}

func propertyInsert(in PropertyInput, landlordID string) dataclient.PropertyInsert {
	return dataclient.PropertyInsert{
		Title:            strings.TrimSpace(in.Title),
		Description:      strings.TrimSpace(in.Description),
		Price:            in.Price,
		Address:          strings.TrimSpace(in.Address),
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		LandlordID:       landlordID,
		TargetUniversity: strings.TrimSpace(in.TargetUniversity),
		Type:             strings.TrimSpace(in.Type),
	}
}

func imagePath(propertyID int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("property_%d/%s%s", propertyID, uuid.NewString(), ext)
}
