package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"campusnest/internal/app"
	"campusnest/pkg/domain"
)

type propertyRequest struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Price            float64 `json:"price"`
	Address          string  `json:"address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	TargetUniversity string  `json:"targetUniversity"`
	Type             string  `json:"type"`
	AmenityIDs       []int64 `json:"amenityIds"`
}

func (req propertyRequest) toInput() app.PropertyInput {
	return app.PropertyInput{
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		TargetUniversity: req.TargetUniversity,
		Type:             req.Type,
		AmenityIDs:       req.AmenityIDs,
	}
}

// /api/properties: public listing on GET, landlord create on POST.
func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListProperties(w, r)
	case http.MethodPost:
		sess, ok := s.session(r)
		if !ok {
			s.audit(r, "session.authorize", "fail")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		s.handleCreateProperty(w, r, sess)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	filter := domain.ListingFilter{
		TargetUniversity: strings.TrimSpace(r.URL.Query().Get("university")),
		Type:             strings.TrimSpace(r.URL.Query().Get("type")),
	}
	if raw := r.URL.Query().Get("minPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.PriceMin = &v
		}
	}
	if raw := r.URL.Query().Get("maxPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.PriceMax = &v
		}
	}
	props, err := s.app.ListProperties(filter)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": props,
		"count": len(props),
	})
}

// handleCreateProperty accepts a multipart form: scalar fields, an
// amenityIds CSV, and one or more files under "images".
func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	input, err := propertyInputFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var images []app.ImageUpload
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			if !extensionAllowed(s.imageExtensions, header.Filename) {
				writeError(w, http.StatusBadRequest, "unsupported image type")
				return
			}
			file, err := header.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "failed to read image")
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "failed to read image")
				return
			}
			images = append(images, app.ImageUpload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	created, err := s.app.CreateProperty(sess, input, images)
	if err != nil {
		s.audit(r, "property.create", "fail", "user_id", sess.UserID(), "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "property.create", "success", "user_id", sess.UserID(), "property_id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// /api/properties/{id}
func (s *Server) handlePropertyByID(w http.ResponseWriter, r *http.Request) {
	idRaw := strings.TrimPrefix(r.URL.Path, "/api/properties/")
	if idRaw == "" || strings.Contains(idRaw, "/") {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}
	switch r.Method {
	case http.MethodGet:
		prop, err := s.app.PropertyByID(id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if prop == nil {
			writeError(w, http.StatusNotFound, "property not found")
			return
		}
		writeJSON(w, http.StatusOK, prop)
	case http.MethodPatch:
		sess, ok := s.session(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var req propertyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updated, err := s.app.UpdateProperty(sess, id, req.toInput())
		if err != nil {
			s.audit(r, "property.update", "fail", "user_id", sess.UserID(), "property_id", id, "reason", err.Error())
			writeAppError(w, err)
			return
		}
		s.audit(r, "property.update", "success", "user_id", sess.UserID(), "property_id", id)
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		sess, ok := s.session(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := s.app.DeleteProperty(sess, id); err != nil {
			s.audit(r, "property.delete", "fail", "user_id", sess.UserID(), "property_id", id, "reason", err.Error())
			writeAppError(w, err)
			return
		}
		s.audit(r, "property.delete", "success", "user_id", sess.UserID(), "property_id", id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleMyProperties(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	props, err := s.app.PropertiesByLandlord(sess.UserID())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": props,
		"count": len(props),
	})
}

func (s *Server) handleAmenities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	amenities, err := s.app.Amenities()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": amenities,
		"count": len(amenities),
	})
}

func propertyInputFromForm(r *http.Request) (app.PropertyInput, error) {
	input := app.PropertyInput{
		Title:            r.FormValue("title"),
		Description:      r.FormValue("description"),
		Address:          r.FormValue("address"),
		TargetUniversity: r.FormValue("targetUniversity"),
		Type:             r.FormValue("type"),
	}
	if raw := r.FormValue("price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return input, errInvalidField("price")
		}
		input.Price = v
	}
	if raw := r.FormValue("latitude"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return input, errInvalidField("latitude")
		}
		input.Latitude = v
	}
	if raw := r.FormValue("longitude"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return input, errInvalidField("longitude")
		}
		input.Longitude = v
	}
	if raw := strings.TrimSpace(r.FormValue("amenityIds")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return input, errInvalidField("amenityIds")
			}
			input.AmenityIDs = append(input.AmenityIDs, id)
		}
	}
	return input, nil
}

type fieldError string

func (e fieldError) Error() string { return string(e) + " is invalid" }

func errInvalidField(name string) error { return fieldError(name) }
