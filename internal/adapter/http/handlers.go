package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

type geocodeRequest struct {
	Description string `json:"description"`
}

type geocodeResponse struct {
	LocationName string     `json:"location_name"`
	Coordinates  domain.Geo `json:"coordinates"`
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	var req geocodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "Description is required", err)
		return
	}
	name, geo, err := s.deps.Disasters.GeocodeText(r.Context(), req.Description)
	if err != nil {
		s.writeError(w, r, "Failed to geocode location", err)
		return
	}
	writeJSON(w, http.StatusOK, geocodeResponse{LocationName: name, Coordinates: geo})
}

type createRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "Title and description are required", err)
		return
	}
	d, err := s.deps.Disasters.Create(r.Context(), domain.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Actor:       actorFrom(r.Context()),
	})
	if err != nil {
		s.writeError(w, r, "Failed to create disaster", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ds, err := s.deps.Disasters.List(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		s.writeError(w, r, "Failed to fetch disasters", err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Disasters.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, "Failed to fetch disaster", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type updateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "Failed to update disaster", err)
		return
	}
	in := domain.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Actor:       actorFrom(r.Context()),
	}
	if req.Tags != nil {
		in.Tags, in.TagsSet = *req.Tags, true
	}
	d, err := s.deps.Disasters.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, r, "Failed to update disaster", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Disasters.Delete(r.Context(), r.PathValue("id"), actorFrom(r.Context())); err != nil {
		s.writeError(w, r, "Failed to delete disaster", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	q, err := parseResourceQuery(r)
	if err != nil {
		s.writeError(w, r, "Invalid resource query", err)
		return
	}
	found, err := s.deps.Resources.FindNear(r.Context(), q)
	if err != nil {
		s.writeError(w, r, "Failed to fetch resources", err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func parseResourceQuery(r *http.Request) (domain.ResourceQuery, error) {
	q := domain.ResourceQuery{DisasterID: r.PathValue("id")}
	params := r.URL.Query()

	var err error
	q.LatText, q.LngText, q.RadiusText = params.Get("lat"), params.Get("lon"), params.Get("distance")
	if q.Lat, err = optionalFloat(q.LatText, "lat"); err != nil {
		return q, err
	}
	if q.Lng, err = optionalFloat(q.LngText, "lon"); err != nil {
		return q, err
	}
	radius, err := optionalFloat(q.RadiusText, "distance")
	if err != nil {
		return q, err
	}
	if radius != nil {
		q.RadiusKm = *radius
	}
	return q, nil
}

func optionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, name)
	}
	return &v, nil
}

func (s *Server) handleSocial(w http.ResponseWriter, r *http.Request) {
	reports, err := s.deps.Disasters.SocialReports(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, "Failed to fetch social media data", err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

type verifyRequest struct {
	ImageURL string `json:"image_url"`
}

func (s *Server) handleVerifyImage(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "image_url is required", err)
		return
	}
	result, err := s.deps.Disasters.VerifyImage(r.Context(), r.PathValue("id"), req.ImageURL)
	if err != nil {
		s.writeError(w, r, "Failed to verify image", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOfficialUpdates(w http.ResponseWriter, r *http.Request) {
	updates, err := s.deps.Disasters.OfficialUpdates(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, "Failed to fetch official updates", err)
		return
	}
	writeJSON(w, http.StatusOK, updates)
}
