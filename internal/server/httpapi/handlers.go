package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fishtank/internal/common"
	"github.com/dmitrijs2005/fishtank/internal/server/models"
	"github.com/dmitrijs2005/fishtank/internal/server/repositories/fish"
	"github.com/dmitrijs2005/fishtank/internal/server/services"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a single JSON object into dst. Unknown fields are
// tolerated; an empty body decodes to the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed JSON body", common.ErrorInvalidInput)
	}
	return nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No image uploaded")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image uploaded")
		return
	}
	defer file.Close()

	name, err := s.uploads.Save(file, header.Filename)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", common.ErrorInternal, err))
		return
	}

	needsModeration, _ := strconv.ParseBool(r.FormValue("needsModeration"))
	f, err := s.fish.Create(r.Context(), services.UploadInput{
		ImageRef:        strings.TrimRight(s.baseURL, "/") + "/uploads/" + name,
		Artist:          strings.TrimSpace(r.FormValue("artist")),
		NeedsModeration: needsModeration,
		OwnerUserID:     strings.TrimSpace(r.FormValue("userId")),
	})
	if err != nil {
		if rmErr := s.uploads.Remove(name); rmErr != nil {
			s.logger.Warn(r.Context(), "failed to remove orphaned upload", "name", name, "error", rmErr)
		}
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dataBody{Data: projectFish(f)})
}

type listBody struct {
	Data  []fishView `json:"data"`
	Total int        `json:"total"`
}

// parseListQuery reads orderBy, order, limit, offset and the equality
// filters isVisible, deleted and userId.
func parseListQuery(r *http.Request) (fish.Query, error) {
	v := r.URL.Query()

	field, err := fish.ParseSortField(v.Get("orderBy"))
	if err != nil {
		return fish.Query{}, err
	}
	desc, err := fish.ParseDescending(v.Get("order"))
	if err != nil {
		return fish.Query{}, err
	}

	limit, err := strconv.Atoi(v.Get("limit"))
	if err != nil || limit <= 0 {
		limit = fish.DefaultLimit
	}
	offset, err := strconv.Atoi(v.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	q := fish.Query{
		Sort: fish.Sort{Field: field, Descending: desc},
		Page: fish.Page{Offset: offset, Limit: limit},
	}
	if q.Filter.IsVisible, err = boolParam(v.Get("isVisible"), "isVisible"); err != nil {
		return fish.Query{}, err
	}
	if q.Filter.Deleted, err = boolParam(v.Get("deleted"), "deleted"); err != nil {
		return fish.Query{}, err
	}
	if owner := v.Get("userId"); owner != "" {
		o := models.OwnerID(owner)
		q.Filter.OwnerUserID = &o
	}
	return q, nil
}

func boolParam(raw, name string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", common.ErrorInvalidInput, name)
	}
	return &b, nil
}

func (s *Server) handleListFish(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.fish.List(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody{Data: projectFishList(res.Items), Total: res.Total})
}

type voteRequest struct {
	FishID string `json:"fishId"`
	Vote   string `json:"vote"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.FishID == "" {
		s.fail(w, r, fmt.Errorf("%w: fishId is required", common.ErrorInvalidInput))
		return
	}
	f, err := s.fish.Vote(r.Context(), req.FishID, req.Vote)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataBody{Data: projectFish(f)})
}

type reportRequest struct {
	FishID    string            `json:"fishId"`
	Reason    string            `json:"reason"`
	UserAgent string            `json:"userAgent"`
	URL       string            `json:"url"`
	Extra     map[string]string `json:"extra"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.FishID == "" {
		s.fail(w, r, fmt.Errorf("%w: fishId is required", common.ErrorInvalidInput))
		return
	}
	ua := req.UserAgent
	if ua == "" {
		ua = r.UserAgent()
	}
	_, err := s.reports.File(r.Context(), req.FishID, req.Reason, models.ReportContext{
		UserAgent: ua,
		URL:       req.URL,
		Extra:     req.Extra,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Report received"})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserID   string `json:"userId"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.users.Register(r.Context(), req.Email, req.Password, req.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectSession(sess))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectSession(sess))
}

type googleRequest struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.users.LoginFederated(r.Context(), req.Token, req.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectSession(sess))
}

type forgotPasswordResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	token, err := s.users.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forgotPasswordResponse{Message: "Password reset requested", Token: token})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.users.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Password updated"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	writeJSON(w, http.StatusOK, struct {
		User userView `json:"user"`
	}{User: projectUser(u)})
}

func (s *Server) handleAdminSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Saved *bool `json:"saved"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	saved := req.Saved == nil || *req.Saved
	f, err := s.fish.SetSaved(r.Context(), r.PathValue("id"), saved)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataBody{Data: projectFish(f)})
}

func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	f, err := s.fish.SoftDelete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataBody{Data: projectFish(f)})
}

func (s *Server) handleAdminVisibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visible *bool `json:"visible"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Visible == nil {
		s.fail(w, r, fmt.Errorf("%w: visible is required", common.ErrorInvalidInput))
		return
	}
	f, err := s.fish.SetVisibility(r.Context(), r.PathValue("id"), *req.Visible)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataBody{Data: projectFish(f)})
}

func (s *Server) handleAdminClearTank(w http.ResponseWriter, r *http.Request) {
	n, err := s.fish.ClearTank(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Cleared int `json:"cleared"`
	}{Cleared: n})
}

func (s *Server) handleAdminReports(w http.ResponseWriter, r *http.Request) {
	list, err := s.reports.List(r.Context(), r.URL.Query().Get("fishId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataBody{Data: list})
}
