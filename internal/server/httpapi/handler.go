package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/dmitrijs2005/notekeeper/internal/server/shared/respond"
	"github.com/go-chi/chi/v5"
)

const (
	imageField = "image"
	// room for the text fields and multipart framing around the image
	formOverhead  = 1 << 20
	maxJSONBody   = 1 << 20
	maxFormMemory = 8 << 20
)

type signUpRequest struct {
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
	UserName   string `json:"username"`
	Password   string `json:"password"`
}

type loginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

type authResponse struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"sessionToken"`
	AccountID    string `json:"accountId"`
	ImageURL     string `json:"imageUrl,omitempty"`
	FirstName    string `json:"firstName"`
	MiddleName   string `json:"middleName"`
	LastName     string `json:"lastName"`
	UserName     string `json:"username"`
	Email        string `json:"email"`
}

type imageResponse struct {
	Success   bool      `json:"success"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func toAuthResponse(res *services.AuthResult) authResponse {
	out := authResponse{
		Success:      true,
		SessionToken: res.Session.Token,
		AccountID:    res.Account.ID,
		FirstName:    res.Account.FirstName,
		MiddleName:   res.Account.MiddleName,
		LastName:     res.Account.LastName,
		UserName:     res.Account.UserName,
		Email:        res.Account.Email,
	}
	if res.Image != nil {
		out.ImageURL = res.Image.URL
	}
	return out
}

func toNoteResponse(n *models.Note) noteResponse {
	return noteResponse{ID: n.ID, Title: n.Title, Content: n.Content, CreatedAt: n.CreatedAt}
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return fmt.Errorf("%w: malformed json body", common.ErrValidation)
	}
	return nil
}

// parseMultipart parses a multipart body of at most MaxImageBytes plus
// overhead and returns the optional image file.
func (s *HTTPServer) parseMultipart(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxImageBytes+formOverhead)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: malformed multipart body", common.ErrValidation)
	}

	f, _, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable image part", common.ErrValidation)
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) signUp(w http.ResponseWriter, r *http.Request) {
	var in services.SignUpInput

	if mediaType(r) == "multipart/form-data" {
		image, err := s.parseMultipart(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		in = services.SignUpInput{
			FirstName:  r.FormValue("firstName"),
			MiddleName: r.FormValue("middleName"),
			LastName:   r.FormValue("lastName"),
			UserName:   r.FormValue("username"),
			Password:   r.FormValue("password"),
			Image:      image,
		}
	} else {
		var req signUpRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		in = services.SignUpInput{
			FirstName:  req.FirstName,
			MiddleName: req.MiddleName,
			LastName:   req.LastName,
			UserName:   req.UserName,
			Password:   req.Password,
		}
	}

	res, err := s.accounts.SignUp(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Signed up", "account_id", res.Account.ID, "username", res.Account.UserName)
	respond.JSON(w, http.StatusCreated, toAuthResponse(res))
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	if mediaType(r) == "application/json" {
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: malformed form body", common.ErrValidation))
			return
		}
		req.EmailOrUsername = r.PostFormValue("emailOrUsername")
		req.Password = r.PostFormValue("password")
	}

	res, err := s.accounts.Login(r.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toAuthResponse(res))
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.SessionToken(r.Context())
	if err := s.accounts.Logout(r.Context(), token); err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *HTTPServer) uploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.AccountID(r.Context())

	image, err := s.parseMultipart(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if image == nil {
		s.writeError(w, r, fmt.Errorf("%w: image file is required", common.ErrValidation))
		return
	}

	grant, err := s.accounts.ReplaceProfilePicture(r.Context(), accountID, image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, imageResponse{Success: true, ImageURL: grant.URL, ExpiresAt: grant.ExpiresAt})
}

func (s *HTTPServer) profilePicture(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.AccountID(r.Context())

	grant, err := s.accounts.ProfilePicture(r.Context(), accountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, imageResponse{Success: true, ImageURL: grant.URL, ExpiresAt: grant.ExpiresAt})
}

func (s *HTTPServer) addNote(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.AccountID(r.Context())

	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	n, err := s.notes.Add(r.Context(), accountID, req.Title, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toNoteResponse(n))
}

func (s *HTTPServer) listNotes(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.AccountID(r.Context())

	list, err := s.notes.List(r.Context(), accountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]noteResponse, 0, len(list))
	for _, n := range list {
		out = append(out, toNoteResponse(n))
	}
	respond.JSON(w, http.StatusOK, struct {
		Success bool           `json:"success"`
		Notes   []noteResponse `json:"notes"`
	}{Success: true, Notes: out})
}

func (s *HTTPServer) deleteNote(w http.ResponseWriter, r *http.Request) {
	accountID, _ := auth.AccountID(r.Context())

	if err := s.notes.Delete(r.Context(), accountID, chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, successResponse{Success: true})
}
