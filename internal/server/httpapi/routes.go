package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
)

// Routes builds the API handler.
//
//	POST   /sign_up               public, rate limited
//	POST   /login                 public, rate limited
//	GET    /healthz               public
//	GET    /assets/*              public, local storage only
//	POST   /logout                session
//	POST   /uploadProfilePicture  session
//	GET    /profilePicture        session
//	POST   /add-note              session
//	GET    /notes                 session
//	DELETE /delete-note/{id}      session
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{s.opts.CORSOrigin},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type", common.SessionHeaderName},
	}).Handler)

	r.Get("/healthz", s.healthz)
	if s.opts.Assets != nil {
		r.Handle(storage.AssetsPath+"*", s.opts.Assets)
	}

	r.Group(func(r chi.Router) {
		if s.opts.LoginRateLimit > 0 {
			r.Use(httprate.LimitByIP(s.opts.LoginRateLimit, time.Minute))
		}
		r.Post("/sign_up", s.signUp)
		r.Post("/login", s.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.gate.Require)
		r.Post("/logout", s.logout)
		r.Post("/uploadProfilePicture", s.uploadProfilePicture)
		r.Get("/profilePicture", s.profilePicture)
		r.Post("/add-note", s.addNote)
		r.Get("/notes", s.listNotes)
		r.Delete("/delete-note/{id}", s.deleteNote)
	})

	return r
}
