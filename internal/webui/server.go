// Package webui exposes import sessions as a small JSON API.
//
// Routes:
//
//	GET    /api/fields                  → target fields and labels
//	POST   /api/imports                 → multipart "file"; parses and proposes a mapping
//	GET    /api/imports/{id}            → session snapshot
//	PUT    /api/imports/{id}/mappings   → {"sourceColumn","targetField"}; empty field skips
//	POST   /api/imports/{id}/commit     → {"farmId"}; ?async=1 returns 202 and runs in background
//	GET    /api/imports/{id}/progress   → chunk progress
//	DELETE /api/imports/{id}            → reset and forget
package webui

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/editor"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/importer"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/parser/csv"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
)

// Config controls server startup.
type Config struct {
	Addr string

	// SampleRows caps the preview rows in snapshots; zero means 5.
	SampleRows int

	// MaxUploadBytes caps the request body of an upload; zero means 32 MiB.
	MaxUploadBytes int64
}

type Server struct {
	cfg   Config
	mux   *http.ServeMux
	store *importer.Store

	// base is the parent context of background commits.
	base context.Context
}

// NewServer constructs a Server with its routes.
func NewServer(cfg Config, store *importer.Store) *Server {
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	s := &Server{
		cfg:   cfg,
		mux:   http.NewServeMux(),
		store: store,
		base:  context.Background(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// Serve listens on cfg.Addr until ctx is done, then shuts down gracefully.
// Background commits are cancelled with ctx.
func (s *Server) Serve(ctx context.Context) error {
	s.base = ctx
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Printf("webui: listening on %s", s.cfg.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/fields", s.handleFields)
	s.mux.HandleFunc("POST /api/imports", s.handleUpload)
	s.mux.HandleFunc("GET /api/imports/{id}", s.handleGet)
	s.mux.HandleFunc("PUT /api/imports/{id}/mappings", s.handleAssign)
	s.mux.HandleFunc("POST /api/imports/{id}/commit", s.handleCommit)
	s.mux.HandleFunc("GET /api/imports/{id}/progress", s.handleProgress)
	s.mux.HandleFunc("DELETE /api/imports/{id}", s.handleDelete)
}

type fieldView struct {
	Field schema.Field `json:"field"`
	Label string       `json:"label"`
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	out := make([]fieldView, 0, len(schema.Fields()))
	for _, f := range schema.Fields() {
		out = append(out, fieldView{Field: f, Label: f.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Upload a .csv file in the \"file\" form field.")
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Upload a .csv file in the \"file\" form field.")
		return
	}
	defer f.Close()

	sess := s.store.Create()
	if err := sess.Load(r.Context(), hdr.Filename, f); err != nil {
		_ = s.store.Delete(sess.ID())
		s.fail(w, err)
		return
	}
	w.Header().Set("Location", "/api/imports/"+sess.ID())
	writeJSON(w, http.StatusCreated, sess.Snapshot(s.cfg.SampleRows))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot(s.cfg.SampleRows))
}

type assignRequest struct {
	SourceColumn string `json:"sourceColumn"`
	TargetField  string `json:"targetField"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Expected {\"sourceColumn\", \"targetField\"}.")
		return
	}
	field, valid := schema.Parse(req.TargetField)
	if !valid {
		s.fail(w, editor.ErrUnknownField)
		return
	}
	if err := sess.Assign(req.SourceColumn, field); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot(s.cfg.SampleRows))
}

type commitRequest struct {
	FarmID string `json:"farmId"`
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FarmID == "" {
		writeError(w, http.StatusBadRequest, "Expected {\"farmId\"}.")
		return
	}

	if r.URL.Query().Get("async") == "1" {
		go func() {
			if _, err := sess.Commit(s.base, req.FarmID); err != nil {
				log.Printf("webui: background commit id=%s err=%v", sess.ID(), err)
			}
		}()
		writeJSON(w, http.StatusAccepted, sess.Progress())
		return
	}

	// The chunks run to completion even if the client goes away.
	out, err := sess.Commit(context.WithoutCancel(r.Context()), req.FarmID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Progress())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*importer.Session, bool) {
	sess, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	return sess, true
}

// fail logs err and answers with a user-facing message; lower-level error
// text is never sent to the client.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status, msg := classify(err)
	log.Printf("webui: status=%d err=%v", status, err)
	writeError(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, importer.ErrNoSession):
		return http.StatusNotFound, "Import not found."
	case errors.Is(err, csv.ErrUnsupportedExtension):
		return http.StatusUnsupportedMediaType, "Only .csv files are supported."
	case errors.Is(err, csv.ErrEmptyInput):
		return http.StatusBadRequest, "The file contains no data."
	case errors.Is(err, csv.ErrRead):
		return http.StatusBadRequest, "The file could not be read."
	case errors.Is(err, editor.ErrUnknownColumn):
		return http.StatusBadRequest, "Unknown column."
	case errors.Is(err, editor.ErrUnknownField):
		return http.StatusBadRequest, "Unknown target field."
	case errors.Is(err, editor.ErrFrozen), errors.Is(err, importer.ErrState):
		return http.StatusConflict, "The import is not in a state that allows this."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("webui: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
