package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vl4dimr/tesis-system-unap/internal/db"
	"github.com/vl4dimr/tesis-system-unap/internal/formatting"
	"github.com/vl4dimr/tesis-system-unap/internal/report"
)

// DocxMediaType is the media type of a .docx package.
const DocxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Response headers of a streamed formatting result
const (
	headerChanges    = "X-Cambios-Realizados"
	headerReportID   = "X-Id-Reporte"
	headerCompliance = "X-Porcentaje-Cumplimiento"
)

const (
	serviceMessage  = "Document Service - Sistema de Tesis UNAP"
	onlyDocxMessage = "Solo se permiten archivos .docx"
	auditTimeout    = 5 * time.Second
	memoryLimit     = 8 << 20 // multipart bytes held in memory before spilling to disk
)

// upload is a received .docx file.
type upload struct {
	name string
	data []byte
	sum  string
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": serviceMessage})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleConfig returns the page, font and paragraph expectations in force.
func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, report.FromCatalog(s.engine.Catalog()))
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.engine.Catalog().File())
}

// handleValidate checks an uploaded thesis against the catalog.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	res, err := s.engine.Validate(r.Context(), up.data)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	id := uuid.New()
	out := report.FromValidation(res.Report)
	out.IDReporte = id.String()
	out.Archivo = up.name

	s.saveRun(r, db.NewValidationRun(id, up.name, up.sum, s.engine.Catalog().Version(), res.Report, res.Duration))
	s.jsonResponse(w, http.StatusOK, out)
}

// handleFormat corrects an uploaded thesis. The result is returned as JSON
// with the document inline, or as the raw document when the client accepts
// the .docx media type.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	meta := formatting.Metadata{
		Title:  strings.TrimSpace(r.FormValue("titulo")),
		Author: strings.TrimSpace(r.FormValue("autor")),
	}

	start := time.Now()
	res, err := s.engine.Format(r.Context(), up.data, meta)
	id := uuid.New()
	if err != nil {
		var incomplete *formatting.IncompleteFormattingError
		if errors.As(err, &incomplete) {
			s.saveRun(r, db.NewFormattingRun(id, up.name, up.sum, s.engine.Catalog().Version(), nil, incomplete.Changes, err, time.Since(start)))
		}
		s.errorResponse(w, r, err)
		return
	}
	s.saveRun(r, db.NewFormattingRun(id, up.name, up.sum, s.engine.Catalog().Version(), res.After, res.Changes, nil, time.Since(start)))

	outName := formattedName(up.name)
	if !acceptsDocx(r.Header.Get("Accept")) {
		out := report.FromFormatting(res, outName, true)
		out.IDReporte = id.String()
		s.jsonResponse(w, http.StatusOK, out)
		return
	}

	changes, err := json.Marshal(report.Changes(res.Changes))
	if err != nil {
		s.errorResponse(w, r, fmt.Errorf("encode change log: %w", err))
		return
	}
	w.Header().Set("Content-Type", DocxMediaType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": outName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Document)))
	w.Header().Set(headerChanges, string(changes))
	w.Header().Set(headerReportID, id.String())
	w.Header().Set(headerCompliance, strconv.FormatFloat(res.After.Percentage, 'f', -1, 64))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Document); err != nil {
		s.logger(r).WithError(err).Warn("client went away while streaming document")
	}
}

// handleReport returns a stored run.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	if s.audit == nil {
		s.errorResponse(w, r, &ErrNotFound{Resource: "reporte", ID: idStr})
		return
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "id", Message: "Identificador de reporte inválido"})
		return
	}

	run, err := s.audit.GetRun(r.Context(), id)
	if err != nil {
		s.errorResponse(w, r, fmt.Errorf("get run: %w", err))
		return
	}
	if run == nil {
		s.errorResponse(w, r, &ErrNotFound{Resource: "reporte", ID: idStr})
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// readUpload reads the "file" part of a multipart request, enforcing the
// upload cap and the .docx extension.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	limit := s.cfg.MaxUploadBytes
	if r.ContentLength > limit {
		return nil, &ErrPayloadTooLarge{Limit: limit}
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ErrPayloadTooLarge{Limit: limit}
		}
		return nil, &ErrValidation{Field: "file", Message: "Se esperaba un formulario multipart con el campo 'file'"}
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &ErrValidation{Field: "file", Message: "Falta el archivo en el campo 'file'"}
	}
	defer func() { _ = file.Close() }()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".docx") {
		return nil, &ErrValidation{Field: "file", Message: onlyDocxMessage}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	sum := sha256.Sum256(data)
	return &upload{name: filepath.Base(header.Filename), data: data, sum: hex.EncodeToString(sum[:])}, nil
}

// saveRun stores a run when an audit store is configured. Failures are
// logged and never reach the caller.
func (s *Server) saveRun(r *http.Request, input *db.RunInput) {
	if s.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), auditTimeout)
	defer cancel()
	if _, err := s.audit.SaveRun(ctx, input); err != nil {
		s.logger(r).WithError(err).WithField("id_reporte", input.ID).Warn("failed to store audit record")
	}
}

// formattedName derives the output file name, e.g. tesis.docx -> tesis_formateado.docx.
func formattedName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return base + "_formateado.docx"
}

// acceptsDocx reports whether an Accept header names the .docx media type.
func acceptsDocx(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == DocxMediaType {
			return true
		}
	}
	return false
}
