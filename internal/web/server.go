package web

import (
	"archive/zip"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/kpauljoseph/pagecutter/internal/pdf"
	"github.com/kpauljoseph/pagecutter/internal/split"
	"github.com/kpauljoseph/pagecutter/pkg/logger"
	"github.com/kpauljoseph/pagecutter/pkg/models"
	"github.com/kpauljoseph/pagecutter/pkg/utils"
)

//go:embed assets/index.html
var indexHTML []byte

const maxUploadBytes = 64 << 20

type session struct {
	dir     string
	pages   []string // file paths in reading order
	pdfPath string
}

// Server hosts the upload UI and the processing endpoints. Every
// request runs its own Paginate invocation; the only shared state is
// the session map, guarded by a mutex.
type Server struct {
	log       *logger.Logger
	baseDir   string
	paginator *split.Paginator

	mu       sync.Mutex
	sessions map[string]*session
}

func NewServer(baseDir string, log *logger.Logger) (*Server, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &Server{
		log:       log,
		baseDir:   baseDir,
		paginator: split.New(log),
		sessions:  make(map[string]*session),
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("GET /page/{sid}/{idx}", s.handlePage)
	mux.HandleFunc("GET /download/{sid}", s.handleDownload)
	mux.HandleFunc("GET /pdf/{sid}", s.handlePDF)
	return mux
}

func (s *Server) Cleanup() error {
	return os.RemoveAll(s.baseDir)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

type pageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type processResponse struct {
	SessionID string     `json:"session_id,omitempty"`
	Pages     []pageInfo `json:"pages,omitempty"`
	HasPDF    bool       `json:"has_pdf"`
	Error     string     `json:"error,omitempty"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeJSON(w, processResponse{Error: "expected multipart/form-data"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, processResponse{Error: "no file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeJSON(w, processResponse{Error: "failed to read upload"})
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.writeJSON(w, processResponse{Error: fmt.Sprintf("undecodable image: %v", err)})
		return
	}

	opts, pdfOpts, wantPDF, err := parseOptions(r)
	if err != nil {
		s.writeJSON(w, processResponse{Error: err.Error()})
		return
	}

	result, err := s.paginator.Paginate(r.Context(), img, opts)
	if err != nil {
		s.writeJSON(w, processResponse{Error: err.Error()})
		return
	}

	// Session id derives from content plus options so reprocessing the
	// same image with different settings gets its own session.
	sid := utils.BytesHash(append(data, []byte(fmt.Sprintf("%+v%v", opts, wantPDF))...))[:12]
	sessionDir := filepath.Join(s.baseDir, sid)

	writer, err := split.NewWriter(filepath.Join(sessionDir, "pages"), s.log)
	if err != nil {
		s.writeJSON(w, processResponse{Error: err.Error()})
		return
	}
	paths, err := writer.WritePages(result, "page")
	if err != nil {
		s.writeJSON(w, processResponse{Error: err.Error()})
		return
	}

	sess := &session{dir: sessionDir, pages: paths}

	if wantPDF {
		exporter, err := pdf.NewExporter(filepath.Join(sessionDir, "pdftmp"), s.log)
		if err != nil {
			s.writeJSON(w, processResponse{Error: err.Error()})
			return
		}
		sess.pdfPath = filepath.Join(sessionDir, "output.pdf")
		if err := exporter.Export(paths, sess.pdfPath, pdfOpts); err != nil {
			s.writeJSON(w, processResponse{Error: err.Error()})
			return
		}
	}

	s.mu.Lock()
	s.sessions[sid] = sess
	s.mu.Unlock()

	resp := processResponse{SessionID: sid, HasPDF: sess.pdfPath != ""}
	for _, p := range result.InReadingOrder() {
		b := p.Image.Bounds()
		resp.Pages = append(resp.Pages, pageInfo{Width: b.Dx(), Height: b.Dy()})
	}
	s.log.Info("Session %s: %d pages", sid, len(resp.Pages))
	s.writeJSON(w, resp)
}

func parseOptions(r *http.Request) (split.Options, pdf.ExportOptions, bool, error) {
	ratioW := intField(r, "ratio_w", 9)
	ratioH := intField(r, "ratio_h", 16)

	direction, err := models.ParseDirection(formValue(r, "direction", string(models.DirectionHorizontal)))
	if err != nil {
		return split.Options{}, pdf.ExportOptions{}, false, err
	}

	opts := split.Options{
		Ratio:     models.Ratio{Width: ratioW, Height: ratioH},
		Direction: direction,
		Tolerance: intField(r, "tolerance", 5),
		Padding:   intField(r, "padding", 20),
	}

	if r.FormValue("m_top") != "" {
		opts.Margins = &models.Margins{
			Top:    intField(r, "m_top", 0),
			Right:  intField(r, "m_right", 0),
			Bottom: intField(r, "m_bottom", 0),
			Left:   intField(r, "m_left", 0),
		}
	}

	wantPDF := r.FormValue("pdf") == "1"
	var pdfOpts pdf.ExportOptions
	if wantPDF {
		pdfOpts.DPI = intField(r, "pdf_dpi", pdf.DefaultDPI)
		wcm, errW := strconv.ParseFloat(formValue(r, "pdf_w", "0"), 64)
		hcm, errH := strconv.ParseFloat(formValue(r, "pdf_h", "0"), 64)
		if errW == nil && errH == nil && wcm > 0 && hcm > 0 {
			pdfOpts.Size = pdf.SizeCM{Width: wcm, Height: hcm}
		}
	}

	return opts, pdfOpts, wantPDF, nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r.PathValue("sid"))
	if sess == nil {
		http.NotFound(w, r)
		return
	}

	idx, err := strconv.Atoi(r.PathValue("idx"))
	if err != nil || idx < 0 || idx >= len(sess.pages) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, sess.pages[idx])
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r.PathValue("sid"))
	if sess == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=pages.zip")

	zw := zip.NewWriter(w)
	defer zw.Close()

	for i, path := range sess.pages {
		entry, err := zw.Create(fmt.Sprintf("page_%03d.png", i+1))
		if err != nil {
			s.log.Warn("zip entry failed: %v", err)
			return
		}
		f, err := os.Open(path)
		if err != nil {
			s.log.Warn("zip source missing: %v", err)
			return
		}
		_, err = io.Copy(entry, f)
		f.Close()
		if err != nil {
			s.log.Warn("zip copy failed: %v", err)
			return
		}
	}
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r.PathValue("sid"))
	if sess == nil || sess.pdfPath == "" {
		http.NotFound(w, r)
		return
	}
	if _, err := os.Stat(sess.pdfPath); err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=pages.pdf")
	http.ServeFile(w, r, sess.pdfPath)
}

func (s *Server) session(sid string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sid]
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response: %v", err)
	}
}

func formValue(r *http.Request, name, fallback string) string {
	if v := r.FormValue(name); v != "" {
		return v
	}
	return fallback
}

func intField(r *http.Request, name string, fallback int) int {
	v := r.FormValue(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
