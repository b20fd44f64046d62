package api

import (
	"bytes"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/AHLJvanderPlas/Podfy-app/internal/config"
	"github.com/AHLJvanderPlas/Podfy-app/internal/db"
	"github.com/AHLJvanderPlas/Podfy-app/internal/export"
	"github.com/AHLJvanderPlas/Podfy-app/internal/intake"
	"github.com/AHLJvanderPlas/Podfy-app/internal/logger"
	"github.com/AHLJvanderPlas/Podfy-app/internal/model"
	pkgerrors "github.com/AHLJvanderPlas/Podfy-app/pkg/errors"
)

type Handler struct {
	repo         db.Repository
	orchestrator *intake.Orchestrator
	cfg          *config.Config
	log          zerolog.Logger
}

func NewHandler(
	repo db.Repository,
	orchestrator *intake.Orchestrator,
	cfg *config.Config,
) *Handler {
	return &Handler{
		repo:         repo,
		orchestrator: orchestrator,
		cfg:          cfg,
		log:          logger.For("api"),
	}
}

// Upload accepts a multipart POD submission: one or more files plus form
// fields (brand, reference, email, issue flag, client coordinates,
// timezone). The uploader gets a success acknowledgment as soon as files
// are durably stored; notification outcomes never change the response.
func (h *Handler) Upload(c *gin.Context) {
	// Honeypot field: humans never fill it, naive bots do.
	if c.PostForm(h.cfg.Intake.HoneypotField) != "" {
		h.log.Warn().Str("request_id", c.GetString("request_id")).Msg("Honeypot field filled, dropping submission")
		c.JSON(http.StatusBadRequest, gin.H{"error": pkgerrors.ErrBotSuspected.Error()})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["file"]
	}
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files submitted"})
		return
	}

	files := make([]model.UploadedFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		data, err := readFile(fh, h.cfg.Intake.MaxUploadBytes)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file", "filename": fh.Filename})
			return
		}
		files = append(files, model.UploadedFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	sub := h.submissionFrom(c)
	results := h.orchestrator.ProcessBatch(c.Request.Context(), files, sub)

	anyAccepted := false
	for _, r := range results {
		if r.Accepted {
			anyAccepted = true
			break
		}
	}

	status := http.StatusOK
	if !anyAccepted {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"results": results})
}

func (h *Handler) GetTransaction(c *gin.Context) {
	recordID := c.Param("record_id")

	rec, err := h.repo.Get(c.Request.Context(), recordID)
	if errors.Is(err, pkgerrors.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("record_id", recordID).Msg("Failed to load transaction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ExportTransactions streams an xlsx reconciliation report for one calendar
// day (defaults to today in the service timezone).
func (h *Handler) ExportTransactions(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		loc, err := time.LoadLocation(h.cfg.Intake.DefaultTimezone)
		if err != nil {
			loc = time.UTC
		}
		date = time.Now().In(loc).Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return
	}

	recs, err := h.repo.ListByDate(c.Request.Context(), date)
	if err != nil {
		h.log.Error().Err(err).Str("date", date).Msg("Failed to list transactions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, recs); err != nil {
		h.log.Error().Err(err).Msg("Failed to build export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="transactions-`+date+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

func (h *Handler) submissionFrom(c *gin.Context) model.Submission {
	sub := model.Submission{
		BrandSlug:     c.PostForm("brand"),
		Reference:     c.PostForm("reference"),
		UploaderEmail: c.PostForm("email"),
		IssueFlagged:  parseBool(c.PostForm("issue")),
		Timezone:      c.PostForm("timezone"),
	}

	// Browser geolocation: a candidate with an unparsable half is handed to
	// the resolver as non-finite and dropped there.
	if latStr, lonStr := c.PostForm("lat"), c.PostForm("lon"); latStr != "" || lonStr != "" {
		cand := &model.Candidate{
			Lat: parseFloat(latStr),
			Lon: parseFloat(lonStr),
		}
		if acc := c.PostForm("accuracy"); acc != "" {
			v := parseFloat(acc)
			if !math.IsNaN(v) {
				cand.Accuracy = &v
			}
		}
		if ts := c.PostForm("position_time"); ts != "" {
			if v, err := strconv.ParseInt(ts, 10, 64); err == nil {
				cand.Timestamp = &v
			}
		}
		sub.ClientCoords = cand
	}

	// Network-inferred coordinates arrive as edge headers; always optional.
	latStr := c.GetHeader(h.cfg.Intake.GeoLatHeader)
	lonStr := c.GetHeader(h.cfg.Intake.GeoLonHeader)
	if latStr != "" || lonStr != "" {
		sub.NetworkCoords = &model.Candidate{
			Lat: parseFloat(latStr),
			Lon: parseFloat(lonStr),
		}
	}

	return sub
}

func readFile(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// One byte past the cap so the validator can distinguish too-large from
	// exactly-at-the-limit.
	return io.ReadAll(io.LimitReader(f, maxBytes+1))
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseBool(s string) bool {
	switch s {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
