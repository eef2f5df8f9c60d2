package mockserver

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/soundprobe/soundprobe/api/v1"
)

func respondData(c *gin.Context, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		zap.S().Named("mockserver").Errorw("failed to marshal response data", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Envelope{Code: 500, Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, v1.Envelope{Code: 200, Data: raw})
}

func respondError(c *gin.Context, status, code int, msg string) {
	c.JSON(status, v1.Envelope{Code: code, Error: msg})
}

// handleHealth answers the liveness probe.
// (GET /health)
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, v1.Envelope{Code: 200})
}

// handleInspire fabricates caption/lyrics/metadata from a text description.
// (POST /lm/inspire)
func (s *Server) handleInspire(c *gin.Context) {
	var req v1.InspireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, 400, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(c, http.StatusBadRequest, 400, "query is required")
		return
	}

	instrumental := req.Instrumental != nil && *req.Instrumental
	meta := fabricate(fabricateParams{
		Seed:         seedFor(req.Seed),
		Source:       req.Query,
		Instrumental: instrumental,
		Language:     req.VocalLanguage,
	})
	respondData(c, meta)
}

// handleFormat enhances caller-supplied caption/lyrics, echoing any explicit
// metadata constraints back into the result.
// (POST /lm/format)
func (s *Server) handleFormat(c *gin.Context) {
	var req v1.FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, 400, "invalid request body")
		return
	}
	if !req.HasInput() {
		respondError(c, http.StatusBadRequest, 400, "caption or lyrics is required")
		return
	}

	source := req.Caption
	if source == "" {
		source = req.Prompt
	}
	if source == "" {
		source = req.Lyrics
	}
	meta := fabricate(fabricateParams{
		Seed:     seedFor(req.Seed),
		Source:   source,
		Language: req.Language,
		Lyrics:   req.Lyrics,
	})

	// Constraints win over fabricated values.
	if req.Caption != "" {
		meta.Caption = req.Caption
	}
	if req.Bpm != nil {
		meta.Bpm = req.Bpm
	}
	if req.KeyScale != "" {
		meta.KeyScale = req.KeyScale
	}
	if req.TimeSignature != "" {
		meta.TimeSignature = req.TimeSignature
	}
	if req.Duration != nil {
		meta.Duration = req.Duration
	}
	respondData(c, meta)
}

// handleUnderstand analyzes audio given as a multipart upload, a server-side
// path, or pre-extracted codes.
// (POST /lm/understand)
func (s *Server) handleUnderstand(c *gin.Context) {
	contentType := c.ContentType()

	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, err := c.FormFile("audio")
		if err != nil {
			respondError(c, http.StatusBadRequest, 400, "audio file is required")
			return
		}
		meta := fabricate(fabricateParams{
			Seed:   seedForName(file.Filename),
			Source: strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename)),
		})
		respondData(c, meta)
		return
	}

	var req v1.UnderstandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, 400, "invalid request body")
		return
	}
	if !req.HasInput() {
		respondError(c, http.StatusBadRequest, 400, "audio, audio_path or codes is required")
		return
	}

	source := req.AudioPath
	if source == "" {
		source = "encoded audio"
	}
	meta := fabricate(fabricateParams{
		Seed:   seedForName(source),
		Source: strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)),
	})
	respondData(c, meta)
}
