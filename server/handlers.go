package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ti-oluwa/tranzlate"
)

type handler struct {
	translators Translators
	logger      *zap.Logger
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// TranslateRequest is the body of POST /api/v1/translate.
type TranslateRequest struct {
	Text      string            `json:"text"`
	Source    string            `json:"source"` // Default "auto"
	Target    string            `json:"target" binding:"required"`
	Engine    string            `json:"engine"`
	Markup    bool              `json:"markup"`
	Format    string            `json:"format" binding:"omitempty,oneof=html xml"`
	TimeoutMS int               `json:"timeout_ms" binding:"gte=0"`
	Proxies   map[string]string `json:"proxies"`
}

// TranslateResponse is the body returned by POST /api/v1/translate.
type TranslateResponse struct {
	Engine      string `json:"engine"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Translation string `json:"translation"`
}

// DetectRequest is the body of POST /api/v1/detect.
type DetectRequest struct {
	Text   string `json:"text" binding:"required"`
	Engine string `json:"engine"`
}

// DetectResponse is the body returned by POST /api/v1/detect.
type DetectResponse struct {
	Engine   string  `json:"engine"`
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

// LanguagesResponse is the body returned by GET /api/v1/languages.
type LanguagesResponse struct {
	Engine    string   `json:"engine"`
	Source    string   `json:"source,omitempty"`
	Languages []string `json:"languages"`
}

func (h *handler) engines(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"engines": h.translators.Engines()})
}

// languages handles GET /api/v1/languages. With ?source= it lists the
// targets for that source instead of the sources.
func (h *handler) languages(c *gin.Context) {
	t, err := h.translators.Translator(c.Query("engine"))
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}

	resp := LanguagesResponse{Engine: t.EngineName()}
	if source := c.Query("source"); source != "" {
		resp.Source = source
		resp.Languages = t.SupportedTargetLanguages(c.Request.Context(), source)
	} else {
		resp.Languages = t.SupportedLanguages(c.Request.Context())
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Source == "" {
		req.Source = tranzlate.AutoDetect
	}

	t, err := h.translators.Translator(req.Engine)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}

	opts := []tranzlate.CallOption{tranzlate.Markup(req.Markup)}
	if req.Format != "" {
		opts = append(opts, tranzlate.MarkupFormat(tranzlate.Format(req.Format)))
	}
	if req.TimeoutMS > 0 {
		opts = append(opts, tranzlate.Timeout(time.Duration(req.TimeoutMS)*time.Millisecond))
	}
	if len(req.Proxies) > 0 {
		opts = append(opts, tranzlate.Proxies(req.Proxies))
	}

	out, err := t.Translate(c.Request.Context(), req.Text, req.Source, req.Target, opts...)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, TranslateResponse{
		Engine:      t.EngineName(),
		Source:      req.Source,
		Target:      req.Target,
		Translation: out,
	})
}

func (h *handler) detect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	t, err := h.translators.Translator(req.Engine)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}

	d, err := t.DetectLanguage(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, DetectResponse{Engine: t.EngineName(), Language: d.Language, Score: d.Score})
}
