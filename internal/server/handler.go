package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valpere/keytrans/internal/translator"
)

// Translator is the behaviour the HTTP layer needs from the translation service.
type Translator interface {
	Translate(ctx context.Context, text string) (*translator.TranslateResponse, error)
}

type Handler struct {
	translator Translator
	logger     *zap.Logger
}

func NewHandler(t Translator, logger *zap.Logger) *Handler {
	return &Handler{translator: t, logger: logger}
}

// translateBody distinguishes a missing "text" field from an empty one:
// the empty string is valid input.
type translateBody struct {
	Text *string `json:"text" binding:"required"`
}

// Translate handles POST /translate.
func (h *Handler) Translate(c *gin.Context) {
	var body translateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	resp, err := h.translator.Translate(c.Request.Context(), *body.Text)
	if err != nil {
		h.logger.Error("Translation failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Stringer("kind", translator.KindOf(err)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	if resp.Keywords == nil {
		resp.Keywords = []string{}
	}
	c.JSON(http.StatusOK, resp)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
