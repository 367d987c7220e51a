package handler

import (
	"errors"
	"net/http"

	"selfie-relay/internal/logger"
	"selfie-relay/internal/relay"
	"selfie-relay/internal/session"

	"github.com/gin-gonic/gin"
)

// Handler owns the HTTP boundary of the relay: the initiator-facing
// issue and polling endpoints, and the executor-facing selfie page,
// resolve and finish endpoints. All transport parsing lives here; the
// relay core only ever sees maps and tokens.
type Handler struct {
	relay       *relay.Relay
	sdkURL      string
	livenessURL string
}

func NewHandler(r *relay.Relay, sdkURL, livenessURL string) *Handler {
	return &Handler{
		relay:       r,
		sdkURL:      sdkURL,
		livenessURL: livenessURL,
	}
}

// RegisterRoutes installs the relay routes. secret guards the
// initiator-facing issue endpoint when a shared secret is configured.
func (h *Handler) RegisterRoutes(r *gin.Engine, secret gin.HandlerFunc) {
	up := r.Group("/v")
	if secret != nil {
		up.Use(secret)
	}
	up.POST("/up", h.issue)

	r.GET("/v/status", h.status)
	r.GET("/selfie", h.selfiePage)
	r.GET("/selfie/resolve", h.resolve)
	r.POST("/selfie/finish", h.finish)
}

// issueRequest mirrors what the initiator extension sends.
type issueRequest struct {
	Role     string         `json:"role"`
	URL      string         `json:"url"`
	ClientID string         `json:"clientId"`
	TS       int64          `json:"ts"`
	Meta     map[string]any `json:"meta"`
}

func (h *Handler) issue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid json body",
		})
		return
	}

	meta := normalizeMeta(req.Meta, req.URL)

	issued, err := h.relay.Issue(c.Request.Context(), meta)
	if err != nil {
		var verr *relay.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "missing required meta fields",
				"missing": verr.Missing,
			})
			return
		}

		logger.Error("issue failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal error",
		})
		return
	}

	logger.Info("session issued", map[string]any{
		"role":      req.Role,
		"client_id": req.ClientID,
		"ip":        c.ClientIP(),
		"token":     issued.Token,
	})

	// Response keys match what the legacy extension expects:
	// i=ip, p=payload, s=sdk url, t/u=ids, v=liveness url, c=selfie url.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"i":       c.ClientIP(),
		"p":       issued.Payload,
		"s":       h.sdkURL,
		"t":       meta["transactionId"],
		"u":       meta["userId"],
		"v":       h.livenessURL,
		"c":       issued.ReferenceURL,
		"token":   issued.Token,
	})
}

func (h *Handler) resolve(c *gin.Context) {
	token := c.Query("c")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "missing c param",
		})
		return
	}

	meta, err := h.relay.Resolve(c.Request.Context(), token)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"meta":    meta,
	})
}

type finishRequest struct {
	Token  string         `json:"token"`
	Result map[string]any `json:"result"`
}

func (h *Handler) finish(c *gin.Context) {
	var req finishRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid json body",
		})
		return
	}

	err := h.relay.Complete(c.Request.Context(), req.Token, req.Result)
	if errors.Is(err, session.ErrAlreadyCompleted) {
		// Extensions retry on network blips; a duplicate finish means
		// the result is already recorded, which is success for them.
		c.JSON(http.StatusOK, gin.H{
			"success":          true,
			"alreadyCompleted": true,
		})
		return
	}
	if err != nil {
		h.renderError(c, err)
		return
	}

	logger.Info("session completed", map[string]any{
		"token": req.Token,
		"ip":    c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) status(c *gin.Context) {
	token := c.Query("c")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "missing c param",
		})
		return
	}

	report, err := h.relay.Status(c.Request.Context(), token)
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := gin.H{
		"success": true,
		"status":  report.Status,
		"meta":    report.Meta,
	}
	if report.Result != nil {
		resp["result"] = report.Result
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "unknown or expired session",
		})
		return
	}

	logger.Error("relay request failed", map[string]any{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "internal error",
	})
}
