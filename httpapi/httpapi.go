// Package httpapi serves registered collection schemas over HTTP.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reoring/docskema/registry"
	"github.com/reoring/docskema/validator"
)

// Handler serves the collections held by Registry.
type Handler struct {
	Registry *registry.Registry
}

// ListCollections responds with the sorted collection names.
func (h *Handler) ListCollections(c *gin.Context) {
	c.JSON(http.StatusOK, h.Registry.List())
}

// GetCollection responds with the validator document and the settings that
// travel with it.
func (h *Handler) GetCollection(c *gin.Context) {
	name := c.Param("name")
	res, err := h.Registry.Get(name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":             name,
		"validator":        res.Validator(),
		"defaults":         res.Defaults,
		"validationAction": res.ValidationAction,
		"validationLevel":  res.ValidationLevel,
		"timestamps":       res.Timestamps,
	})
}

// GetCommand responds with the collMod (default) or create command selected by
// the op query parameter.
func (h *Handler) GetCommand(c *gin.Context) {
	name := c.Param("name")
	res, err := h.Registry.Get(name)
	if err != nil {
		writeError(c, err)
		return
	}
	op := c.DefaultQuery("op", validator.OpCollMod)
	doc, ok := validator.ForOp(op, name, res)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown op: " + op})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, registry.ErrCollectionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// NewRouter wires the handlers onto a gin engine. A nil logger disables
// request logging.
func NewRouter(reg *registry.Registry, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{Registry: reg}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/collections", h.ListCollections)
	r.GET("/collections/:name", h.GetCollection)
	r.GET("/collections/:name/command", h.GetCommand)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
