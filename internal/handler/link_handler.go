package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
)

const (
	// CreatePath занят под создание ссылок и не может быть коротким кодом
	CreatePath = "create"

	msgCreated        = "Short URL created successfully"
	msgRedirecting    = "Redirecting..."
	msgMissingBody    = "Missing request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgNotFound       = "URL not found"
	msgInvalidRequest = "Invalid request. Use POST /create or GET /{code}"
	msgCapacity       = "Could not allocate a unique short code, please retry"
	msgInternal       = "Internal server error"
)

// LinkService is what the handler needs from the link registry.
type LinkService interface {
	Create(ctx context.Context, longURL string) (*model.Link, error)
	Resolve(ctx context.Context, shortCode string) (string, error)
	Stats(ctx context.Context, shortCode string) (*model.Link, error)
}

type LinkHandler struct {
	links   LinkService
	baseURL string
}

func NewLinkHandler(links LinkService, baseURL string) *LinkHandler {
	return &LinkHandler{
		links:   links,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CreateLink обрабатывает POST /create
func (h *LinkHandler) CreateLink(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		h.errorJSON(c, http.StatusBadRequest, msgMissingBody)
		return
	}

	req, err := decodeCreateRequest(body)
	if err != nil {
		h.errorJSON(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	link, err := h.links.Create(c.Request.Context(), req.LongURL)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.CreateLinkResponse{
		ShortCode: link.ShortCode,
		ShortURL:  h.shortURL(link.ShortCode),
		LongURL:   link.LongURL,
		Message:   msgCreated,
	})
}

// ResolveLink обрабатывает GET /:shortCode и считает переход
func (h *LinkHandler) ResolveLink(c *gin.Context) {
	shortCode := c.Param("shortCode")
	if shortCode == "" || shortCode == CreatePath {
		h.InvalidRequest(c)
		return
	}

	longURL, err := h.links.Resolve(c.Request.Context(), shortCode)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// Редирект (HTTP 302 - Found) с JSON телом
	c.Header("Location", longURL)
	c.JSON(http.StatusFound, model.RedirectResponse{
		Message: msgRedirecting,
		URL:     longURL,
	})
}

// GetLinkStats returns the stored record without counting a visit.
func (h *LinkHandler) GetLinkStats(c *gin.Context) {
	shortCode := c.Param("shortCode")

	link, err := h.links.Stats(c.Request.Context(), shortCode)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LinkStatsResponse{
		ShortCode:  link.ShortCode,
		ShortURL:   h.shortURL(link.ShortCode),
		LongURL:    link.LongURL,
		ClickCount: link.ClickCount,
		CreatedAt:  link.CreatedAt,
	})
}

// decodeCreateRequest accepts exactly one JSON value; anything after it is an error.
func decodeCreateRequest(body []byte) (model.CreateLinkRequest, error) {
	var req model.CreateLinkRequest

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&req); err != nil {
		return req, err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, errors.New("unexpected data after JSON body")
	}

	return req, nil
}

// InvalidRequest answers every request that matches no supported route.
func (h *LinkHandler) InvalidRequest(c *gin.Context) {
	h.errorJSON(c, http.StatusBadRequest, msgInvalidRequest)
}

func (h *LinkHandler) shortURL(shortCode string) string {
	return h.baseURL + "/" + shortCode
}

// handleError обрабатывает ошибки и возвращает соответствующие HTTP коды
func (h *LinkHandler) handleError(c *gin.Context, err error) {
	if validationErr := apperrors.GetValidationError(err); validationErr != nil {
		h.errorJSON(c, http.StatusBadRequest, validationErr.Message)
		return
	}

	if errors.Is(err, apperrors.ErrLinkNotFound) {
		h.errorJSON(c, http.StatusNotFound, msgNotFound)
		return
	}

	if apperrors.IsCapacityError(err) {
		h.errorJSON(c, http.StatusServiceUnavailable, msgCapacity)
		return
	}

	// StoreError и неизвестные ошибки наружу не раскрываем
	_ = c.Error(err)
	h.errorJSON(c, http.StatusInternalServerError, msgInternal)
}

func (h *LinkHandler) errorJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{Error: message})
}
