package content

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkwell-press/inkwell/httpserver/response"
	"github.com/inkwell-press/inkwell/log"
)

// ObjectStore is the object-storage contract used for image payloads.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

const presignExpiry = 15 * time.Minute

// Handler serves the content API. Authentication and throttling are
// applied by the router middleware, not here.
type Handler struct {
	store   Store
	objects ObjectStore
	logger  *log.Logger
}

func NewHandler(store Store, objects ObjectStore) *Handler {
	return &Handler{
		store:   store,
		objects: objects,
		logger:  log.New("content"),
	}
}

type articleRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

// ListArticles returns published articles, newest first.
func (h *Handler) ListArticles(c *gin.Context) {
	articles, err := h.store.ListArticles(c.Request.Context(), true)
	if err != nil {
		response.Http500(c, err)
		return
	}
	response.JSON(c, http.StatusOK, articles)
}

func (h *Handler) GetArticle(c *gin.Context) {
	article, err := h.store.GetArticleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Http404(c)
			return
		}
		response.Http500(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article)
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	article := &Article{
		Slug:      req.Slug,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
	}
	if err := h.store.CreateArticle(c.Request.Context(), article); err != nil {
		response.Http500(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, article)
}

func (h *Handler) UpdateArticle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Http400(c, "invalid article id")
		return
	}

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	article := &Article{
		ID:        id,
		Slug:      req.Slug,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
	}
	if err := h.store.UpdateArticle(c.Request.Context(), article); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Http404(c)
			return
		}
		response.Http500(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article)
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Http400(c, "invalid article id")
		return
	}
	if err := h.store.DeleteArticle(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Http404(c)
			return
		}
		response.Http500(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type albumRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) ListAlbums(c *gin.Context) {
	albums, err := h.store.ListAlbums(c.Request.Context())
	if err != nil {
		response.Http500(c, err)
		return
	}
	response.JSON(c, http.StatusOK, albums)
}

func (h *Handler) CreateAlbum(c *gin.Context) {
	var req albumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	album := &Album{
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.store.CreateAlbum(c.Request.Context(), album); err != nil {
		response.Http500(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, album)
}

// UploadImage receives a multipart file, streams it to the object store
// and records its metadata.
func (h *Handler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Http400(c, "missing file field")
		return
	}

	var albumID *int64
	if v := c.PostForm("albumId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.Http400(c, "invalid album id")
			return
		}
		albumID = &id
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Http500(c, err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	key := "images/" + uuid.NewString() + filepath.Ext(fileHeader.Filename)

	if err := h.objects.Upload(c.Request.Context(), key, file, contentType); err != nil {
		response.Http500(c, err)
		return
	}

	img := &Image{
		AlbumID:     albumID,
		FileName:    fileHeader.Filename,
		ObjectKey:   key,
		ContentType: contentType,
		Size:        fileHeader.Size,
	}
	if err := h.store.CreateImage(c.Request.Context(), img); err != nil {
		// metadata write failed, drop the orphan object
		if cleanupErr := h.objects.Delete(c.Request.Context(), key); cleanupErr != nil {
			h.logger.Warn("orphan object cleanup failed", map[string]interface{}{
				"key":   key,
				"error": cleanupErr.Error(),
			})
		}
		response.Http500(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, img)
}

// GetImage redirects the caller to a time-limited object store URL.
func (h *Handler) GetImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Http400(c, "invalid image id")
		return
	}

	img, err := h.store.GetImage(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Http404(c)
			return
		}
		response.Http500(c, err)
		return
	}

	url, err := h.objects.PresignGet(c.Request.Context(), img.ObjectKey, presignExpiry)
	if err != nil {
		response.Http500(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *Handler) DeleteImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Http400(c, "invalid image id")
		return
	}

	img, err := h.store.GetImage(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Http404(c)
			return
		}
		response.Http500(c, err)
		return
	}

	if err := h.objects.Delete(c.Request.Context(), img.ObjectKey); err != nil {
		response.Http500(c, err)
		return
	}
	if err := h.store.DeleteImage(c.Request.Context(), id); err != nil && !errors.Is(err, ErrNotFound) {
		response.Http500(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
