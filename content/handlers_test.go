package content

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore is an in-memory Store for handler tests.
type memStore struct {
	articles map[int64]*Article
	albums   map[int64]*Album
	images   map[int64]*Image
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		articles: make(map[int64]*Article),
		albums:   make(map[int64]*Album),
		images:   make(map[int64]*Image),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) ListArticles(_ context.Context, publishedOnly bool) ([]Article, error) {
	out := make([]Article, 0)
	for _, a := range m.articles {
		if !publishedOnly || a.Published {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) GetArticleBySlug(_ context.Context, slug string) (*Article, error) {
	for _, a := range m.articles {
		if a.Slug == slug {
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) CreateArticle(_ context.Context, a *Article) error {
	a.ID = m.id()
	a.Created = time.Now()
	a.Updated = a.Created
	m.articles[a.ID] = a
	return nil
}

func (m *memStore) UpdateArticle(_ context.Context, a *Article) error {
	if _, ok := m.articles[a.ID]; !ok {
		return ErrNotFound
	}
	m.articles[a.ID] = a
	return nil
}

func (m *memStore) DeleteArticle(_ context.Context, id int64) error {
	if _, ok := m.articles[id]; !ok {
		return ErrNotFound
	}
	delete(m.articles, id)
	return nil
}

func (m *memStore) ListAlbums(_ context.Context) ([]Album, error) {
	out := make([]Album, 0)
	for _, a := range m.albums {
		out = append(out, *a)
	}
	return out, nil
}

func (m *memStore) CreateAlbum(_ context.Context, a *Album) error {
	a.ID = m.id()
	a.Created = time.Now()
	m.albums[a.ID] = a
	return nil
}

func (m *memStore) CreateImage(_ context.Context, img *Image) error {
	img.ID = m.id()
	img.Created = time.Now()
	m.images[img.ID] = img
	return nil
}

func (m *memStore) GetImage(_ context.Context, id int64) (*Image, error) {
	img, ok := m.images[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *img
	return &copied, nil
}

func (m *memStore) DeleteImage(_ context.Context, id int64) error {
	if _, ok := m.images[id]; !ok {
		return ErrNotFound
	}
	delete(m.images, id)
	return nil
}

// memObjects is an in-memory ObjectStore.
type memObjects struct {
	objects map[string][]byte
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string][]byte)}
}

func (m *memObjects) Upload(_ context.Context, key string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://media.example/" + key, nil
}

func testRouter(store Store, objects ObjectStore) *gin.Engine {
	h := NewHandler(store, objects)
	router := gin.New()
	router.GET("/articles", h.ListArticles)
	router.GET("/articles/:slug", h.GetArticle)
	router.POST("/articles", h.CreateArticle)
	router.PUT("/articles/:id", h.UpdateArticle)
	router.DELETE("/articles/:id", h.DeleteArticle)
	router.GET("/albums", h.ListAlbums)
	router.POST("/albums", h.CreateAlbum)
	router.POST("/images", h.UploadImage)
	router.GET("/images/:id", h.GetImage)
	router.DELETE("/images/:id", h.DeleteImage)
	return router
}

func TestArticleLifecycle(t *testing.T) {
	store := newMemStore()
	router := testRouter(store, newMemObjects())

	body := `{"slug":"hello","title":"Hello","body":"first post","published":true}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/articles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/articles/hello", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"hello"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/articles", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	update := `{"slug":"hello","title":"Hello again","body":"edited","published":true}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest("PUT", "/articles/1", strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/articles/1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/articles/hello", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateArticleValidation(t *testing.T) {
	router := testRouter(newMemStore(), newMemObjects())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/articles", strings.NewReader(`{"title":"no slug"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestAlbumCreateAndList(t *testing.T) {
	router := testRouter(newMemStore(), newMemObjects())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/albums", strings.NewReader(`{"title":"Travel"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/albums", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Travel")
}

func multipartUpload(t *testing.T, fieldName, fileName string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestImageUploadAndFetch(t *testing.T) {
	store := newMemStore()
	objects := newMemObjects()
	router := testRouter(store, objects)

	buf, contentType := multipartUpload(t, "file", "photo.jpg", []byte("jpeg-bytes"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/images", buf)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, objects.objects, 1)

	// fetch redirects to the presigned URL
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/images/1", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "https://media.example/images/"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/images/1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, objects.objects)
}

func TestImageUploadMissingFile(t *testing.T) {
	router := testRouter(newMemStore(), newMemObjects())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/images", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetImageNotFound(t *testing.T) {
	router := testRouter(newMemStore(), newMemObjects())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/images/99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/images/bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
