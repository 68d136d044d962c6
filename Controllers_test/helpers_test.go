package Controllers_test

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jfcastellanos/marketplace-app/models"
	"github.com/jfcastellanos/marketplace-app/services"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func doRaw(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// stubStore reemplaza al almacen externo en los tests: no sube nada y
// devuelve metadatos predecibles.
type stubStore struct {
	uploads   int
	destroyed []string
}

func (s *stubStore) Upload(_ context.Context, _ *models.Negocio, file *multipart.FileHeader) (services.StoredImage, error) {
	s.uploads++
	return services.StoredImage{
		URL:      fmt.Sprintf("https://cdn.test/%s", file.Filename),
		PublicID: fmt.Sprintf("test/%s-%d", file.Filename, s.uploads),
		Ancho:    800,
		Alto:     600,
		Formato:  "jpg",
		Bytes:    file.Size,
	}, nil
}

func (s *stubStore) Destroy(_ context.Context, publicID string) error {
	s.destroyed = append(s.destroyed, publicID)
	return nil
}
