package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/jfcastellanos/marketplace-app/models"
)

// StoredImage son los metadatos que devuelve el almacen; es lo unico que
// se persiste en la base.
type StoredImage struct {
	URL      string
	PublicID string
	Ancho    int
	Alto     int
	Formato  string
	Bytes    int64
}

// ImageStore abstrae el almacen de imagenes (Cloudinary en produccion,
// stub en tests).
type ImageStore interface {
	Upload(ctx context.Context, negocio *models.Negocio, file *multipart.FileHeader) (StoredImage, error)
	Destroy(ctx context.Context, publicID string) error
}

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore toma las credenciales de CLOUDINARY_URL.
func NewCloudinaryStore() (*CloudinaryStore, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, err
	}
	cld.Config.URL.Secure = true
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, negocio *models.Negocio, file *multipart.FileHeader) (StoredImage, error) {
	src, err := file.Open()
	if err != nil {
		return StoredImage{}, err
	}
	defer src.Close()

	resp, err := s.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		Folder:         CloudFolder(negocio),
		ResourceType:   "image",
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
	})
	if err != nil {
		return StoredImage{}, err
	}

	return StoredImage{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
		Ancho:    resp.Width,
		Alto:     resp.Height,
		Formato:  resp.Format,
		Bytes:    int64(resp.Bytes),
	}, nil
}

func (s *CloudinaryStore) Destroy(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	return err
}

var carpetaInvalida = regexp.MustCompile(`[^\pL\pN_-]+`)

// CloudFolder agrupa las imagenes de cada negocio en su propia carpeta:
// marketplace/<razon_social>-NIT_<nit>
func CloudFolder(n *models.Negocio) string {
	nombre := strings.TrimSpace(n.RazonSocial)
	if nombre == "" {
		nombre = fmt.Sprintf("negocio_%d", n.ID)
	}
	nombre = carpetaInvalida.ReplaceAllString(nombre, "_")

	nit := strings.ReplaceAll(strings.TrimSpace(n.NIT), " ", "")
	if nit == "" {
		nit = fmt.Sprintf("%d", n.ID)
	}
	return fmt.Sprintf("marketplace/%s-NIT_%s", nombre, nit)
}

// TituloDesdeArchivo deriva el titulo de una imagen del nombre del archivo
// subido, sin extension y recortado a 30 caracteres.
func TituloDesdeArchivo(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Join(strings.Fields(base), " ")
	if r := []rune(base); len(r) > 30 {
		base = string(r[:30])
	}
	return base
}
