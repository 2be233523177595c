package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/medsupply/internal/client/client"
	"github.com/dmitrijs2005/medsupply/internal/client/models"
	"github.com/dmitrijs2005/medsupply/internal/filex"
	"github.com/dmitrijs2005/medsupply/internal/netx"
)

// MaxImageSize is the largest image accepted for upload.
const MaxImageSize = 10 << 20

// ImageService uploads supply pictures to object storage.
type ImageService struct {
	presigner client.ImagePresigner
	supplies  *SupplyService
	access    *AccessControl
	http      *http.Client
}

func NewImageService(p client.ImagePresigner, s *SupplyService, ac *AccessControl, hc *http.Client) *ImageService {
	return &ImageService{presigner: p, supplies: s, access: ac, http: hc}
}

// Attach uploads the file at path and stores its URL on the supply.
func (s *ImageService) Attach(ctx context.Context, productCode, path, actorID string) (string, error) {
	if err := s.access.Require(ctx, actorID, models.PermUpload); err != nil {
		return "", err
	}
	current, err := s.supplies.Get(productCode)
	if err != nil {
		return "", err
	}
	if err := filex.CheckSize(path, MaxImageSize); err != nil {
		return "", err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	up, err := s.presigner.PresignImageUpload(ctx, productCode, contentType)
	if err != nil {
		return "", fmt.Errorf("presign upload for %s: %w", productCode, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return "", err
	}

	if err := netx.UploadToPresignedURL(ctx, s.http, up.UploadURL, contentType, f, fi.Size()); err != nil {
		return "", fmt.Errorf("upload image for %s: %w", productCode, err)
	}

	current.ImageURL = up.ImageURL
	if _, err := s.supplies.Update(ctx, productCode, current, actorID); err != nil {
		return "", err
	}
	return up.ImageURL, nil
}
