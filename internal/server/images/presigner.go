// Package images hands out presigned S3 upload URLs for supply pictures.
package images

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/medsupply/internal/common"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// UploadExpiry is how long a presigned upload URL stays valid.
const UploadExpiry = 15 * time.Minute

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Settings locates the bucket and the credentials used to sign URLs.
type Settings struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

type Presigner struct {
	settings Settings
	now      func() time.Time
}

func NewPresigner(s Settings) *Presigner {
	return &Presigner{settings: s, now: time.Now}
}

// Upload is a presigned PUT target and the URL the object is served from.
type Upload struct {
	UploadURL string
	ImageURL  string
}

// ObjectKey builds a unique object key for productCode.
func (p *Presigner) ObjectKey(productCode, contentType string) string {
	d := p.now().UTC()
	code := unsafeKeyChars.ReplaceAllString(productCode, "_")
	return fmt.Sprintf("supplies/%s/%d/%02d/%s%s", code, d.Year(), d.Month(), uuid.New(), allowedContentTypes[contentType])
}

func (p *Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(p.settings.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.settings.AccessKey,
			p.settings.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.settings.BaseEndpoint)
		o.UsePathStyle = true
	})
	return newS3PresignClient(client), nil
}

// PresignUpload returns a PUT URL for a new picture of productCode.
func (p *Presigner) PresignUpload(ctx context.Context, productCode, contentType string) (*Upload, error) {
	if strings.TrimSpace(productCode) == "" {
		return nil, fmt.Errorf("%w: empty product code", common.ErrValidation)
	}
	if _, ok := allowedContentTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", common.ErrValidation, contentType)
	}

	pc, err := p.presignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	bucket := p.settings.Bucket
	key := p.ObjectKey(productCode, contentType)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(UploadExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &Upload{UploadURL: req.URL, ImageURL: p.objectURL(key)}, nil
}

func (p *Presigner) objectURL(key string) string {
	return strings.TrimRight(p.settings.BaseEndpoint, "/") + "/" + p.settings.Bucket + "/" + key
}
