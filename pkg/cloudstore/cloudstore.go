// Package cloudstore wraps Cloudinary uploads for task-ad creative images.
package cloudstore

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Client uploads ad creatives and returns delivery URLs.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, publicID string) (url string, err error)
	Delete(ctx context.Context, publicID string) error
}

const (
	creativeFolder = "task-ads"
	// Eager transformation applied at upload so the PWA gets a right-sized
	// creative without client-side resizing.
	creativeEager = "q_auto,f_auto,w_640,c_fill"
)

var eagerAsyncFalse = false

type clientImpl struct {
	cld *cloudinary.Cloudinary
}

func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &clientImpl{cld: cld}, nil
}

func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, publicID string) (string, error) {
	result, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:     creativeFolder,
		PublicID:   publicID,
		Eager:      creativeEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", err
	}
	if len(result.Eager) > 0 {
		return result.Eager[0].SecureURL, nil
	}
	return result.SecureURL, nil
}

func (c *clientImpl) Delete(ctx context.Context, publicID string) error {
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: fmt.Sprintf("%s/%s", creativeFolder, publicID),
	})
	return err
}

// Noop returns a client that does nothing, for deployments without
// Cloudinary credentials. Ads then keep whatever URL the admin typed in.
func Noop() Client { return noopClient{} }

type noopClient struct{}

func (noopClient) UploadImage(ctx context.Context, file io.Reader, publicID string) (string, error) {
	return "", fmt.Errorf("cloudstore: not configured")
}

func (noopClient) Delete(ctx context.Context, publicID string) error { return nil }
