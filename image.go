package eansearch

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
)

// Default barcode image dimensions in pixels.
const (
	DefaultImageWidth  = 102
	DefaultImageHeight = 50
)

// BarcodeImage renders the barcode as an image and returns the raw PNG
// bytes. A width or height of 0 selects the service defaults (102x50).
// Unlike every other operation this one answers in XML, with the image
// carried as base64 inside the envelope.
func (c *Client) BarcodeImage(ctx context.Context, ean string, width, height int) ([]byte, error) {
	if width <= 0 {
		width = DefaultImageWidth
	}
	if height <= 0 {
		height = DefaultImageHeight
	}

	params := url.Values{}
	params.Set("ean", ean)
	params.Set("width", strconv.Itoa(width))
	params.Set("height", strconv.Itoa(height))

	body, err := c.fetch(ctx, opBarcodeImage, params)
	if err != nil {
		return nil, err
	}

	var resp imageResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing barcode-image response: %w", err)
	}
	if resp.Product.Barcode == "" {
		return nil, fmt.Errorf("barcode-image response for %s has no image payload", ean)
	}

	img, err := base64.StdEncoding.DecodeString(resp.Product.Barcode)
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}
	return img, nil
}
