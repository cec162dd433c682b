package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

// InstantCash calls POST /offer/instant-cash
func (c *Client) InstantCash(ctx context.Context, token string, req models.OfferRequest) (models.OfferResult, error) {
	var resp models.OfferResult
	err := c.do(ctx, http.MethodPost, "/offer/instant-cash", nil, token, req, &resp)
	return resp, err
}

// StartAuction calls POST /auction/start
func (c *Client) StartAuction(ctx context.Context, token, productID, scope string) (models.AuctionStart, error) {
	var resp models.AuctionStart
	body := map[string]string{"product_id": productID, "auction_scope": scope}
	err := c.do(ctx, http.MethodPost, "/auction/start", nil, token, body, &resp)
	return resp, err
}

type imageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// UploadImage calls POST /vehicle/upload-image with a multipart body
func (c *Client) UploadImage(ctx context.Context, token, vin, filename string, r io.Reader) (models.Image, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("vin", vin); err != nil {
		return models.Image{}, err
	}
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return models.Image{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return models.Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.Image{}, err
	}

	var resp imageResponse
	if err := c.send(ctx, http.MethodPost, "/vehicle/upload-image", nil, token, mw.FormDataContentType(), &buf, &resp); err != nil {
		return models.Image{}, err
	}
	return models.Image{ID: resp.ID, URL: resp.URL, UploadedAt: time.Now().UTC()}, nil
}

// DeleteImage calls POST /vehicle/delete-image
func (c *Client) DeleteImage(ctx context.Context, token, imageID string) error {
	var resp successBody
	if err := c.do(ctx, http.MethodPost, "/vehicle/delete-image", nil, token, map[string]string{"image_id": imageID}, &resp); err != nil {
		return err
	}
	return resp.check()
}
