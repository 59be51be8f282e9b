package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	eansearch "github.com/eansearch/eansearch-go"
	"github.com/eansearch/eansearch-go/pkg/gtin"
	score "github.com/eansearch/eansearch-go/pkg/scorer"
)

// ProductLookup defines the EAN-Search client surface the lookup handler needs.
type ProductLookup interface {
	GtinLookup(ctx context.Context, ean string, language int) (*eansearch.Product, error)
}

// LookupHandler proxies barcode lookups to the EAN-Search API and verifies
// checksums locally.
type LookupHandler struct {
	client ProductLookup
}

// NewLookupHandler creates a new LookupHandler.
func NewLookupHandler(client ProductLookup) *LookupHandler {
	return &LookupHandler{client: client}
}

// LookupInput is the request body for the lookup endpoint.
type LookupInput struct {
	Body struct {
		Barcode  string `json:"barcode" minLength:"8" maxLength:"14" doc:"EAN, UPC, or ISBN-13 barcode" example:"5099902895529"`
		Language int    `json:"language,omitempty" minimum:"0" maximum:"99" doc:"Preferred product name language code (0 = service default)" example:"1"`
	}
}

// LookupOutput is the response body for the lookup endpoint.
type LookupOutput struct {
	Body struct {
		Product   eansearch.Product `json:"product" doc:"Product record from the EAN-Search database"`
		Quality   int               `json:"quality" doc:"Composite data quality score (0-100)"`
		Breakdown score.Breakdown   `json:"breakdown" doc:"Per-factor quality scores"`
	}
}

// Lookup resolves a barcode against the EAN-Search database and scores the
// returned record. Nothing is persisted.
func (h *LookupHandler) Lookup(ctx context.Context, input *LookupInput) (*LookupOutput, error) {
	p, err := h.client.GtinLookup(ctx, input.Body.Barcode, input.Body.Language)
	if err != nil {
		if errors.Is(err, eansearch.ErrProductNotFound) {
			return nil, huma.Error404NotFound("product not found: " + input.Body.Barcode)
		}
		if errors.Is(err, eansearch.ErrDailyLimitReached) {
			return nil, huma.Error429TooManyRequests("daily API call budget exhausted")
		}
		return nil, huma.Error502BadGateway("EAN-Search API error: " + err.Error())
	}

	b := score.Score(score.ProductData{
		Name:           p.Name,
		CategoryID:     p.CategoryID,
		CategoryName:   p.CategoryName,
		IssuingCountry: p.IssuingCountry,
		ChecksumValid:  gtin.Valid(p.EAN),
	}, score.DefaultWeights())

	out := &LookupOutput{}
	out.Body.Product = *p
	out.Body.Quality = b.Total
	out.Body.Breakdown = b
	return out, nil
}

// VerifyInput is the request path for the checksum verify endpoint.
type VerifyInput struct {
	Barcode string `path:"barcode" doc:"Barcode to verify (GTIN-8/12/13/14)" example:"5099902895529"`
}

// VerifyOutput is the response body for the checksum verify endpoint.
type VerifyOutput struct {
	Body struct {
		Barcode string `json:"barcode" doc:"The barcode that was checked"`
		Valid   bool   `json:"valid" doc:"Whether the check digit is correct"`
		ISBN    bool   `json:"isbn" doc:"Whether the barcode is in the ISBN-13 bookland range"`
	}
}

// Verify checks a barcode's check digit locally without an API call.
func (h *LookupHandler) Verify(_ context.Context, input *VerifyInput) (*VerifyOutput, error) {
	out := &VerifyOutput{}
	out.Body.Barcode = input.Barcode
	out.Body.Valid = gtin.Valid(input.Barcode)
	out.Body.ISBN = gtin.IsISBN13(input.Barcode)
	return out, nil
}

// RegisterLookupRoutes registers lookup endpoints with the Huma API.
func RegisterLookupRoutes(api huma.API, h *LookupHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "lookup-barcode",
		Method:      http.MethodPost,
		Path:        "/api/v1/lookup",
		Summary:     "Look up a barcode",
		Description: "Resolves a barcode against the EAN-Search database and returns the scored product record without persisting it.",
		Tags:        []string{"lookup"},
		Errors: []int{
			http.StatusNotFound,
			http.StatusTooManyRequests,
			http.StatusBadGateway,
		},
	}, h.Lookup)

	huma.Register(api, huma.Operation{
		OperationID: "verify-checksum",
		Method:      http.MethodGet,
		Path:        "/api/v1/verify/{barcode}",
		Summary:     "Verify a barcode checksum",
		Description: "Checks the barcode's check digit locally without spending an API credit.",
		Tags:        []string{"lookup"},
	}, h.Verify)
}
