package eansearch

import (
	"context"
	"net/url"
	"strconv"
)

// GtinLookup returns the product record for an EAN/GTIN barcode, or
// ErrProductNotFound when the barcode is not in the database. A language
// of 0 selects the service default (language code 1).
func (c *Client) GtinLookup(ctx context.Context, ean string, language int) (*Product, error) {
	params := url.Values{}
	params.Set("ean", ean)
	params.Set("language", strconv.Itoa(defaultLanguage(language)))

	records, err := c.lookupList(ctx, opBarcodeLookup, params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrProductNotFound
	}

	p := records[0].product()
	return &p, nil
}

// UpcLookup returns the product record for a UPC barcode, or
// ErrProductNotFound when the barcode is not in the database.
func (c *Client) UpcLookup(ctx context.Context, upc string, language int) (*Product, error) {
	params := url.Values{}
	params.Set("upc", upc)
	params.Set("language", strconv.Itoa(defaultLanguage(language)))

	records, err := c.lookupList(ctx, opUPCLookup, params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrProductNotFound
	}

	p := records[0].product()
	return &p, nil
}

// IsbnLookup returns the book title for an ISBN, or ErrProductNotFound
// when the ISBN is not in the database.
func (c *Client) IsbnLookup(ctx context.Context, isbn string) (string, error) {
	params := url.Values{}
	params.Set("isbn", isbn)

	records, err := c.lookupList(ctx, opISBNLookup, params)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", ErrProductNotFound
	}

	return records[0].Name, nil
}

// VerifyChecksum reports whether a barcode's check digit is consistent.
// The service marks a valid code with a literal "1"; anything else counts
// as invalid. ErrProductNotFound is returned when the service sends no
// verdict at all.
func (c *Client) VerifyChecksum(ctx context.Context, ean string) (bool, error) {
	params := url.Values{}
	params.Set("ean", ean)

	records, err := c.lookupList(ctx, opVerifyChecksum, params)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, ErrProductNotFound
	}

	return records[0].Valid == "1", nil
}

// IssuingCountry returns the country whose GS1 prefix range covers the
// barcode, or ErrProductNotFound when the service has no answer.
func (c *Client) IssuingCountry(ctx context.Context, ean string) (string, error) {
	params := url.Values{}
	params.Set("ean", ean)

	records, err := c.lookupList(ctx, opIssuingCountry, params)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", ErrProductNotFound
	}

	return records[0].IssuingCountry, nil
}
