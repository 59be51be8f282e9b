package eansearch

import "errors"

// ErrMissingToken is returned by New when no API token is supplied.
var ErrMissingToken = errors.New("eansearch: missing API token")

// ErrProductNotFound is returned by lookup operations when the barcode is
// not in the EAN-Search database.
var ErrProductNotFound = errors.New("eansearch: product not found")

// ErrInvalidQuery is returned when the service rejects a request as
// malformed (HTTP 400). The response body is not decoded in that case.
// Search operations swallow it and return an empty result set instead.
var ErrInvalidQuery = errors.New("eansearch: invalid query")
