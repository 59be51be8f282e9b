// Package eansearch is a Go client for the EAN-Search barcode API.
//
// It covers product lookups by GTIN/EAN, UPC, and ISBN, the search family
// (product name, similar products, barcode prefix, category), barcode image
// generation, checksum verification, and issuing-country resolution.
//
// # Usage
//
//	client, err := eansearch.New(os.Getenv("EANSEARCH_TOKEN"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	product, err := client.GtinLookup(ctx, "5099750442227", 0)
//	if errors.Is(err, eansearch.ErrProductNotFound) {
//		// barcode is not in the database
//	}
//
// All operations take a context and block for at most the configured
// timeout (180 seconds by default, see WithTimeout and SetTimeout).
//
// # Errors
//
// Lookup operations return ErrProductNotFound when the barcode is not in
// the database and ErrInvalidQuery when the service rejects the request as
// malformed. Search operations return an empty slice in both cases; an
// error from them always means transport or decoding failed. Rate limiting
// (HTTP 429) is retried transparently up to three attempts with a fixed
// pause between them.
//
// # Credits
//
// Every successful response carries the account's remaining request
// credits, mirrored by CreditsRemaining. Before the first call it reports
// -1. The counter is advisory; the service, not the client, enforces it.
//
// A Client is safe for sequential use. Sharing one instance across
// goroutines leaves the credits counter last-writer-wins; requests
// themselves are independent.
package eansearch
