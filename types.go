package eansearch

import "encoding/xml"

// Product is a single product record as returned by the EAN-Search API.
// The shape is owned by the remote service; fields absent from a response
// stay zero-valued.
type Product struct {
	EAN            string `json:"ean"`
	Name           string `json:"name"`
	CategoryID     string `json:"categoryId"`
	CategoryName   string `json:"categoryName"`
	IssuingCountry string `json:"issuingCountry"`
}

// lookupRecord is the wire shape of one entry in a lookup-family response.
// Lookups answer with a JSON array of these; which fields are populated
// depends on the operation.
type lookupRecord struct {
	EAN            string `json:"ean"`
	ISBN           string `json:"isbn"`
	Name           string `json:"name"`
	CategoryID     string `json:"categoryId"`
	CategoryName   string `json:"categoryName"`
	IssuingCountry string `json:"issuingCountry"`
	Valid          string `json:"valid"`
	Error          string `json:"error"`
}

func (r lookupRecord) product() Product {
	return Product{
		EAN:            r.EAN,
		Name:           r.Name,
		CategoryID:     r.CategoryID,
		CategoryName:   r.CategoryName,
		IssuingCountry: r.IssuingCountry,
	}
}

// searchResponse is the wire envelope of the search family: an object with
// a named product list instead of a bare array.
type searchResponse struct {
	ProductList []Product `json:"productlist"`
}

// imageResponse is the XML envelope of the barcode-image operation. The
// barcode element carries the image as base64.
type imageResponse struct {
	XMLName xml.Name `xml:"barcodes"`
	Product struct {
		EAN     string `xml:"ean"`
		Barcode string `xml:"barcode"`
	} `xml:"product"`
}
