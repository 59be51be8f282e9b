// Package main implements a mock EAN-Search API server for local
// development. It answers the query-string protocol from an in-memory
// product table so the SDK, the CLI, and the ean-watch service can run
// without a real API token.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/eansearch/eansearch-go/pkg/gtin"
)

const (
	defaultImageWidth  = 102
	defaultImageHeight = 50
)

// product is one row of the mock database, shaped like the records the
// real service returns.
type product struct {
	EAN            string `json:"ean"`
	Name           string `json:"name"`
	CategoryID     string `json:"categoryId"`
	CategoryName   string `json:"categoryName"`
	IssuingCountry string `json:"issuingCountry"`
}

// mockAPI holds the state shared across requests.
type mockAPI struct {
	logger    *log.Logger
	products  []product
	pageSize  int
	rateEvery int64 // answer 429 on every Nth request, 0 disables

	requests atomic.Int64
	credits  atomic.Int64
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	seedFile := flag.String("seed", "", "JSON product seed file (empty = built-in table)")
	pageSize := flag.Int("page-size", 10, "products per search result page")
	rateLimit := flag.Int64("rate-limit", 0, "answer 429 on every Nth request (0 = off)")
	credits := flag.Int64("credits", 10000, "starting credit balance")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.DebugLevel})

	products := defaultProducts()
	if *seedFile != "" {
		seeded, err := loadSeed(*seedFile)
		if err != nil {
			logger.Error("failed to load seed file", "path", *seedFile, "err", err)
			os.Exit(1)
		}
		products = seeded
	}
	logger.Info("product table loaded", "products", len(products))

	api := &mockAPI{
		logger:    logger,
		products:  products,
		pageSize:  *pageSize,
		rateEvery: *rateLimit,
	}
	api.credits.Store(*credits)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api", api.handle)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock EAN-Search server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func loadSeed(path string) ([]product, error) {
	data, err := os.ReadFile(path) //nolint:gosec // seed path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var products []product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return products, nil
}

// defaultProducts is the built-in table used when no seed file is given.
func defaultProducts() []product {
	return []product{
		{EAN: "5099902895529", Name: "Michael Jackson - Thriller (CD Album)", CategoryID: "15", CategoryName: "Music", IssuingCountry: "UK"},
		{EAN: "5099750442227", Name: "Michael Jackson - Bad (CD Album)", CategoryID: "15", CategoryName: "Music", IssuingCountry: "UK"},
		{EAN: "4006381333931", Name: "Stabilo Boss Original Highlighter Yellow", CategoryID: "960", CategoryName: "Office Supplies", IssuingCountry: "Germany"},
		{EAN: "0885909950805", Name: "Apple Lightning to USB Cable (1 m)", CategoryID: "45", CategoryName: "Consumer Electronics", IssuingCountry: "USA"},
		{EAN: "9781234567897", Name: "Introduction to Barcode Systems", CategoryID: "20", CategoryName: "Books", IssuingCountry: "Bookland (ISBN)"},
		{EAN: "7501031311309", Name: "Bimbo Pan Blanco Grande", CategoryID: "30", CategoryName: "Food", IssuingCountry: "Mexico"},
	}
}

func (m *mockAPI) handle(w http.ResponseWriter, r *http.Request) {
	n := m.requests.Add(1)
	if m.rateEvery > 0 && n%m.rateEvery == 0 {
		m.logger.Warn("forced rate limit", "request", n)
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	q := r.URL.Query()
	if q.Get("token") == "" {
		m.badRequest(w, "missing token")
		return
	}

	op := q.Get("op")
	m.logger.Debug("request", "op", op, "query", r.URL.RawQuery)

	switch op {
	case "barcode-lookup":
		m.handleBarcodeLookup(w, q.Get("ean"), q.Get("language"))
	case "upc-lookup":
		m.handleUpcLookup(w, q.Get("upc"))
	case "isbn-lookup":
		m.handleIsbnLookup(w, q.Get("isbn"))
	case "verify-checksum":
		m.handleVerifyChecksum(w, q.Get("ean"))
	case "issuing-country":
		m.handleIssuingCountry(w, q.Get("ean"))
	case "product-search":
		m.handleSearch(w, q.Get("name"), q.Get("page"), matchSubstring)
	case "similar-product-search":
		m.handleSearch(w, q.Get("name"), q.Get("page"), matchAnyWord)
	case "barcode-prefix-search":
		m.handlePrefixSearch(w, q.Get("prefix"), q.Get("page"))
	case "category-search":
		m.handleCategorySearch(w, q.Get("category"), q.Get("name"), q.Get("page"))
	case "barcode-image":
		m.handleBarcodeImage(w, q.Get("ean"), q.Get("width"), q.Get("height"))
	default:
		m.badRequest(w, "unknown op "+op)
	}
}

func (m *mockAPI) badRequest(w http.ResponseWriter, reason string) {
	m.logger.Warn("rejected request", "reason", reason)
	http.Error(w, reason, http.StatusBadRequest)
}

// spend debits one credit and stamps the countdown header. The real
// service debits every answered operation the same way.
func (m *mockAPI) spend(w http.ResponseWriter) {
	remaining := m.credits.Add(-1)
	if remaining < 0 {
		remaining = 0
		m.credits.Store(0)
	}
	w.Header().Set("X-Credits-Remaining", strconv.FormatInt(remaining, 10))
}

func (m *mockAPI) writeJSON(w http.ResponseWriter, v any) {
	m.spend(w)
	w.Header().Set("Content-Type", "application/json")
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func (m *mockAPI) find(ean string) *product {
	for i := range m.products {
		if m.products[i].EAN == ean {
			return &m.products[i]
		}
	}
	return nil
}

func (m *mockAPI) handleBarcodeLookup(w http.ResponseWriter, ean, language string) {
	if !validBarcode(ean) {
		m.badRequest(w, "invalid ean")
		return
	}
	if language != "" {
		if _, err := strconv.Atoi(language); err != nil {
			m.badRequest(w, "invalid language")
			return
		}
	}

	p := m.find(ean)
	if p == nil {
		m.writeJSON(w, []product{})
		return
	}
	m.writeJSON(w, []product{*p})
}

func (m *mockAPI) handleUpcLookup(w http.ResponseWriter, upc string) {
	if len(upc) != 12 || !allDigits(upc) {
		m.badRequest(w, "invalid upc")
		return
	}

	// A UPC-A is an EAN-13 with a leading zero.
	p := m.find("0" + upc)
	if p == nil {
		m.writeJSON(w, []product{})
		return
	}
	m.writeJSON(w, []product{*p})
}

func (m *mockAPI) handleIsbnLookup(w http.ResponseWriter, isbn string) {
	if !validBarcode(isbn) {
		m.badRequest(w, "invalid isbn")
		return
	}

	p := m.find(isbn)
	if p == nil || !gtin.IsISBN13(p.EAN) {
		m.writeJSON(w, []map[string]string{})
		return
	}
	m.writeJSON(w, []map[string]string{{"isbn": isbn, "name": p.Name}})
}

func (m *mockAPI) handleVerifyChecksum(w http.ResponseWriter, ean string) {
	if ean == "" || !allDigits(ean) {
		m.badRequest(w, "invalid ean")
		return
	}

	valid := "0"
	if gtin.Valid(ean) {
		valid = "1"
	}
	m.writeJSON(w, []map[string]string{{"ean": ean, "valid": valid}})
}

func (m *mockAPI) handleIssuingCountry(w http.ResponseWriter, ean string) {
	if !validBarcode(ean) {
		m.badRequest(w, "invalid ean")
		return
	}
	m.writeJSON(w, []map[string]string{{"ean": ean, "issuingCountry": prefixCountry(ean)}})
}

// matchFunc decides whether a product name matches a search term.
type matchFunc func(name, term string) bool

func matchSubstring(name, term string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// matchAnyWord is the loose matcher behind similar-product-search: any
// word of the term hitting the name counts.
func matchAnyWord(name, term string) bool {
	lower := strings.ToLower(name)
	for _, word := range strings.Fields(strings.ToLower(term)) {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func (m *mockAPI) handleSearch(w http.ResponseWriter, name, page string, match matchFunc) {
	if name == "" {
		m.badRequest(w, "missing name")
		return
	}

	var matched []product
	for i := range m.products {
		if match(m.products[i].Name, name) {
			matched = append(matched, m.products[i])
		}
	}
	m.writePage(w, matched, page)
}

func (m *mockAPI) handlePrefixSearch(w http.ResponseWriter, prefix, page string) {
	if prefix == "" || !allDigits(prefix) {
		m.badRequest(w, "invalid prefix")
		return
	}

	var matched []product
	for i := range m.products {
		if strings.HasPrefix(m.products[i].EAN, prefix) {
			matched = append(matched, m.products[i])
		}
	}
	m.writePage(w, matched, page)
}

func (m *mockAPI) handleCategorySearch(w http.ResponseWriter, category, name, page string) {
	if category == "" {
		m.badRequest(w, "missing category")
		return
	}

	var matched []product
	for i := range m.products {
		if m.products[i].CategoryID != category {
			continue
		}
		if name != "" && !matchSubstring(m.products[i].Name, name) {
			continue
		}
		matched = append(matched, m.products[i])
	}
	m.writePage(w, matched, page)
}

// writePage slices one page out of the matched set and wraps it in the
// search envelope. Pages past the end answer an empty list.
func (m *mockAPI) writePage(w http.ResponseWriter, matched []product, pageStr string) {
	page := 0
	if pageStr != "" {
		v, err := strconv.Atoi(pageStr)
		if err != nil || v < 0 {
			m.badRequest(w, "invalid page")
			return
		}
		page = v
	}

	start := page * m.pageSize
	if start >= len(matched) {
		matched = nil
	} else {
		end := min(start+m.pageSize, len(matched))
		matched = matched[start:end]
	}

	if matched == nil {
		matched = []product{}
	}
	m.writeJSON(w, map[string][]product{"productlist": matched})
}

// xmlImage is the XML envelope of the barcode-image operation.
type xmlImage struct {
	XMLName xml.Name `xml:"barcodes"`
	Product struct {
		EAN     string `xml:"ean"`
		Barcode string `xml:"barcode"`
	} `xml:"product"`
}

func (m *mockAPI) handleBarcodeImage(w http.ResponseWriter, ean, widthStr, heightStr string) {
	if !validBarcode(ean) {
		m.badRequest(w, "invalid ean")
		return
	}
	width, err := parseDimension(widthStr, defaultImageWidth)
	if err != nil {
		m.badRequest(w, "invalid width")
		return
	}
	height, err := parseDimension(heightStr, defaultImageHeight)
	if err != nil {
		m.badRequest(w, "invalid height")
		return
	}

	img, err := renderBarcodePNG(ean, width, height)
	if err != nil {
		m.logger.Error("rendering barcode image", "err", err)
		http.Error(w, "image rendering failed", http.StatusInternalServerError)
		return
	}

	var resp xmlImage
	resp.Product.EAN = ean
	resp.Product.Barcode = base64.StdEncoding.EncodeToString(img)

	m.spend(w)
	w.Header().Set("Content-Type", "text/xml")
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	xml.NewEncoder(w).Encode(resp)
}

func parseDimension(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("bad dimension %q", s)
	}
	return v, nil
}

// renderBarcodePNG draws a deterministic stripe pattern keyed on the
// barcode digits. Not a scannable symbol, but a real PNG of the right
// size for clients that decode the payload.
func renderBarcodePNG(ean string, width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	for x := range width {
		digit := int(ean[x*len(ean)/width] - '0')
		col := white
		if (digit+x)%3 == 0 {
			col = black
		}
		for y := range height {
			img.Set(x, y, col)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func validBarcode(code string) bool {
	switch len(code) {
	case 8, 12, 13, 14:
		return allDigits(code)
	default:
		return false
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// prefixCountry resolves the GS1 prefix of a barcode to its issuing
// country, covering the ranges the default table needs plus the common
// ones. EAN-8 codes carry the prefix in the same leading digits.
func prefixCountry(ean string) string {
	if len(ean) == 14 {
		ean = ean[1:] // GTIN-14 wraps an EAN-13 with an indicator digit
	}
	if len(ean) < 3 {
		return "Unknown"
	}

	prefix, err := strconv.Atoi(ean[:3])
	if err != nil {
		return "Unknown"
	}

	ranges := []struct {
		lo, hi  int
		country string
	}{
		{0, 139, "USA"},
		{300, 379, "France"},
		{400, 440, "Germany"},
		{450, 459, "Japan"},
		{460, 469, "Russia"},
		{490, 499, "Japan"},
		{500, 509, "UK"},
		{540, 549, "Belgium"},
		{690, 699, "China"},
		{750, 750, "Mexico"},
		{760, 769, "Switzerland"},
		{800, 839, "Italy"},
		{840, 849, "Spain"},
		{870, 879, "Netherlands"},
		{880, 881, "South Korea"},
		{930, 939, "Australia"},
		{978, 979, "Bookland (ISBN)"},
	}
	for _, r := range ranges {
		if prefix >= r.lo && prefix <= r.hi {
			return r.country
		}
	}
	return "Unknown"
}
