package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestAPI(pageSize int) *mockAPI {
	api := &mockAPI{
		logger:   log.New(io.Discard),
		products: defaultProducts(),
		pageSize: pageSize,
	}
	api.credits.Store(10000)
	return api
}

func doRequest(t *testing.T, api *mockAPI, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api?token=test&"+query, http.NoBody)
	w := httptest.NewRecorder()
	api.handle(w, req)
	return w
}

func decodeProducts(t *testing.T, body *bytes.Buffer) []product {
	t.Helper()
	var records []product
	if err := json.NewDecoder(body).Decode(&records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return records
}

func decodeSearch(t *testing.T, body *bytes.Buffer) []product {
	t.Helper()
	var resp map[string][]product
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	list, ok := resp["productlist"]
	if !ok {
		t.Fatal("expected productlist envelope")
	}
	return list
}

func TestHandle_MissingToken(t *testing.T) {
	api := newTestAPI(10)
	req := httptest.NewRequest(http.MethodGet, "/api?op=barcode-lookup&ean=5099902895529", http.NoBody)
	w := httptest.NewRecorder()

	api.handle(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandle_UnknownOp(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=price-check&ean=5099902895529")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestBarcodeLookup_Found(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=barcode-lookup&ean=5099902895529&language=1")

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	records := decodeProducts(t, w.Body)
	if len(records) != 1 {
		t.Fatalf("records=%d, want 1", len(records))
	}
	if records[0].Name != "Michael Jackson - Thriller (CD Album)" {
		t.Errorf("name=%q, want the Thriller record", records[0].Name)
	}
	if records[0].CategoryName != "Music" {
		t.Errorf("categoryName=%q, want Music", records[0].CategoryName)
	}
	if records[0].IssuingCountry != "UK" {
		t.Errorf("issuingCountry=%q, want UK", records[0].IssuingCountry)
	}
}

func TestBarcodeLookup_NotFound(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=barcode-lookup&ean=4006381333932")

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}
	if records := decodeProducts(t, w.Body); len(records) != 0 {
		t.Errorf("records=%d, want 0", len(records))
	}
}

func TestBarcodeLookup_GarbledEAN(t *testing.T) {
	api := newTestAPI(10)
	for _, ean := range []string{"", "12345", "50999028955zz"} {
		w := doRequest(t, api, "op=barcode-lookup&ean="+ean)
		if w.Code != http.StatusBadRequest {
			t.Errorf("ean=%q: status=%d, want %d", ean, w.Code, http.StatusBadRequest)
		}
	}
}

func TestUpcLookup(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=upc-lookup&upc=885909950805")

	records := decodeProducts(t, w.Body)
	if len(records) != 1 {
		t.Fatalf("records=%d, want 1", len(records))
	}
	if records[0].EAN != "0885909950805" {
		t.Errorf("ean=%s, want the zero-padded EAN-13", records[0].EAN)
	}
}

func TestIsbnLookup(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=isbn-lookup&isbn=9781234567897")

	var records []map[string]string
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records=%d, want 1", len(records))
	}
	if records[0]["name"] != "Introduction to Barcode Systems" {
		t.Errorf("name=%q, want the book record", records[0]["name"])
	}
}

func TestVerifyChecksum(t *testing.T) {
	tests := []struct {
		name string
		ean  string
		want string
	}{
		{name: "valid EAN-13", ean: "5099902895529", want: "1"},
		{name: "altered check digit", ean: "5099902895521", want: "0"},
		{name: "valid EAN-8", ean: "96385074", want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(10)
			w := doRequest(t, api, "op=verify-checksum&ean="+tt.ean)

			var records []map[string]string
			if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("records=%d, want 1", len(records))
			}
			if records[0]["valid"] != tt.want {
				t.Errorf("valid=%q, want %q", records[0]["valid"], tt.want)
			}
		})
	}
}

func TestIssuingCountry(t *testing.T) {
	tests := []struct {
		ean  string
		want string
	}{
		{ean: "5099902895529", want: "UK"},
		{ean: "4006381333931", want: "Germany"},
		{ean: "0885909950805", want: "USA"},
		{ean: "9781234567897", want: "Bookland (ISBN)"},
		{ean: "7501031311309", want: "Mexico"},
	}

	for _, tt := range tests {
		api := newTestAPI(10)
		w := doRequest(t, api, "op=issuing-country&ean="+tt.ean)

		var records []map[string]string
		if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("records=%d, want 1", len(records))
		}
		if records[0]["issuingCountry"] != tt.want {
			t.Errorf("ean=%s: country=%q, want %q", tt.ean, records[0]["issuingCountry"], tt.want)
		}
	}
}

func TestProductSearch_SubstringMatch(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=product-search&name=michael+jackson")

	products := decodeSearch(t, w.Body)
	if len(products) != 2 {
		t.Fatalf("products=%d, want both albums", len(products))
	}
}

func TestProductSearch_MissingName(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=product-search")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestProductSearch_Paging(t *testing.T) {
	api := newTestAPI(1)

	page0 := decodeSearch(t, doRequest(t, api, "op=product-search&name=michael").Body)
	page1 := decodeSearch(t, doRequest(t, api, "op=product-search&name=michael&page=1").Body)
	page9 := decodeSearch(t, doRequest(t, api, "op=product-search&name=michael&page=9").Body)

	if len(page0) != 1 || len(page1) != 1 {
		t.Fatalf("page sizes=%d,%d, want 1,1", len(page0), len(page1))
	}
	if page0[0].EAN == page1[0].EAN {
		t.Error("expected different products on consecutive pages")
	}
	if len(page9) != 0 {
		t.Errorf("page past the end returned %d products, want 0", len(page9))
	}
}

func TestSimilarSearch_AnyWordMatches(t *testing.T) {
	api := newTestAPI(10)

	// Substring search cannot match across both records; word-wise can.
	strict := decodeSearch(t, doRequest(t, api, "op=product-search&name=thriller+highlighter").Body)
	loose := decodeSearch(t, doRequest(t, api, "op=similar-product-search&name=thriller+highlighter").Body)

	if len(strict) != 0 {
		t.Errorf("strict search matched %d, want 0", len(strict))
	}
	if len(loose) != 2 {
		t.Errorf("similar search matched %d, want 2", len(loose))
	}
}

func TestPrefixSearch(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=barcode-prefix-search&prefix=50999")

	products := decodeSearch(t, w.Body)
	if len(products) != 2 {
		t.Fatalf("products=%d, want 2", len(products))
	}
	for _, p := range products {
		if p.EAN[:5] != "50999" {
			t.Errorf("ean=%s does not carry the prefix", p.EAN)
		}
	}
}

func TestPrefixSearch_GarbledPrefix(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=barcode-prefix-search&prefix=50ab")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCategorySearch(t *testing.T) {
	api := newTestAPI(10)

	all := decodeSearch(t, doRequest(t, api, "op=category-search&category=15").Body)
	if len(all) != 2 {
		t.Fatalf("category 15 matched %d, want 2", len(all))
	}

	narrowed := decodeSearch(t, doRequest(t, api, "op=category-search&category=15&name=thriller").Body)
	if len(narrowed) != 1 {
		t.Fatalf("narrowed category search matched %d, want 1", len(narrowed))
	}
	if narrowed[0].EAN != "5099902895529" {
		t.Errorf("ean=%s, want the Thriller record", narrowed[0].EAN)
	}
}

func TestBarcodeImage(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=barcode-image&ean=5099902895529&width=300&height=150")

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}

	var resp xmlImage
	if err := xml.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding XML envelope: %v", err)
	}
	if resp.Product.EAN != "5099902895529" {
		t.Errorf("ean=%s, want the requested barcode", resp.Product.EAN)
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Product.Barcode)
	if err != nil {
		t.Fatalf("decoding base64 payload: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decoding PNG payload: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 300 || bounds.Dy() != 150 {
		t.Errorf("image=%dx%d, want 300x150", bounds.Dx(), bounds.Dy())
	}
}

func TestBarcodeImage_DefaultDimensions(t *testing.T) {
	api := newTestAPI(10)
	w := doRequest(t, api, "op=barcode-image&ean=5099902895529")

	var resp xmlImage
	if err := xml.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding XML envelope: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Product.Barcode)
	if err != nil {
		t.Fatalf("decoding base64 payload: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decoding PNG payload: %v", err)
	}
	if img.Bounds().Dx() != defaultImageWidth || img.Bounds().Dy() != defaultImageHeight {
		t.Errorf("image=%dx%d, want the %dx%d default",
			img.Bounds().Dx(), img.Bounds().Dy(), defaultImageWidth, defaultImageHeight)
	}
}

func TestCreditsCountdown(t *testing.T) {
	api := newTestAPI(10)
	api.credits.Store(5)

	first := doRequest(t, api, "op=barcode-lookup&ean=5099902895529")
	second := doRequest(t, api, "op=verify-checksum&ean=5099902895529")

	if got := first.Header().Get("X-Credits-Remaining"); got != "4" {
		t.Errorf("first response credits=%s, want 4", got)
	}
	if got := second.Header().Get("X-Credits-Remaining"); got != "3" {
		t.Errorf("second response credits=%s, want 3", got)
	}
}

func TestCreditsCountdown_FloorsAtZero(t *testing.T) {
	api := newTestAPI(10)
	api.credits.Store(1)

	doRequest(t, api, "op=barcode-lookup&ean=5099902895529")
	w := doRequest(t, api, "op=barcode-lookup&ean=5099902895529")

	if got := w.Header().Get("X-Credits-Remaining"); got != "0" {
		t.Errorf("credits=%s, want 0", got)
	}
}

func TestRateLimit_EveryNthRequest(t *testing.T) {
	api := newTestAPI(10)
	api.rateEvery = 2

	first := doRequest(t, api, "op=barcode-lookup&ean=5099902895529")
	second := doRequest(t, api, "op=barcode-lookup&ean=5099902895529")
	third := doRequest(t, api, "op=barcode-lookup&ean=5099902895529")

	if first.Code != http.StatusOK {
		t.Errorf("first status=%d, want %d", first.Code, http.StatusOK)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second status=%d, want %d", second.Code, http.StatusTooManyRequests)
	}
	if third.Code != http.StatusOK {
		t.Errorf("third status=%d, want %d", third.Code, http.StatusOK)
	}
}

func TestLoadSeed(t *testing.T) {
	path := t.TempDir() + "/seed.json"
	seed := `[{"ean":"4006381333931","name":"Test Product","categoryId":"1","categoryName":"Test","issuingCountry":"Germany"}]`
	if err := writeFile(path, seed); err != nil {
		t.Fatalf("writing seed: %v", err)
	}

	products, err := loadSeed(path)
	if err != nil {
		t.Fatalf("loadSeed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("products=%d, want 1", len(products))
	}
	if products[0].Name != "Test Product" {
		t.Errorf("name=%q, want Test Product", products[0].Name)
	}
}

func TestLoadSeed_BadJSON(t *testing.T) {
	path := t.TempDir() + "/seed.json"
	if err := writeFile(path, "{not json"); err != nil {
		t.Fatalf("writing seed: %v", err)
	}

	if _, err := loadSeed(path); err == nil {
		t.Fatal("expected error for malformed seed file")
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
