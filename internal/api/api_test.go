package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/pocompose/backend-go/internal/api"
	"github.com/pocompose/backend-go/internal/config"
	"github.com/pocompose/backend-go/internal/order"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
		Order: config.OrderConfig{
			DefaultTaxRate:    decimal.NewFromInt(13),
			DefaultUOM:        "PCS",
			DefaultCurrency:   "USD",
			ReferenceCurrency: "USD",
		},
		Import: config.ImportConfig{MaxUploadBytes: 1 << 20},
	}

	return api.NewRouter(order.NewRegistry(), cfg)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
		}
	}

	return w, parsed
}

func createDraft(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/drafts", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create draft status = %d", w.Code)
	}
	id, _ := resp["id"].(string)
	if id == "" {
		t.Fatal("create draft returned no id")
	}

	return id
}

func TestDraftLifecycle(t *testing.T) {
	router := newTestRouter()
	draftID := createDraft(t, router)

	// Add a line with string-typed numerics.
	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/drafts/"+draftID+"/lines", map[string]any{
		"sku":          "SKU-1",
		"product_name": "Widget",
		"quantity":     "10",
		"unit_price":   "5.00",
		"tax_rate":     "13",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add line status = %d, body %s", w.Code, w.Body.String())
	}
	line := resp["line"].(map[string]any)
	if line["line_amount"] != "56.5" {
		t.Errorf("line_amount = %v, want 56.5", line["line_amount"])
	}
	lineID := line["id"].(string)

	// A bad keystroke coerces to zero instead of failing.
	w, resp = doJSON(t, router, http.MethodPatch, "/api/v1/drafts/"+draftID+"/lines/"+lineID, map[string]any{
		"field": "quantity",
		"value": "not-a-number",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update line status = %d, body %s", w.Code, w.Body.String())
	}
	line = resp["line"].(map[string]any)
	if line["line_amount"] != "0" {
		t.Errorf("line_amount after coerced edit = %v, want 0", line["line_amount"])
	}

	// Unknown field names are rejected at the boundary.
	w, _ = doJSON(t, router, http.MethodPatch, "/api/v1/drafts/"+draftID+"/lines/"+lineID, map[string]any{
		"field": "line_amount",
		"value": "999",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("editing a derived field status = %d, want 400", w.Code)
	}

	// Costs feed the grand total.
	w, resp = doJSON(t, router, http.MethodPut, "/api/v1/drafts/"+draftID+"/costs", map[string]any{
		"shipping_cost":     "10",
		"handling_fee":      "5",
		"other_charge":      "2",
		"shipping_taxable":  true,
		"shipping_tax_rate": "10",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("set costs status = %d", w.Code)
	}
	totals := resp["totals"].(map[string]any)
	if totals["grand_total"] != "18" {
		t.Errorf("grand_total = %v, want 18 (line amount is zero)", totals["grand_total"])
	}
}

func TestImportFlow(t *testing.T) {
	router := newTestRouter()
	draftID := createDraft(t, router)

	csv := "SKU Code,Product Name,Specifications,Quantity,UOM,Currency,Unit Price,Tax Rate (%),Notes\n" +
		"SKU-1,Widget,,10,PCS,USD,5.00,,\n" +
		",Nameless,,1,PCS,USD,1.00,,\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "lines.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(csv)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/drafts/"+draftID+"/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("preview status = %d, body %s", w.Code, w.Body.String())
	}

	var preview map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &preview); err != nil {
		t.Fatalf("unmarshal preview: %v", err)
	}
	if preview["valid_rows"] != float64(1) || preview["invalid_rows"] != float64(1) {
		t.Errorf("preview counts = %v/%v, want 1/1", preview["valid_rows"], preview["invalid_rows"])
	}
	if preview["can_confirm"] != true {
		t.Error("expected confirmable preview")
	}

	wc, resp := doJSON(t, router, http.MethodPost, "/api/v1/drafts/"+draftID+"/import/confirm", nil)
	if wc.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body %s", wc.Code, wc.Body.String())
	}
	committed := resp["committed"].([]any)
	if len(committed) != 1 {
		t.Fatalf("committed %d lines, want 1", len(committed))
	}

	// Second confirm has nothing pending.
	wc, _ = doJSON(t, router, http.MethodPost, "/api/v1/drafts/"+draftID+"/import/confirm", nil)
	if wc.Code != http.StatusConflict {
		t.Errorf("re-confirm status = %d, want 409", wc.Code)
	}
}

func TestTemplateDownload(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/import/template", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("template status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "attachment") {
		t.Error("missing attachment disposition")
	}
	if !strings.HasPrefix(w.Body.String(), "SKU Code,Product Name") {
		t.Errorf("unexpected template body: %q", w.Body.String()[:40])
	}
}
