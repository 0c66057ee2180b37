package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pocompose/backend-go/internal/config"
	"github.com/pocompose/backend-go/internal/domain"
	"github.com/pocompose/backend-go/internal/importer"
	"github.com/pocompose/backend-go/internal/order"
)

type DraftHandler struct {
	registry *order.Registry
	orderCfg config.OrderConfig
}

func NewDraftHandler(registry *order.Registry, orderCfg config.OrderConfig) *DraftHandler {
	return &DraftHandler{registry: registry, orderCfg: orderCfg}
}

// addLineRequest carries form-style string values for the numeric fields so
// the forgiving coercion policy applies uniformly to manual entry.
type addLineRequest struct {
	CatalogID     string   `json:"catalog_id"`
	SKU           string   `json:"sku"`
	ProductName   string   `json:"product_name"`
	Specification string   `json:"specification"`
	Quantity      string   `json:"quantity"`
	UOM           string   `json:"uom"`
	Currency      string   `json:"currency"`
	UnitPrice     string   `json:"unit_price"`
	TaxRate       string   `json:"tax_rate"`
	Length        string   `json:"length"`
	Width         string   `json:"width"`
	Height        string   `json:"height"`
	Notes         string   `json:"notes"`
	SerialTracked bool     `json:"serial_tracked"`
	LotTracked    bool     `json:"lot_tracked"`
	SerialNumbers []string `json:"serial_numbers"`
	LotNumbers    []string `json:"lot_numbers"`
}

func (r addLineRequest) toInput(cfg config.OrderConfig) domain.LineItemInput {
	uom := r.UOM
	if uom == "" {
		uom = cfg.DefaultUOM
	}
	currency := r.Currency
	if currency == "" {
		currency = cfg.DefaultCurrency
	}
	taxRate := cfg.DefaultTaxRate
	if r.TaxRate != "" {
		taxRate = domain.DecimalOrZero(r.TaxRate)
	}

	return domain.LineItemInput{
		CatalogID:     r.CatalogID,
		SKU:           r.SKU,
		ProductName:   r.ProductName,
		Specification: r.Specification,
		Quantity:      domain.IntOrZero(r.Quantity),
		UOM:           uom,
		Currency:      currency,
		UnitPrice:     domain.DecimalOrZero(r.UnitPrice),
		TaxRate:       taxRate,
		Length:        domain.DecimalOrZero(r.Length),
		Width:         domain.DecimalOrZero(r.Width),
		Height:        domain.DecimalOrZero(r.Height),
		Notes:         r.Notes,
		SerialTracked: r.SerialTracked,
		LotTracked:    r.LotTracked,
		SerialNumbers: r.SerialNumbers,
		LotNumbers:    r.LotNumbers,
	}
}

// updateFieldRequest is the loose (field, value) form accepted at the
// boundary; it is converted to a typed command before touching any line.
type updateFieldRequest struct {
	Field   string   `json:"field"`
	Value   string   `json:"value"`
	Tracked *bool    `json:"tracked,omitempty"`
	Numbers []string `json:"numbers,omitempty"`
}

func (r updateFieldRequest) toCommand() (domain.FieldUpdate, error) {
	switch r.Field {
	case "serial_tracking":
		return domain.SetSerialTracking{Tracked: r.Tracked != nil && *r.Tracked, Numbers: r.Numbers}, nil
	case "lot_tracking":
		return domain.SetLotTracking{Tracked: r.Tracked != nil && *r.Tracked, Numbers: r.Numbers}, nil
	default:
		return domain.ParseFieldUpdate(r.Field, r.Value)
	}
}

type batchUpdateRequest struct {
	LineIDs []string `json:"line_ids"`
	updateFieldRequest
}

type costsRequest struct {
	ShippingCost    string `json:"shipping_cost"`
	HandlingFee     string `json:"handling_fee"`
	OtherCharge     string `json:"other_charge"`
	ShippingTaxable bool   `json:"shipping_taxable"`
	ShippingTaxRate string `json:"shipping_tax_rate"`
}

func (r costsRequest) toCosts() domain.OrderCosts {
	return domain.OrderCosts{
		ShippingCost:    domain.DecimalOrZero(r.ShippingCost),
		HandlingFee:     domain.DecimalOrZero(r.HandlingFee),
		OtherCharge:     domain.DecimalOrZero(r.OtherCharge),
		ShippingTaxable: r.ShippingTaxable,
		ShippingTaxRate: domain.DecimalOrZero(r.ShippingTaxRate),
	}
}

// CreateDraft opens a new empty purchase order draft.
func (h *DraftHandler) CreateDraft(c *gin.Context) {
	d := h.registry.Create()
	log.Info().Str("draft_id", d.ID).Msg("draft created")

	c.JSON(http.StatusCreated, draftView(d))
}

// GetDraft returns the draft with its lines, costs and freshly aggregated
// totals.
func (h *DraftHandler) GetDraft(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, draftView(d))
}

// DeleteDraft discards a draft entirely.
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	if err := h.registry.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// AddLine appends one manually entered line to the draft.
func (h *DraftHandler) AddLine(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	line := d.AddLine(req.toInput(h.orderCfg))

	c.JSON(http.StatusCreated, gin.H{"line": line, "totals": d.Totals()})
}

// UpdateLine applies a single-field edit to one line.
func (h *DraftHandler) UpdateLine(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cmd, err := req.toCommand()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := d.UpdateLine(c.Param("lineId"), cmd)
	if err != nil {
		if errors.Is(err, order.ErrLineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "line item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update line"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"line": line, "totals": d.Totals()})
}

// BatchUpdate applies one field change to every line in the posted
// selection. The selection is consumed by this call: the client is expected
// to clear its checkboxes once the response arrives.
func (h *DraftHandler) BatchUpdate(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req batchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cmd, err := req.toCommand()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated := d.BatchUpdate(req.LineIDs, cmd)
	log.Info().Str("draft_id", d.ID).Str("field", domain.FieldName(cmd)).
		Int("lines", len(updated)).Msg("batch update applied")

	c.JSON(http.StatusOK, gin.H{"updated": updated, "totals": d.Totals()})
}

// RemoveLines deletes the posted selection and renumbers the remainder.
func (h *DraftHandler) RemoveLines(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req struct {
		LineIDs []string `json:"line_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	removed := d.RemoveLines(req.LineIDs)

	c.JSON(http.StatusOK, gin.H{"removed": removed, "lines": d.Lines(), "totals": d.Totals()})
}

// SetCosts replaces the order-level cost fields and returns the resulting
// totals.
func (h *DraftHandler) SetCosts(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	var req costsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	d.SetCosts(req.toCosts())

	c.JSON(http.StatusOK, gin.H{"costs": d.Costs(), "totals": d.Totals()})
}

// GetTotals returns the per-currency totals map and the grand total,
// recomputed from scratch on every call. The grand total is expressed in
// the reference currency without conversion; the per-currency breakdown is
// the number to trust.
func (h *DraftHandler) GetTotals(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	totals := d.Totals()

	c.JSON(http.StatusOK, gin.H{
		"by_currency":        totals.ByCurrency,
		"grand_total":        totals.GrandTotal,
		"reference_currency": h.orderCfg.ReferenceCurrency,
	})
}

// ExportLines downloads the draft's lines as CSV in import column order, so
// an exported draft round-trips through the import pipeline.
func (h *DraftHandler) ExportLines(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := importer.WriteLinesCSV(&buf, d.Lines()); err != nil {
		log.Error().Err(err).Str("draft_id", d.ID).Msg("failed to export lines")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export lines"})
		return
	}

	filename := fmt.Sprintf("po_lines_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *DraftHandler) draft(c *gin.Context) (*order.Draft, bool) {
	d, err := h.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		return nil, false
	}

	return d, true
}

func draftView(d *order.Draft) gin.H {
	return gin.H{
		"id":         d.ID,
		"created_at": d.CreatedAt,
		"lines":      d.Lines(),
		"costs":      d.Costs(),
		"totals":     d.Totals(),
	}
}
