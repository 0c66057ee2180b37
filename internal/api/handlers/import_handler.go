package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/pocompose/backend-go/internal/importer"
	"github.com/pocompose/backend-go/internal/order"
)

type ImportHandler struct {
	registry  *order.Registry
	defaults  importer.Defaults
	maxUpload int64
}

func NewImportHandler(registry *order.Registry, defaults importer.Defaults, maxUpload int64) *ImportHandler {
	return &ImportHandler{registry: registry, defaults: defaults, maxUpload: maxUpload}
}

type importRowView struct {
	SourceLine    int             `json:"source_line"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	Specification string          `json:"specification,omitempty"`
	Quantity      int             `json:"quantity"`
	UOM           string          `json:"uom"`
	Currency      string          `json:"currency"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Notes         string          `json:"notes,omitempty"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	LineAmount    decimal.Decimal `json:"line_amount"`
	Errors        []string        `json:"errors"`
}

func sessionView(s *importer.Session) gin.H {
	rows := s.Rows()
	views := make([]importRowView, 0, len(rows))
	for _, r := range rows {
		views = append(views, importRowView{
			SourceLine:    r.SourceLine,
			SKU:           r.Input.SKU,
			ProductName:   r.Input.ProductName,
			Specification: r.Input.Specification,
			Quantity:      r.Input.Quantity,
			UOM:           r.Input.UOM,
			Currency:      r.Input.Currency,
			UnitPrice:     r.Input.UnitPrice,
			TaxRate:       r.Input.TaxRate,
			Notes:         r.Input.Notes,
			TaxAmount:     r.TaxAmount,
			LineAmount:    r.LineAmount,
			Errors:        r.Errors,
		})
	}

	return gin.H{
		"filename":     s.Filename,
		"rows":         views,
		"valid_rows":   s.ValidCount(),
		"invalid_rows": s.InvalidCount(),
		"can_confirm":  s.CanConfirm(),
	}
}

// Preview receives an uploaded file, runs the parse and validate phases,
// and returns every row with its error list for the confirm decision.
// Nothing is committed here; a re-upload simply replaces the pending
// session.
func (h *ImportHandler) Preview(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	var reader io.Reader = file
	if h.maxUpload > 0 {
		if header.Size > h.maxUpload {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
			return
		}
		reader = io.LimitReader(file, h.maxUpload+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("failed to read upload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	session, err := importer.Parse(header.Filename, data, h.defaults)
	if err != nil {
		// File-shape failure: the attempt is over and the pipeline stays
		// idle for this draft.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d.BeginImport(session)
	log.Info().Str("draft_id", d.ID).Str("filename", header.Filename).
		Int("valid", session.ValidCount()).Int("invalid", session.InvalidCount()).
		Msg("import parsed")

	c.JSON(http.StatusOK, sessionView(session))
}

// Confirm commits every valid row of the pending session to the draft.
func (h *ImportHandler) Confirm(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	committed, err := d.ConfirmImport()
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNoImportSession):
			c.JSON(http.StatusConflict, gin.H{"error": "no import is pending for this draft"})
		case errors.Is(err, order.ErrNothingToImport):
			c.JSON(http.StatusConflict, gin.H{"error": "no valid rows to commit"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm import"})
		}
		return
	}

	log.Info().Str("draft_id", d.ID).Int("committed", len(committed)).Msg("import confirmed")

	c.JSON(http.StatusOK, gin.H{
		"committed": committed,
		"lines":     d.Lines(),
		"totals":    d.Totals(),
	})
}

// Cancel abandons the pending session without touching the draft.
func (h *ImportHandler) Cancel(c *gin.Context) {
	d, ok := h.draft(c)
	if !ok {
		return
	}

	if err := d.CancelImport(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no import is pending for this draft"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Template downloads the import template with its example rows.
func (h *ImportHandler) Template(c *gin.Context) {
	data, err := importer.Template()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate import template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate template"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+importer.TemplateFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *ImportHandler) draft(c *gin.Context) (*order.Draft, bool) {
	d, err := h.registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "draft not found"})
		return nil, false
	}

	return d, true
}
