package order

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pocompose/backend-go/internal/domain"
	"github.com/pocompose/backend-go/internal/importer"
)

var (
	// ErrLineNotFound is returned when a line id does not reference an
	// existing line on the draft.
	ErrLineNotFound = errors.New("line item not found")

	// ErrNoImportSession is returned when confirm/cancel is called without a
	// parsed import session.
	ErrNoImportSession = errors.New("no import session in progress")

	// ErrNothingToImport is returned when confirmation is attempted while
	// every parsed row carries validation errors.
	ErrNothingToImport = errors.New("import has no valid rows to commit")
)

// Draft is the owned aggregate for one purchase order being composed: the
// ordered line item collection, the order-level cost fields, and at most one
// in-flight import session. All mutation goes through its methods; a mutex
// keeps reads consistent with concurrent edits, and every read hands out
// copies so callers never observe a line mid-update.
type Draft struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	lines   []domain.LineItem
	costs   domain.OrderCosts
	session *importer.Session
}

// NewDraft creates an empty draft with a fresh identifier.
func NewDraft() *Draft {
	return &Draft{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// Lines returns a copy of the current line item collection in line order.
func (d *Draft) Lines() []domain.LineItem {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.copyLines()
}

// AddLine appends a new line built from in and returns it.
func (d *Draft) AddLine(in domain.LineItemInput) domain.LineItem {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lines = append(d.lines, domain.NewLineItem(in))
	d.renumber()

	return d.lines[len(d.lines)-1]
}

// UpdateLine applies a single-field command to one line and returns the
// updated line. The operation itself never fails; only an unknown line id is
// an error.
func (d *Draft) UpdateLine(lineID string, cmd domain.FieldUpdate) (domain.LineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.lines {
		if d.lines[i].ID == lineID {
			domain.Apply(&d.lines[i], cmd)

			return d.lines[i], nil
		}
	}

	return domain.LineItem{}, fmt.Errorf("update %s on line %s: %w", domain.FieldName(cmd), lineID, ErrLineNotFound)
}

// BatchUpdate applies the identical single-field command to every line whose
// id is in selection, recomputing derived fields per line from that line's
// own other fields. Lines outside the selection are untouched, an empty
// selection is a no-op, and there is no partial application. The updated
// lines are returned in line order.
func (d *Draft) BatchUpdate(selection []string, cmd domain.FieldUpdate) []domain.LineItem {
	if len(selection) == 0 {
		return nil
	}

	selected := make(map[string]struct{}, len(selection))
	for _, id := range selection {
		selected[id] = struct{}{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var updated []domain.LineItem
	for i := range d.lines {
		if _, ok := selected[d.lines[i].ID]; !ok {
			continue
		}
		domain.Apply(&d.lines[i], cmd)
		updated = append(updated, d.lines[i])
	}

	return updated
}

// RemoveLines deletes every line whose id is in ids and renumbers the
// remainder densely from 1. It returns the number of lines removed. Callers
// presenting a selection are expected to clear it after a removal.
func (d *Draft) RemoveLines(ids []string) int {
	if len(ids) == 0 {
		return 0
	}

	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.lines[:0]
	removed := 0
	for _, li := range d.lines {
		if _, ok := doomed[li.ID]; ok {
			removed++
			continue
		}
		kept = append(kept, li)
	}
	d.lines = kept
	d.renumber()

	return removed
}

// SetCosts replaces the order-level cost fields.
func (d *Draft) SetCosts(costs domain.OrderCosts) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.costs = costs
}

// Costs returns the current order-level cost fields.
func (d *Draft) Costs() domain.OrderCosts {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.costs
}

// Totals aggregates the current lines and costs. The report is recomputed
// from scratch on every call against a consistent snapshot of the draft.
func (d *Draft) Totals() domain.TotalsReport {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Aggregate(d.lines, d.costs)
}

// BeginImport installs a freshly parsed session, discarding any session that
// was abandoned before confirmation.
func (d *Draft) BeginImport(s *importer.Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.session = s
}

// ImportSession returns the in-flight session, or nil when the pipeline is
// idle.
func (d *Draft) ImportSession() *importer.Session {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.session
}

// ConfirmImport converts every error-free row of the in-flight session into
// a real line item with a fresh identifier, appends them after the existing
// lines, and returns the committed lines. Invalid rows are discarded whole;
// prior line numbers are never altered. The session ends either way the
// call resolves, except that a session with zero valid rows refuses
// confirmation and stays open for the caller to cancel.
func (d *Draft) ConfirmImport() ([]domain.LineItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return nil, ErrNoImportSession
	}
	if d.session.ValidCount() == 0 {
		return nil, ErrNothingToImport
	}

	var committed []domain.LineItem
	for _, row := range d.session.Rows() {
		if !row.Valid() {
			continue
		}
		li := domain.NewLineItem(row.Input)
		d.lines = append(d.lines, li)
		committed = append(committed, li)
	}
	d.renumber()

	// Committed copies need the assigned line numbers.
	for i := range committed {
		committed[i].LineNo = d.lines[len(d.lines)-len(committed)+i].LineNo
	}

	d.session = nil

	return committed, nil
}

// CancelImport discards the in-flight session.
func (d *Draft) CancelImport() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return ErrNoImportSession
	}
	d.session = nil

	return nil
}

// renumber reassigns dense 1-based line numbers in collection order. It runs
// as a single pass after any membership change, never during iteration over
// the collection being changed.
func (d *Draft) renumber() {
	for i := range d.lines {
		d.lines[i].LineNo = i + 1
	}
}

func (d *Draft) copyLines() []domain.LineItem {
	out := make([]domain.LineItem, len(d.lines))
	copy(out, d.lines)

	return out
}
