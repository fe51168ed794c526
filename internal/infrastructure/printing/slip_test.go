package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingRenderer struct {
	req *RenderRequest
	err error
}

func (c *capturingRenderer) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	c.req = req
	if c.err != nil {
		return nil, c.err
	}
	return &RenderResult{PDFData: []byte("%PDF-1.7")}, nil
}

func (c *capturingRenderer) Close() error { return nil }

func slipRecord(t *testing.T) *returns.ReturnRecord {
	t.Helper()
	saleID := uuid.New()
	refund := decimal.RequireFromString("1234.5")
	r, err := returns.NewReturnRecord(returns.CreateInput{
		ReturnNumber:   "RTN-2026-00042",
		SourceType:     returns.SourceTypeSale,
		SourceID:       &saleID,
		ReturnCategory: returns.CategoryCustomerReturn,
		ReturnReason:   "Changed mind <really>",
		LocationID:     uuid.New(),
		ProductID:      uuid.New(),
		ProductName:    "Phone case",
		Quantity:       2,
		ProductValue:   decimal.RequireFromString("1234.5"),
		RefundAmount:   &refund,
		CustomerName:   "Ada Lovelace",
		CustomerPhone:  "0700000000",
		CreatedBy:      uuid.New(),
	})
	require.NoError(t, err)
	r.CreatedAt = time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	return r
}

func TestSlipRenderer_BuildSlipData(t *testing.T) {
	s, err := NewSlipRenderer(&capturingRenderer{}, SlipConfig{CompanyName: "Acme", Currency: "EUR", Language: "en"})
	require.NoError(t, err)

	d := s.BuildSlipData(slipRecord(t))
	assert.Equal(t, "Acme", d.CompanyName)
	assert.Equal(t, "Received", d.StatusLabel)
	assert.Equal(t, "2026-03-04 09:30", d.CreatedAt)
	assert.Equal(t, "EUR 1,234.50", d.UnitValue)
	assert.Equal(t, "EUR 2,469.00", d.TotalValue)
	assert.Equal(t, "EUR 1,234.50", d.RefundAmount)
	assert.Equal(t, "Customer Return", d.Category)
	assert.Equal(t, "Sale", d.Source)
	assert.Empty(t, d.Condition)
	assert.Empty(t, d.Resolution)
	assert.Empty(t, d.CompletedAt)
}

func TestSlipRenderer_GermanGrouping(t *testing.T) {
	s, err := NewSlipRenderer(&capturingRenderer{}, SlipConfig{Currency: "EUR", Language: "de"})
	require.NoError(t, err)

	d := s.BuildSlipData(slipRecord(t))
	assert.Equal(t, "EUR 1.234,50", d.UnitValue)
}

func TestSlipRenderer_Defaults(t *testing.T) {
	s, err := NewSlipRenderer(&capturingRenderer{}, SlipConfig{Language: "not a tag"})
	require.NoError(t, err)
	assert.Equal(t, "en", s.tag.String())
	assert.Equal(t, "USD", s.cfg.Currency)
	assert.Equal(t, PaperA4, s.cfg.Paper)
}

func TestSlipRenderer_RenderHTMLEscapes(t *testing.T) {
	s, err := NewSlipRenderer(&capturingRenderer{}, SlipConfig{CompanyName: "Acme"})
	require.NoError(t, err)

	html, err := s.RenderHTML(slipRecord(t))
	require.NoError(t, err)
	assert.Contains(t, html, "Return RTN-2026-00042")
	assert.Contains(t, html, "Phone case")
	assert.Contains(t, html, "Changed mind &lt;really&gt;")
	assert.Contains(t, html, "Ada Lovelace")
	assert.NotContains(t, html, "Inspection</div>")
}

func TestSlipRenderer_RenderReturnSlip(t *testing.T) {
	pdf := &capturingRenderer{}
	s, err := NewSlipRenderer(pdf, SlipConfig{})
	require.NoError(t, err)

	data, err := s.RenderReturnSlip(context.Background(), slipRecord(t))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), data)

	require.NotNil(t, pdf.req)
	assert.Equal(t, "RTN-2026-00042", pdf.req.Title)
	assert.Equal(t, PaperA4, pdf.req.PaperSize)
	assert.Contains(t, pdf.req.FooterHTML, "RTN-2026-00042")
	assert.Contains(t, pdf.req.HTML, "<!DOCTYPE html>")
}

func TestSlipRenderer_RenderFailure(t *testing.T) {
	boom := NewRenderError(ErrCodeRenderTimeout, "timed out", context.DeadlineExceeded)
	s, err := NewSlipRenderer(&capturingRenderer{err: boom}, SlipConfig{})
	require.NoError(t, err)

	_, err = s.RenderReturnSlip(context.Background(), slipRecord(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeRenderTimeout, re.Code)
}
