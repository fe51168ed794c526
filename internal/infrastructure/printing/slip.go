package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/erp/returns/internal/domain/returns"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

//go:embed templates/*.html
var templateFS embed.FS

const slipDateLayout = "2006-01-02 15:04"

// SlipConfig controls the slip's branding and locale
type SlipConfig struct {
	CompanyName string
	// Currency is an ISO 4217 code printed before every amount
	Currency string
	// Language is a BCP 47 tag that drives number grouping and title casing
	Language string
	Location *time.Location
	Paper    PaperSize
}

// SlipData is what the slip template sees. Every field is preformatted.
type SlipData struct {
	Lang              string
	CompanyName       string
	ReturnNumber      string
	StatusLabel       string
	CreatedAt         string
	ProductName       string
	ProductID         string
	Quantity          string
	UnitValue         string
	TotalValue        string
	Source            string
	Category          string
	Reason            string
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     string
	Condition         string
	InspectionNotes   string
	Resolution        string
	RefundAmount      string
	RefundMethod      string
	ExternalReference string
	CompletedAt       string
}

// SlipRenderer prints a return record as a one-page PDF slip
type SlipRenderer struct {
	pdf      PDFRenderer
	tmpl     *template.Template
	cfg      SlipConfig
	tag      language.Tag
	printer  *message.Printer
	titler   cases.Caser
	location *time.Location
}

// NewSlipRenderer parses the embedded slip template
func NewSlipRenderer(pdf PDFRenderer, cfg SlipConfig) (*SlipRenderer, error) {
	tag, err := language.Parse(cfg.Language)
	if err != nil {
		tag = language.English
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.Paper == "" {
		cfg.Paper = PaperA4
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	tmpl, err := template.ParseFS(templateFS, "templates/return_slip.html")
	if err != nil {
		return nil, fmt.Errorf("parse slip template: %w", err)
	}
	return &SlipRenderer{
		pdf:      pdf,
		tmpl:     tmpl,
		cfg:      cfg,
		tag:      tag,
		printer:  message.NewPrinter(tag),
		titler:   cases.Title(tag),
		location: loc,
	}, nil
}

// RenderReturnSlip renders the record's slip to PDF
func (s *SlipRenderer) RenderReturnSlip(ctx context.Context, r *returns.ReturnRecord) ([]byte, error) {
	html, err := s.RenderHTML(r)
	if err != nil {
		return nil, err
	}
	result, err := s.pdf.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      r.ReturnNumber,
		PaperSize:  s.cfg.Paper,
		Margins:    Margins{Top: 10, Right: 10, Bottom: 10, Left: 10},
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;">` + template.HTMLEscapeString(r.ReturnNumber) + `</div>`,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

// RenderHTML executes the slip template for r
func (s *SlipRenderer) RenderHTML(r *returns.ReturnRecord) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, s.BuildSlipData(r)); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "slip template failed", err)
	}
	return buf.String(), nil
}

// BuildSlipData formats a record for the template
func (s *SlipRenderer) BuildSlipData(r *returns.ReturnRecord) SlipData {
	d := SlipData{
		Lang:              s.tag.String(),
		CompanyName:       s.cfg.CompanyName,
		ReturnNumber:      r.ReturnNumber,
		StatusLabel:       s.label(string(r.Status)),
		CreatedAt:         s.date(r.CreatedAt),
		ProductName:       r.ProductName,
		ProductID:         r.ProductID.String(),
		Quantity:          s.printer.Sprint(number.Decimal(r.Quantity)),
		UnitValue:         s.money(r.ProductValue),
		TotalValue:        s.money(r.TotalValue()),
		Source:            s.label(string(r.SourceType)),
		Category:          s.label(string(r.ReturnCategory)),
		Reason:            r.ReturnReason,
		CustomerName:      r.CustomerName,
		CustomerPhone:     r.CustomerPhone,
		CustomerEmail:     r.CustomerEmail,
		InspectionNotes:   r.InspectionNotes,
		ExternalReference: r.ExternalReference,
	}
	if r.ProductCondition != "" {
		d.Condition = s.label(string(r.ProductCondition))
	}
	if r.ResolutionType != "" {
		d.Resolution = s.label(string(r.ResolutionType))
	}
	if r.RefundAmount != nil {
		d.RefundAmount = s.money(*r.RefundAmount)
		d.RefundMethod = s.label(string(r.RefundMethod))
	}
	if r.CompletedAt != nil {
		d.CompletedAt = s.date(*r.CompletedAt)
	}
	return d
}

// money prints an amount with two fraction digits and locale grouping
func (s *SlipRenderer) money(amount decimal.Decimal) string {
	return s.cfg.Currency + " " + s.printer.Sprint(number.Decimal(
		amount.Round(2).InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// label turns an enum like PENDING_APPROVAL into "Pending Approval"
func (s *SlipRenderer) label(code string) string {
	if code == "" {
		return ""
	}
	return s.titler.String(strings.ReplaceAll(strings.ToLower(code), "_", " "))
}

func (s *SlipRenderer) date(t time.Time) string {
	return t.In(s.location).Format(slipDateLayout)
}
