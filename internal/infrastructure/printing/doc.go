// Package printing renders return slips: an html/template document with
// locale-aware amounts, printed to PDF by a headless Chrome through chromedp.
package printing
