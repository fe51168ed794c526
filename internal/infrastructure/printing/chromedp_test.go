package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  *RenderRequest
		code string
	}{
		{"nil request", nil, ErrCodeInvalidHTML},
		{"empty html", &RenderRequest{PaperSize: PaperA4}, ErrCodeInvalidHTML},
		{"bad paper", &RenderRequest{HTML: "<p>x</p>", PaperSize: "LETTER"}, ErrCodeInvalidPaperSize},
		{"ok", &RenderRequest{HTML: "<p>x</p>", PaperSize: PaperA5}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.req)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			var re *RenderError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.code, re.Code)
		})
	}
}

func TestBuildPrintParams(t *testing.T) {
	params := buildPrintParams(&RenderRequest{
		HTML:      "<p>x</p>",
		PaperSize: PaperA4,
		Margins:   Margins{Top: 25.4, Right: 12.7, Bottom: 5, Left: 0},
	})
	assert.InDelta(t, 8.27, params.PaperWidth, 0.01)
	assert.InDelta(t, 11.69, params.PaperHeight, 0.01)
	assert.InDelta(t, 1.0, params.MarginTop, 0.0001)
	assert.InDelta(t, 0.5, params.MarginRight, 0.0001)
	assert.False(t, params.DisplayHeaderFooter)
	assert.True(t, params.PrintBackground)
}

func TestBuildPrintParams_FooterReservesBottomMargin(t *testing.T) {
	params := buildPrintParams(&RenderRequest{
		HTML:       "<p>x</p>",
		PaperSize:  PaperA5,
		Margins:    Margins{Bottom: 5},
		FooterHTML: "<div>RTN-1</div>",
	})
	assert.True(t, params.DisplayHeaderFooter)
	assert.Equal(t, "<div>RTN-1</div>", params.FooterTemplate)
	assert.InDelta(t, 10/25.4, params.MarginBottom, 0.0001)
	assert.InDelta(t, 148/25.4, params.PaperWidth, 0.0001)
}

func TestPaperSize(t *testing.T) {
	assert.True(t, PaperA4.IsValid())
	assert.False(t, PaperSize("A3").IsValid())
	w, h := PaperA5.Dimensions()
	assert.Equal(t, 148.0, w)
	assert.Equal(t, 210.0, h)
}
