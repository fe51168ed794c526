package printing

import (
	"github.com/erp/returns/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewSlipRendererFromConfig wires a headless-Chrome backed slip renderer.
// The caller owns the returned PDFRenderer and must Close it on shutdown.
func NewSlipRendererFromConfig(cfg config.PrintingConfig, logger *zap.Logger) (*SlipRenderer, PDFRenderer, error) {
	pdf := NewChromedpRenderer(ChromedpConfig{
		DefaultTimeout: cfg.Timeout,
		RemoteURL:      cfg.RemoteURL,
		ExecPath:       cfg.ChromePath,
		NoSandbox:      true,
		Logger:         logger,
	})
	slip, err := NewSlipRenderer(pdf, SlipConfig{
		CompanyName: cfg.CompanyName,
		Currency:    cfg.Currency,
		Language:    cfg.Language,
	})
	if err != nil {
		_ = pdf.Close()
		return nil, nil, err
	}
	if logger != nil {
		logger.Info("Return slip printing enabled",
			zap.Bool("remote_browser", cfg.RemoteURL != ""),
			zap.String("language", slip.tag.String()),
		)
	}
	return slip, pdf, nil
}
