// Command composite-server serves the product-composite API in front of the
// product, recommendation and review services.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	composite "github.com/xenking/product-composite/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := composite.LoadConfig()
		if err != nil {
			return errors.Wrap(err, "config")
		}
		if cfg.Backends.Mode == composite.ModeInProcess {
			lg.Warn("Using in-process backends, data is not persisted")
		}
		return composite.Run(ctx, lg, m, cfg)
	})
}
