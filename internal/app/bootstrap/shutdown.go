// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

type shutdownStep struct {
	name string
	run  func(context.Context) error
}

// Shutdown runs after the HTTP server has drained. ctx carries WAFFLE's
// shutdown deadline.
//
// Order matters: maintenance jobs stop first so no retry begins, then
// emails already in flight get the rest of the deadline to finish while
// MongoDB is still connected to record their outcome.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var steps []shutdownStep
	if taskRunner != nil {
		steps = append(steps, shutdownStep{"maintenance jobs", taskRunner.Stop})
	}
	if deps.Notifier != nil {
		steps = append(steps, shutdownStep{"in-flight notifications", deps.Notifier.Wait})
	}
	if deps.MongoClient != nil {
		steps = append(steps, shutdownStep{"mongo client", deps.MongoClient.Disconnect})
	}

	var errs []error
	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			logger.Warn("shutdown step incomplete", zap.String("step", s.name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		logger.Info("shutdown step done", zap.String("step", s.name))
	}
	return errors.Join(errs...)
}
