package telemetry

import (
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	infraconfig "github.com/scg/portal/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Profiler pushes continuous profiles to Pyroscope
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	once     sync.Once
}

// NewProfiler starts profiling when enabled in cfg
func NewProfiler(cfg infraconfig.TelemetryConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger}
	if !cfg.ProfilingEnabled {
		return p, nil
	}
	if cfg.PyroscopeServerURL == "" {
		return nil, fmt.Errorf("pyroscope server URL is required when profiling is enabled")
	}

	tags := map[string]string{}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}
	prof, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.PyroscopeServerURL,
		AuthToken:       cfg.PyroscopeAuthToken,
		Logger:          zapPyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:            tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}
	p.profiler = prof
	logger.Info("Profiling enabled", zap.String("server", cfg.PyroscopeServerURL))
	return p, nil
}

// Enabled reports whether profiles are pushed
func (p *Profiler) Enabled() bool {
	return p.profiler != nil
}

// Stop flushes and stops the profiler; later calls do nothing
func (p *Profiler) Stop() error {
	var err error
	p.once.Do(func() {
		if p.profiler != nil {
			err = p.profiler.Stop()
		}
	})
	return err
}

type zapPyroscopeLogger struct {
	s *zap.SugaredLogger
}

func (l zapPyroscopeLogger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l zapPyroscopeLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l zapPyroscopeLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }
