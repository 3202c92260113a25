package telemetry

import (
	"fmt"
	"os"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// ProfilerConfig holds continuous profiling configuration
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
}

// Profiler runs the Pyroscope agent
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
}

// defaultProfileTypes covers what a sync run spends its time on: CPU, allocations and goroutines
var defaultProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// NewProfiler starts profiling, or returns an inert profiler when disabled
func NewProfiler(cfg ProfilerConfig, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger}
	if !cfg.Enabled {
		return p, nil
	}
	if cfg.ServerAddress == "" || cfg.ApplicationName == "" {
		return nil, fmt.Errorf("telemetry: profiler needs a server address and application name")
	}

	tags := map[string]string{}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ApplicationName,
		ServerAddress:   cfg.ServerAddress,
		Logger:          pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:            tags,
		ProfileTypes:    defaultProfileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: start profiler: %w", err)
	}
	p.profiler = profiler
	logger.Info("continuous profiling enabled", zap.String("server_address", cfg.ServerAddress))
	return p, nil
}

// Stop flushes and stops the agent
func (p *Profiler) Stop() error {
	if p.profiler == nil {
		return nil
	}
	if err := p.profiler.Stop(); err != nil {
		return fmt.Errorf("telemetry: stop profiler: %w", err)
	}
	p.profiler = nil
	return nil
}

// pyroscopeLogger satisfies pyroscope.Logger through the embedded sugared logger
type pyroscopeLogger struct {
	*zap.SugaredLogger
}
