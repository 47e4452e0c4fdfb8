package nilmap

import "log/slog"

type options struct {
	seed             uint64
	hasSeed          bool
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures container constructor behavior.
//
// Options exist to avoid exploding the constructor surface; every container
// works with zero options and sensible defaults (random hash seed, no
// logging, no metrics).
type Option func(*options)

// WithSeed fixes the hash seed of integer- and float-keyed sparse
// containers. By default each container draws a random seed, so bucket
// layouts differ between runs; a fixed seed makes layouts reproducible,
// which matters for debugging and for tests that need known collisions.
//
// Byte-keyed containers do not hash, and HashedMap owns a maphash.Seed;
// WithSeed has no effect on either.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

// WithMetricsCollector configures a metrics collector for structural events.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &nilmap.BasicMetricsCollector{}
//	m := nilmap.New[int32, string](0, nilmap.WithMetricsCollector(metrics))
//	// ... use m ...
//	stats := metrics.GetStats()
//	fmt.Printf("Resizes: %d\n", stats.ResizeCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for structural events.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := nilmap.NewJSONLogger(slog.LevelDebug)
//	m := nilmap.New[int64, string](0, nilmap.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
