package core

// Engine limits shared by the arena and the effect engines.
const (
	MinSampleRate = 8000.0
	MaxSampleRate = 192000.0

	MinBlockSize = 32
	MaxBlockSize = 512

	DefaultSampleRate = 44100.0
	DefaultBlockSize  = 128

	// DefaultSeed is the initial state of the granular random generator.
	DefaultSeed uint32 = 12345

	// DefaultMaxIRPartitions bounds the convolution engine: 240000 IR frames
	// split into 256-sample partitions.
	DefaultMaxIRPartitions = 240000 / 256
)

// Config defines engine construction settings.
type Config struct {
	SampleRate      float64
	BlockSize       int
	Seed            uint32
	MaxIRPartitions int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the settings an engine reports before Init.
func DefaultConfig() Config {
	return Config{
		SampleRate:      DefaultSampleRate,
		BlockSize:       DefaultBlockSize,
		Seed:            DefaultSeed,
		MaxIRPartitions: DefaultMaxIRPartitions,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithSeed sets the granular random generator seed. Zero is ignored.
func WithSeed(seed uint32) Option {
	return func(cfg *Config) {
		if seed != 0 {
			cfg.Seed = seed
		}
	}
}

// WithMaxIRPartitions limits the number of impulse response partitions
// preallocated by the convolution engine. Values above the default are capped.
func WithMaxIRPartitions(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxIRPartitions = min(n, DefaultMaxIRPartitions)
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ValidSampleRate reports whether sampleRate lies in the supported range.
func ValidSampleRate(sampleRate float64) bool {
	return sampleRate >= MinSampleRate && sampleRate <= MaxSampleRate
}

// ValidBlockSize reports whether blockSize lies in the supported range.
func ValidBlockSize(blockSize int) bool {
	return blockSize >= MinBlockSize && blockSize <= MaxBlockSize
}
