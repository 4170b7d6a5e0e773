package xl

import "compress/flate"

// Config holds the settings used when a workbook is saved.
type Config struct {
	// CompressionLevel sets the deflate level of every package entry,
	// from 1 (fastest) to 9 (smallest). Default: 6.
	CompressionLevel int

	// BufferSize bounds the amount of rendered worksheet XML held in memory
	// before it is pushed into the compressed entry. Default: 64KB.
	BufferSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CompressionLevel: 6,
		BufferSize:       64 * 1024,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.CompressionLevel < flate.BestSpeed || c.CompressionLevel > flate.BestCompression {
		c.CompressionLevel = d.CompressionLevel
	}
	if c.BufferSize < 4096 {
		c.BufferSize = d.BufferSize
	}
	return c
}

// Option customizes a Workbook.
type Option func(*Config)

func WithCompressionLevel(level int) Option {
	return func(c *Config) { c.CompressionLevel = level }
}

func WithBufferSize(n int) Option {
	return func(c *Config) { c.BufferSize = n }
}

func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}
