// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// options.go - functional options for the builder constructors.
//
// Contract:
//   • Options are functional (type Option func(*builderConfig)).
//   • Option constructors PANIC on nil collaborators; constructors and Apply
//     never panic.
//   • No hidden globals; everything flows through builderConfig.

package shapelet

import (
	"go.uber.org/zap"
)

// Option customizes a builder constructor.
type Option func(*builderConfig)

// builderConfig is the resolved configuration of a constructor call.
type builderConfig struct {
	logger             *zap.Logger
	convolutionFactory ConvolutionFactory
}

// newBuilderConfig applies opts over the defaults: a no-op logger and the
// closed-form Gaussian convolution.
func newBuilderConfig(opts ...Option) builderConfig {
	cfg := builderConfig{
		logger:             zap.NewNop(),
		convolutionFactory: NewGaussianConvolution,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithLogger routes construction diagnostics to l. Apply never logs.
// Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("shapelet: WithLogger(nil)")
	}
	return func(c *builderConfig) {
		c.logger = l
	}
}

// WithConvolutionFactory sets the producer of PSF convolution operators used
// by the convolved shapelet and convolved basis builders. Panics on nil.
func WithConvolutionFactory(f ConvolutionFactory) Option {
	if f == nil {
		panic("shapelet: WithConvolutionFactory(nil)")
	}
	return func(c *builderConfig) {
		c.convolutionFactory = f
	}
}
