package sink

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"sentinel/config"
	"sentinel/core"
)

// Vendor keys known to the factory.
const (
	VendorElastic = "elastic"
	VendorSplunk  = "splunk"
	VendorRedis   = "redis"
	VendorStdout  = "stdout"
)

// builder constructs a leaf sink for one vendor from configuration.
type builder func(cfg *config.Config, logger *zap.SugaredLogger) Sink

// Factory constructs leaf sinks for named vendors. The registry is a
// fixed, closed set of constructors; resolution is explicit key first,
// then the configured default vendor.
type Factory struct {
	cfg      *config.Config
	logger   *zap.SugaredLogger
	registry map[string]builder
}

// NewFactory creates a factory over the given configuration.
func NewFactory(cfg *config.Config, logger *zap.SugaredLogger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
		registry: map[string]builder{
			VendorElastic: func(cfg *config.Config, logger *zap.SugaredLogger) Sink {
				return NewElastic(cfg.Elastic.Endpoint, cfg.Elastic.Token, logger)
			},
			VendorSplunk: func(cfg *config.Config, logger *zap.SugaredLogger) Sink {
				return NewSplunk(cfg.Splunk.HECURL, cfg.Splunk.HECToken, logger)
			},
			VendorRedis: func(cfg *config.Config, logger *zap.SugaredLogger) Sink {
				return NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key, logger)
			},
			VendorStdout: func(_ *config.Config, _ *zap.SugaredLogger) Sink {
				return NewStdout()
			},
		},
	}
}

// Vendors returns the known vendor keys, sorted.
func (f *Factory) Vendors() []string {
	keys := make([]string, 0, len(f.registry))
	for k := range f.registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Create constructs a leaf sink for the vendor key. An empty key falls
// back to the configured default vendor; if neither is present the call
// fails with core.ErrVendorNotSpecified. An unknown key fails with a
// wrapped core.ErrUnknownVendor naming the key.
func (f *Factory) Create(vendorKey string) (Sink, error) {
	key := strings.ToLower(strings.TrimSpace(vendorKey))
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(f.cfg.Vendor))
	}
	if key == "" {
		return nil, core.ErrVendorNotSpecified
	}

	build, ok := f.registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", core.ErrUnknownVendor, key, strings.Join(f.Vendors(), ", "))
	}

	f.logger.Infow("Creating leaf sink", "vendor", key)
	return build(f.cfg, f.logger), nil
}
