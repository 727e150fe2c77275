package control

import (
	"errors"
	"testing"

	"github.com/momentics/smr/api"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero threads", func(c *Config) { c.MaxThreads = 0 }, api.ErrInvalidArgument},
		{"zero slots", func(c *Config) { c.SlotsPerThread = 0 }, api.ErrInvalidArgument},
		{"negative threshold", func(c *Config) { c.RetireThreshold = -1 }, api.ErrInvalidArgument},
		{"negative pool", func(c *Config) { c.PoolCapacity = -1 }, api.ErrInvalidArgument},
		{"bogus strategy", func(c *Config) { c.Strategy = api.Strategy(99) }, api.ErrNotSupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}
