package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPProfConfig_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       PProfConfig
		expectErr bool
	}{
		{name: "disabled without address", cfg: PProfConfig{}},
		{name: "enabled with address", cfg: PProfConfig{Enabled: true, Addr: "localhost:6060"}},
		{name: "enabled without address", cfg: PProfConfig{Enabled: true}, expectErr: true},
		{name: "enabled with malformed address", cfg: PProfConfig{Enabled: true, Addr: "localhost"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestShutdownConfig_Validate(t *testing.T) {
	assert.NoError(t, (&ShutdownConfig{Timeout: 10 * time.Second}).Validate())
	assert.Error(t, (&ShutdownConfig{}).Validate())
	assert.Error(t, (&ShutdownConfig{Timeout: time.Hour}).Validate())
}
