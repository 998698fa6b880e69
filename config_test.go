/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package osreason

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dirpx.dev/osreason/oserr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1024, cfg.MaxRecords)
	require.EqualValues(t, 4<<20, cfg.HeapBytes)
	require.Equal(t, MaxPayloadSize, cfg.MaxPayloadSize)
	require.Equal(t, 5*time.Second, cfg.CreateTimeout)
	require.Equal(t, 5*time.Second, cfg.AllocTimeout)
}

func TestConfig_RegisterFlags(t *testing.T) {
	var cfg Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"-osreason.max-records=8",
		"-osreason.max-payload-size=256",
		"-osreason.alloc-timeout=0",
	}))
	require.Equal(t, 8, cfg.MaxRecords)
	require.Equal(t, 256, cfg.MaxPayloadSize)
	require.Zero(t, cfg.AllocTimeout)
	require.EqualValues(t, 256, cfg.payloadLimit())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no records", func(c *Config) { c.MaxRecords = 0 }},
		{"no heap", func(c *Config) { c.HeapBytes = -1 }},
		{"payload above ceiling", func(c *Config) { c.MaxPayloadSize = MaxPayloadSize + 1 }},
		{"negative payload", func(c *Config) { c.MaxPayloadSize = -1 }},
		{"negative timeout", func(c *Config) { c.CreateTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), oserr.ErrInvalidArgument)
			_, err := New(cfg)
			require.ErrorIs(t, err, oserr.ErrInvalidArgument)
		})
	}
}

func TestConfig_ZeroPayloadMeansCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPayloadSize = 0
	s, err := New(cfg)
	require.NoError(t, err)
	require.EqualValues(t, MaxPayloadSize, s.MaxPayload())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osreason.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_records: 16\nmax_payload_size: 128\ncreate_timeout: 250ms\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.MaxRecords)
	require.Equal(t, 128, cfg.MaxPayloadSize)
	require.Equal(t, 250*time.Millisecond, cfg.CreateTimeout)
	require.EqualValues(t, 4<<20, cfg.HeapBytes, "unset keys keep their defaults")
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, oserr.ErrInvalidArgument)
	require.ErrorIs(t, err, os.ErrNotExist)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("max_recordz: 1\n"), 0o600))
	_, err = LoadConfig(unknown)
	require.ErrorIs(t, err, oserr.ErrInvalidArgument)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("max_payload_size: 9000\n"), 0o600))
	_, err = LoadConfig(invalid)
	require.ErrorIs(t, err, oserr.ErrInvalidArgument)
}
