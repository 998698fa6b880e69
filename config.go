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
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/reason"
)

// MaxPayloadSize bounds the payload of any single record, in bytes.
// Config.MaxPayloadSize may lower the bound, never raise it.
const MaxPayloadSize = 5120

var reasonConfig = reason.MustParse("config.validate")

// Config sizes a Subsystem.
type Config struct {
	// MaxRecords is the number of record slots. Create waits when all are
	// live.
	MaxRecords int `yaml:"max_records"`

	// HeapBytes is the byte budget shared by all payloads.
	HeapBytes int64 `yaml:"heap_bytes"`

	// MaxPayloadSize is the per-record payload limit. Zero means
	// MaxPayloadSize.
	MaxPayloadSize int `yaml:"max_payload_size"`

	// CreateTimeout bounds how long Create waits for a free slot. Zero
	// waits until the caller's context ends.
	CreateTimeout time.Duration `yaml:"create_timeout"`

	// AllocTimeout bounds how long a blocking payload allocation waits for
	// heap budget. Zero waits until the caller's context ends.
	AllocTimeout time.Duration `yaml:"alloc_timeout"`
}

// RegisterFlags registers the config flags under the "osreason." prefix.
func (c *Config) RegisterFlags(f *flag.FlagSet) {
	c.RegisterFlagsWithPrefix("osreason.", f)
}

// RegisterFlagsWithPrefix registers the config flags with the given prefix.
func (c *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.IntVar(&c.MaxRecords, prefix+"max-records", 1024, "Number of termination reason records that may be live at once.")
	f.Int64Var(&c.HeapBytes, prefix+"heap-bytes", 4<<20, "Byte budget shared by all record payloads.")
	f.IntVar(&c.MaxPayloadSize, prefix+"max-payload-size", MaxPayloadSize, fmt.Sprintf("Per-record payload limit in bytes, at most %d.", MaxPayloadSize))
	f.DurationVar(&c.CreateTimeout, prefix+"create-timeout", 5*time.Second, "How long record creation waits for a free slot. 0 waits for the caller's context.")
	f.DurationVar(&c.AllocTimeout, prefix+"alloc-timeout", 5*time.Second, "How long a blocking payload allocation waits for heap budget. 0 waits for the caller's context.")
}

// DefaultConfig returns a Config holding the flag defaults.
func DefaultConfig() Config {
	var c Config
	fs := flag.NewFlagSet("", flag.PanicOnError)
	c.RegisterFlags(fs)
	return c
}

// Validate checks that every field is in range.
func (c Config) Validate() error {
	switch {
	case c.MaxRecords <= 0:
		return oserr.Errorf(code.InvalidArgument, reasonConfig, "max_records must be positive, got %d", c.MaxRecords)
	case c.HeapBytes <= 0:
		return oserr.Errorf(code.InvalidArgument, reasonConfig, "heap_bytes must be positive, got %d", c.HeapBytes)
	case c.MaxPayloadSize < 0 || c.MaxPayloadSize > MaxPayloadSize:
		return oserr.Errorf(code.InvalidArgument, reasonConfig, "max_payload_size must be in [0, %d], got %d", MaxPayloadSize, c.MaxPayloadSize)
	case c.CreateTimeout < 0 || c.AllocTimeout < 0:
		return oserr.Errorf(code.InvalidArgument, reasonConfig, "timeouts must not be negative")
	}
	return nil
}

// payloadLimit returns the effective per-record limit.
func (c Config) payloadLimit() uint32 {
	if c.MaxPayloadSize == 0 {
		return MaxPayloadSize
	}
	return uint32(c.MaxPayloadSize)
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates the
// result. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, oserr.E(code.InvalidArgument, "cannot open config", oserr.WithReasonOption(reasonConfig), oserr.WithCauseOption(err))
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, oserr.E(code.InvalidArgument, "cannot parse config "+path, oserr.WithReasonOption(reasonConfig), oserr.WithCauseOption(err))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
