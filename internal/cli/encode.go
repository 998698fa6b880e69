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

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dirpx.dev/osreason"
	"dirpx.dev/osreason/adapter"
	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/code"
	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/reason"
	"dirpx.dev/osreason/tlv"
)

var reasonEncode = reason.MustParse("cli.encode")

// EncodeOptions holds the encode flags.
type EncodeOptions struct {
	Namespace uint32
	Code      uint64
	Flags     uint64
	Size      uint32
	Input     string
	Output    string
}

// ChunkSpec is one chunk of the encode input. Exactly one of Data (hex) and
// Text must be set; a chunk with neither is rejected.
type ChunkSpec struct {
	Type uint32 `yaml:"type"`
	Data string `yaml:"data,omitempty"`
	Text string `yaml:"text,omitempty"`
}

// ChunkFile is the encode input document.
type ChunkFile struct {
	Chunks []ChunkSpec `yaml:"chunks"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EncodeOptions{}
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a record from a chunk list and write its framed payload",
		Long: `Build a termination reason record, append the chunks listed in the
input file and write the framed payload.

The input is YAML:

  chunks:
    - type: 1
      text: "watchdog timeout"
    - type: 2
      data: "deadbeef"

Without --size the payload is sized to fit the chunks exactly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEncode(cmd.Context(), rootOpts, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().Uint32Var(&opts.Namespace, "namespace", 0, "record namespace")
	cmd.Flags().Uint64Var(&opts.Code, "code", 0, "record code")
	cmd.Flags().Uint64Var(&opts.Flags, "flags", 0, "record flag word")
	cmd.Flags().Uint32Var(&opts.Size, "size", 0, "payload buffer size in bytes (0 fits the chunks)")
	cmd.Flags().StringVarP(&opts.Input, "file", "f", "-", "chunk list, - for stdin")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "payload output, - for stdout")
	return cmd
}

func runEncode(ctx context.Context, rootOpts *RootOptions, opts *EncodeOptions, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := rootOpts.Logger()

	chunks, err := readChunks(opts.Input, stdin)
	if err != nil {
		return err
	}
	cfg, err := rootOpts.config()
	if err != nil {
		return err
	}
	sub, err := osreason.New(cfg, osreason.WithLogger(logger))
	if err != nil {
		return err
	}

	size := opts.Size
	if size == 0 {
		var need uint64
		for _, c := range chunks {
			need += tlv.SizeFor(uint32(len(c.Data)))
		}
		if need > uint64(sub.MaxPayload()) {
			return oserr.Errorf(code.InvalidArgument, reasonEncode, "chunks need %d bytes, the payload limit is %d", need, sub.MaxPayload())
		}
		size = uint32(need)
	}

	r, err := sub.Create(ctx, opts.Namespace, opts.Code)
	if err != nil {
		return err
	}
	defer r.Release()

	if err := r.SetFlags(opts.Flags); err != nil {
		return err
	}
	if err := r.AllocBuffer(ctx, size); err != nil {
		return err
	}
	err = r.WithDescriptor(func(buf *tlv.Buffer) error {
		for i, c := range chunks {
			if buf == nil {
				return fmt.Errorf("chunk %d: record has no payload buffer", i)
			}
			if err := buf.Append(c.Type, c.Data); err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			level.Debug(logger).Log("msg", "chunk appended", "type", c.Type, "len", len(c.Data), "remaining", buf.Remaining())
		}
		return nil
	})
	if err != nil {
		return err
	}

	snap, err := r.Snapshot()
	if err != nil {
		return err
	}
	payload := snap.Payload
	if payload == nil {
		// No chunks: still emit a frame so decode sees an empty payload.
		payload = tlv.EmptyFrame(tlv.BeginOSReason)
	}
	if err := writeOutput(opts.Output, stdout, payload); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "payload encoded", "namespace", opts.Namespace, "code", opts.Code, "chunks", len(chunks), "bytes", len(payload))
	return nil
}

func readChunks(path string, stdin io.Reader) ([]tlv.Chunk, error) {
	raw, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	var doc ChunkFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse chunk list: %w", err)
	}

	out := make([]tlv.Chunk, len(doc.Chunks))
	for i, c := range doc.Chunks {
		switch {
		case c.Data != "" && c.Text != "":
			return nil, fmt.Errorf("chunk %d: set either data or text, not both", i)
		case c.Data == "" && c.Text == "":
			return nil, fmt.Errorf("chunk %d: set data or text", i)
		case c.Text != "":
			out[i] = tlv.Chunk{Type: c.Type, Data: []byte(c.Text)}
		default:
			decoded, err := adapter.FromChunkViews([]apis.ChunkView{{Type: c.Type, Data: c.Data}})
			if err != nil {
				return nil, fmt.Errorf("chunk %d: %w", i, err)
			}
			out[i] = decoded[0]
		}
	}
	return out, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, stdout io.Writer, p []byte) error {
	if path == "-" {
		_, err := stdout.Write(p)
		return err
	}
	return os.WriteFile(path, p, 0o644)
}
