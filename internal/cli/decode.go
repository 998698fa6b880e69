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
	"fmt"
	"io"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dirpx.dev/osreason/adapter"
	"dirpx.dev/osreason/apis"
	"dirpx.dev/osreason/tlv"
)

// DecodeFormats are the accepted --format values.
var DecodeFormats = []string{"yaml", "text"}

// DecodeOptions holds the decode flags.
type DecodeOptions struct {
	Format string
}

// DecodedPayload is the yaml output of decode.
type DecodedPayload struct {
	BeginTag string           `yaml:"begin_tag"`
	Chunks   []apis.ChunkView `yaml:"chunks"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{}
	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Print the begin tag and chunks of a framed payload",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(*cobra.Command, []string) error {
			for _, f := range DecodeFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, DecodeFormats)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, opts, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.Format, "format", "yaml", "output format (yaml|text)")
	return cmd
}

func runDecode(rootOpts *RootOptions, opts *DecodeOptions, path string, stdin io.Reader, out io.Writer) error {
	raw, err := readInput(path, stdin)
	if err != nil {
		return err
	}
	frame, err := tlv.Decode(raw)
	if err != nil {
		return err
	}
	level.Debug(rootOpts.Logger()).Log("msg", "payload decoded", "bytes", len(raw), "chunks", len(frame.Chunks))

	if opts.Format == "text" {
		return writeText(out, frame)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(DecodedPayload{
		BeginTag: fmt.Sprintf("%#08x", frame.BeginTag),
		Chunks:   adapter.ChunkViews(frame.Chunks),
	}); err != nil {
		return err
	}
	return enc.Close()
}

func writeText(out io.Writer, frame *tlv.Frame) error {
	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "begin tag\t%#08x\n", frame.BeginTag)
	fmt.Fprintln(tw, "TYPE\tLENGTH\tDATA")
	for _, c := range frame.Chunks {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", c.Type, len(c.Data), render(c.Data))
	}
	return tw.Flush()
}

// render shows printable UTF-8 as a quoted string and anything else as hex.
func render(p []byte) string {
	if utf8.Valid(p) {
		printable := true
		for _, r := range string(p) {
			if r < 0x20 || r == 0x7f {
				printable = false
				break
			}
		}
		if printable {
			return fmt.Sprintf("%q", p)
		}
	}
	return fmt.Sprintf("%x", p)
}
