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
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"dirpx.dev/osreason/oserr"
	"dirpx.dev/osreason/tlv"
)

const chunkYAML = `chunks:
  - type: 1
    text: "watchdog timeout"
  - type: 2
    data: "deadbeef"
`

func execute(t *testing.T, stdin []byte, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "reasondump", cmd.Use)
	for _, name := range []string{"encode", "decode"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	enc, _, err := cmd.Find([]string{"encode"})
	require.NoError(t, err)
	for _, f := range []string{"namespace", "code", "flags", "size", "file", "output"} {
		assert.NotNil(t, enc.Flags().Lookup(f), "encode --%s", f)
	}
	assert.Equal(t, "f", enc.Flags().Lookup("file").Shorthand)
	assert.Equal(t, "o", enc.Flags().Lookup("output").Shorthand)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := writeFile(t, "chunks.yaml", chunkYAML)
	out := filepath.Join(t.TempDir(), "out.bin")

	_, stderr, err := execute(t, nil, "encode", "--namespace", "18", "--code", "7", "-f", in, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, `msg="payload encoded"`)
	assert.Contains(t, stderr, "chunks=2")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, raw, tlv.FrameHeaderSize+24+16)

	stdout, _, err := execute(t, nil, "decode", out)
	require.NoError(t, err)
	var got DecodedPayload
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "0x53a20900", got.BeginTag)
	require.Len(t, got.Chunks, 2)
	assert.EqualValues(t, 1, got.Chunks[0].Type)
	assert.Equal(t, hex.EncodeToString([]byte("watchdog timeout")), got.Chunks[0].Data)
	assert.EqualValues(t, 2, got.Chunks[1].Type)
	assert.EqualValues(t, 4, got.Chunks[1].Length)
	assert.Equal(t, "deadbeef", got.Chunks[1].Data)
}

func TestEncode_StdinStdout(t *testing.T) {
	payload, _, err := execute(t, []byte(chunkYAML), "encode", "--size", "128")
	require.NoError(t, err)

	frame, err := tlv.Decode([]byte(payload))
	require.NoError(t, err)
	require.Len(t, frame.Chunks, 2)

	text, _, err := execute(t, []byte(payload), "decode", "-", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, text, "0x53a20900")
	assert.Contains(t, text, `"watchdog timeout"`)
	assert.Contains(t, text, "deadbeef")
}

func TestDecode_TextGolden(t *testing.T) {
	payload, _, err := execute(t, []byte(chunkYAML), "encode")
	require.NoError(t, err)
	text, _, err := execute(t, []byte(payload), "decode", "-", "--format", "text")
	require.NoError(t, err)

	goldie.New(t).Assert(t, "decode_text", []byte(text))
}

func TestEncode_BufferTooSmall(t *testing.T) {
	in := writeFile(t, "chunks.yaml", chunkYAML)
	_, _, err := execute(t, nil, "encode", "--size", "32", "-f", in)
	require.ErrorIs(t, err, oserr.ErrNoSpace)
	assert.Contains(t, err.Error(), "chunk 1")
}

func TestEncode_ConfigLimit(t *testing.T) {
	in := writeFile(t, "chunks.yaml", chunkYAML)
	cfg := writeFile(t, "osreason.yaml", "max_records: 1\nmax_payload_size: 16\n")
	_, _, err := execute(t, nil, "--config", cfg, "encode", "-f", in)
	require.ErrorIs(t, err, oserr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "the payload limit is 16")
}

func TestEncodeDecode_NoChunks(t *testing.T) {
	in := writeFile(t, "empty.yaml", "chunks: []\n")
	out := filepath.Join(t.TempDir(), "empty.bin")

	_, _, err := execute(t, nil, "encode", "-f", in, "-o", out)
	require.NoError(t, err)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, raw, tlv.FrameHeaderSize)

	stdout, _, err := execute(t, nil, "decode", out)
	require.NoError(t, err)
	var got DecodedPayload
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "0x53a20900", got.BeginTag)
	assert.Empty(t, got.Chunks)
}

func TestEncode_BadInput(t *testing.T) {
	both := writeFile(t, "both.yaml", "chunks:\n  - type: 1\n    text: a\n    data: \"00\"\n")
	_, _, err := execute(t, nil, "encode", "-f", both)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")

	neither := writeFile(t, "neither.yaml", "chunks:\n  - type: 1\n")
	_, _, err = execute(t, nil, "encode", "-f", neither)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set data or text")

	badHex := writeFile(t, "hex.yaml", "chunks:\n  - type: 1\n    data: xyz\n")
	_, _, err = execute(t, nil, "encode", "-f", badHex)
	require.ErrorIs(t, err, oserr.ErrEncoding)

	_, _, err = execute(t, nil, "encode", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode_Errors(t *testing.T) {
	corrupt := writeFile(t, "corrupt.bin", "\x00\x09\xa2\x53\xff\x00\x00\x00")
	_, _, err := execute(t, nil, "decode", corrupt)
	require.ErrorIs(t, err, oserr.ErrEncoding)

	_, _, err = execute(t, nil, "decode", corrupt, "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")

	_, _, err = execute(t, nil, "decode")
	require.Error(t, err)
}

func TestVerboseLogsChunks(t *testing.T) {
	_, stderr, err := execute(t, []byte(chunkYAML), "-v", "encode", "-o", filepath.Join(t.TempDir(), "o.bin"))
	require.NoError(t, err)
	assert.Contains(t, stderr, `msg="chunk appended"`)
	assert.Contains(t, stderr, "level=debug")
}
