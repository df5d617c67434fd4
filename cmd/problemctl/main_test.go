package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/tundr-problems/internal/optimization"
	"github.com/copyleftdev/tundr-problems/internal/spaces"
)

func writeProblem(t *testing.T, dir string) (string, *optimization.Problem) {
	t.Helper()
	p, err := optimization.NewProblem(
		spaces.NewSimpleHypergrid("params",
			spaces.NewContinuousDimension("x", 0, 1, true, true),
			spaces.NewDiscreteDimension("batch", 1, 16),
		),
		spaces.NewSimpleHypergrid("objectives", spaces.NewContinuousDimension("loss", 0, 10, true, true)),
		[]optimization.Objective{{Name: "loss", Minimize: true}},
		spaces.NewSimpleHypergrid("context", spaces.NewCategoricalDimension("gpu", []string{"a100", "h100"})),
	)
	require.NoError(t, err)

	data, err := yaml.Marshal(p.ToDocument())
	require.NoError(t, err)
	path := filepath.Join(dir, "problem.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	path, _ := writeProblem(t, t.TempDir())

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "valid: 3 feature dimensions (x, batch, gpu)\n", out)
}

func TestValidate_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("objectives: [{name: loss}]\n"), 0o644))

	_, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.True(t, optimization.IsInvalidProblem(err))
}

func TestEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	path, p := writeProblem(t, dir)
	wirePath := filepath.Join(dir, "problem.pb")

	_, err := execute(t, "--log-level", "debug", "encode", path, "-o", wirePath)
	require.NoError(t, err)

	data, err := os.ReadFile(wirePath)
	require.NoError(t, err)
	fromWire, err := optimization.UnmarshalWire(data, nil)
	require.NoError(t, err)
	assert.True(t, p.Equal(fromWire))

	out, err := execute(t, "decode", wirePath)
	require.NoError(t, err)
	fromYAML, err := optimization.ParseDocument([]byte(out))
	require.NoError(t, err)
	assert.True(t, p.Equal(fromYAML))
}

func TestEncode_Stdout(t *testing.T) {
	path, p := writeProblem(t, t.TempDir())

	out, err := execute(t, "encode", path)
	require.NoError(t, err)

	expected, err := p.MarshalWire(nil)
	require.NoError(t, err)
	assert.Equal(t, expected, []byte(out))
}

func TestDecode_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.pb")
	require.NoError(t, os.WriteFile(path, []byte{0x0a, 0xff}, 0o644))

	_, err := execute(t, "decode", path)
	assert.ErrorIs(t, err, optimization.ErrMalformedSpaceEncoding)
}

func TestFeatures(t *testing.T) {
	path, _ := writeProblem(t, t.TempDir())

	out, err := execute(t, "features", path)
	require.NoError(t, err)
	assert.Equal(t, "x\tContinuousDimension\nbatch\tDiscreteDimension\ngpu\tCategoricalDimension\n", out)
}

func TestVersionAndArgs(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "problemctl version "+Version+"\n", out)

	_, err = execute(t, "validate")
	assert.Error(t, err)
}
