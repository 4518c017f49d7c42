package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/statekit/internal/logtail"
)

const sampleLog = `action cart/addProductToCart @ 10:00:00.000
mutation cart/pushProductToCart @ 10:00:00.001 prev={} mutation={} next={}
mutation products/decrementProductInventory @ 10:00:00.002 prev={} mutation={} next={}
action cart/checkout @ 10:00:01.000
mutation cart/setCheckoutStatus @ 10:00:01.100 prev={} mutation={} next={}
`

// writeLogConfig writes a config pointing the mutation log at a temp file
// holding content and returns the config path.
func writeLogConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "mutations.log")
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o644))

	cfgPath := filepath.Join(dir, "config.toml")
	cfg := "mutation_log = " + `"` + filepath.ToSlash(logPath) + `"` + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func TestLogCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	logCmd, _, err := cmd.Find([]string{"log"})
	require.NoError(t, err)

	lines := logCmd.Flags().Lookup("lines")
	require.NotNil(t, lines)
	assert.Equal(t, "n", lines.Shorthand)
	assert.Equal(t, "50", lines.DefValue)

	follow := logCmd.Flags().Lookup("follow")
	require.NotNil(t, follow)
	assert.Equal(t, "f", follow.Shorthand)
}

func TestLogCommandPrintsEntries(t *testing.T) {
	cfgPath := writeLogConfig(t, sampleLog)

	out, err := execute(t, "log", "--config", cfgPath, "--plain")
	require.NoError(t, err)
	assert.Equal(t, sampleLog, out)
}

func TestLogCommandFilters(t *testing.T) {
	cfgPath := writeLogConfig(t, sampleLog)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"kind", []string{"--kind", "action"}, []string{"cart/addProductToCart", "cart/checkout"}},
		{"namespace", []string{"--type", "cart/", "--kind", "mutation"}, []string{"cart/pushProductToCart", "cart/setCheckoutStatus"}},
		{"exact type", []string{"--type", "products/decrementProductInventory"}, []string{"products/decrementProductInventory"}},
		{"last lines", []string{"--lines", "1"}, []string{"cart/setCheckoutStatus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"log", "--config", cfgPath, "--plain"}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)

			var types []string
			for _, e := range logtail.Parse(strings.Split(out, "\n")) {
				types = append(types, e.Type)
			}
			assert.Equal(t, tt.want, types)
		})
	}
}

func TestLogCommandRejectsBadKind(t *testing.T) {
	cfgPath := writeLogConfig(t, sampleLog)

	_, err := execute(t, "log", "--config", cfgPath, "--kind", "getter")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestLogCommandMissingLog(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := `mutation_log = "` + filepath.ToSlash(filepath.Join(dir, "absent.log")) + `"` + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := execute(t, "log", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No entries in")
}

func TestStreamFilterKeepsDetailWithHeader(t *testing.T) {
	s := &streamFilter{filter: logtail.Filter{Kind: "action"}}

	assert.True(t, s.keep("action cart/checkout @ 10:00:01.000"))
	assert.True(t, s.keep(`  action:     {"type":"cart/checkout"}`))
	assert.False(t, s.keep("mutation cart/setCheckoutStatus @ 10:00:01.100"))
	assert.False(t, s.keep("  state:      {}"))
}
