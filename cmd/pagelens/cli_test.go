package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pagelens"
	main "github.com/fwojciec/pagelens/cmd/pagelens"
	"github.com/fwojciec/pagelens/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range []string{"scrape", "analyze", "history"} {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	helpOutput := stdout.String()
	for _, cmd := range []string{"scrape", "analyze", "history"} {
		assert.Contains(t, helpOutput, cmd)
	}
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "Flags:")
}

func TestMain_Run_NoArgsReturnsError(t *testing.T) {
	t.Parallel()

	m := main.NewMain()

	err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

	assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
}

func TestGlobals_Config(t *testing.T) {
	t.Parallel()

	parse := func(t *testing.T, args ...string) main.Globals {
		t.Helper()
		cli := &main.CLI{}
		parser, err := kong.New(cli, kong.Exit(func(int) {}))
		require.NoError(t, err)
		_, err = parser.Parse(append(args, "history"))
		require.NoError(t, err)
		return cli.Globals
	}

	t.Run("converts defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := parse(t).Config()

		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, time.Second, cfg.Delay)
		assert.Equal(t, pagelens.ProviderOpenAI, cfg.Provider)
		assert.Equal(t, pagelens.DefaultModel, cfg.Model)
		assert.Equal(t, pagelens.DefaultOutputDir, cfg.OutputDir)
		assert.Equal(t, pagelens.DefaultUserAgent, cfg.UserAgent)
	})

	t.Run("accepts fractional seconds", func(t *testing.T) {
		t.Parallel()

		cfg, err := parse(t, "--timeout=2.5", "--delay=0").Config()

		require.NoError(t, err)
		assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
		assert.Zero(t, cfg.Delay)
	})

	t.Run("selects the gemini default model", func(t *testing.T) {
		t.Parallel()

		cfg, err := parse(t, "--provider=gemini").Config()

		require.NoError(t, err)
		assert.Equal(t, gemini.DefaultModel, cfg.Model)
	})

	t.Run("rejects non-positive timeout", func(t *testing.T) {
		t.Parallel()

		_, err := parse(t, "--timeout=0").Config()

		assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
	})
}

func TestMain_Run_AnalyzeRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	m := main.NewMain()

	err := m.Run(context.Background(), []string{
		"analyze", "https://example.com", "--kind=translate",
		"--db=" + filepath.Join(t.TempDir(), "test.db"),
	}, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Equal(t, pagelens.EINVALID, pagelens.ErrorCode(err))
	assert.Contains(t, pagelens.ErrorMessage(err), "invalid analysis type")
}
