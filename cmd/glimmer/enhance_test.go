package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/glimmerlabs/glimmer/internal/config"
	"github.com/glimmerlabs/glimmer/internal/model"
	"github.com/glimmerlabs/glimmer/internal/tui"
)

const testConfigYAML = `version: "1.0"
name: gallery
cloud:
  base_url: https://media.glimmer.dev
  space: demo
settings:
  parallel: 2
profiles:
  - name: hero
    match:
      tag: img
      class: hero
    plugins:
      - type: lazyload
      - type: accessibility
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glimmer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o644))
	return path
}

func executeCommand(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd.Execute()
}

func TestEnhanceCommandRewritesDocument(t *testing.T) {
	cfgPath := writeTestConfig(t)

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "page.html")
	outputPath := filepath.Join(dir, "page.enhanced.html")
	doc := `<html><body><img class="hero" src="/assets/city-skyline.jpg"></body></html>`
	require.NoError(t, os.WriteFile(inputPath, []byte(doc), 0o644))

	root := newRootCmd()
	err := executeCommand(root, "enhance", "--config", cfgPath, "--output", outputPath, inputPath)
	require.NoError(t, err)

	enhanced, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Contains(t, string(enhanced), `src="https://media.glimmer.dev/demo/assets/city-skyline.jpg?_a=`)
	require.Contains(t, string(enhanced), `loading="lazy"`)
	require.Contains(t, string(enhanced), `alt="city skyline"`)
}

func TestEnhanceCommandSelectsProfile(t *testing.T) {
	cfgPath := writeTestConfig(t)

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "page.html")
	outputPath := filepath.Join(dir, "out.html")
	require.NoError(t, os.WriteFile(inputPath, []byte(`<html><body><img class="hero" src="/a.jpg"></body></html>`), 0o644))

	root := newRootCmd()
	err := executeCommand(root, "enhance", "--config", cfgPath, "--output", outputPath, "--profile", "missing", inputPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not defined")
}

func TestEnhanceCommandValidatesConfigFile(t *testing.T) {
	root := newRootCmd()
	err := executeCommand(root, "enhance", "--config", "/path/does/not/exist")
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestValidateEnhanceOptions(t *testing.T) {
	t.Parallel()

	t.Run("returns error when config path is empty", func(t *testing.T) {
		t.Parallel()
		err := validateEnhanceOptions(enhanceOptions{ConfigPath: ""})
		require.Error(t, err)
		require.Contains(t, err.Error(), "required")
	})

	t.Run("returns error when config file does not exist", func(t *testing.T) {
		t.Parallel()
		err := validateEnhanceOptions(enhanceOptions{ConfigPath: "/nonexistent/glimmer.yaml"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "does not exist")
	})

	t.Run("returns error when config path is a directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		err := validateEnhanceOptions(enhanceOptions{ConfigPath: dir})
		require.Error(t, err)
		require.Contains(t, err.Error(), "directory")
	})

	t.Run("returns error when input file does not exist", func(t *testing.T) {
		t.Parallel()
		cfgPath := filepath.Join(t.TempDir(), "glimmer.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("test"), 0o644))

		err := validateEnhanceOptions(enhanceOptions{ConfigPath: cfgPath, InputPath: "/nonexistent/page.html"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "does not exist")
	})

	t.Run("allows stdin input", func(t *testing.T) {
		t.Parallel()
		cfgPath := filepath.Join(t.TempDir(), "glimmer.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("test"), 0o644))

		require.NoError(t, validateEnhanceOptions(enhanceOptions{ConfigPath: cfgPath, InputPath: "-"}))
	})

	t.Run("succeeds for valid paths", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "glimmer.yaml")
		inputPath := filepath.Join(dir, "page.html")
		require.NoError(t, os.WriteFile(cfgPath, []byte("test"), 0o644))
		require.NoError(t, os.WriteFile(inputPath, []byte("<html></html>"), 0o644))

		require.NoError(t, validateEnhanceOptions(enhanceOptions{ConfigPath: cfgPath, InputPath: inputPath}))
	})
}

func TestRunEnhance(t *testing.T) {
	t.Run("handles invalid config file", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("invalid: yaml: content: ["), 0o644))

		err := runEnhance(enhanceOptions{ConfigPath: cfgPath, NonInteractive: true})
		require.Error(t, err)
		require.Contains(t, err.Error(), "parse error")
	})

	t.Run("writes diff for changed documents", func(t *testing.T) {
		cfgPath := writeTestConfig(t)
		dir := t.TempDir()
		inputPath := filepath.Join(dir, "page.html")
		outputPath := filepath.Join(dir, "out.html")
		require.NoError(t, os.WriteFile(inputPath, []byte(`<html><body><img class="hero" src="/a.jpg"></body></html>`), 0o644))

		opts := enhanceOptions{
			ConfigPath:     cfgPath,
			InputPath:      inputPath,
			OutputPath:     outputPath,
			ShowDiff:       true,
			NonInteractive: true,
		}
		require.NoError(t, runEnhance(opts))

		enhanced, err := os.ReadFile(outputPath)
		require.NoError(t, err)
		require.Contains(t, string(enhanced), "loading=\"lazy\"")
	})
}

func TestDispatchTuiMessage(t *testing.T) {
	t.Run("non-interactive mode updates state directly", func(t *testing.T) {
		modelState := tui.NewModel(&config.Config{}, true)

		report := model.PipelineReport{PipelineID: "gen-1", Target: "img.hero"}
		dispatchTuiMessage(false, nil, &modelState, tui.PipelineCompleteMsg{Report: report})

		require.Equal(t, 1, modelState.CompletedPipelines())
	})

	t.Run("interactive mode with nil program does nothing", func(t *testing.T) {
		modelState := tui.NewModel(&config.Config{}, false)

		report := model.PipelineReport{PipelineID: "gen-1", Target: "img.hero"}
		dispatchTuiMessage(true, nil, &modelState, tui.PipelineCompleteMsg{Report: report})

		require.Zero(t, modelState.CompletedPipelines())
	})
}
