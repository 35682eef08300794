package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/lexandro/storycheck/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	// Keep the working directory's config file out of the test.
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func Test_rootCommand_PassingTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "components/Button.tsx", "components/stories/Button.stories.tsx")

	out, err := executeRoot(t, "--root", root, "--no-color")

	require.NoError(t, err)
	assert.Contains(t, out, "✅ All components have story files!")
	assert.Contains(t, out, "Total components: 1")
}

func Test_rootCommand_MissingStoryReturnsCheckFailed(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "components/Card.tsx")

	out, err := executeRoot(t, "--root", root, "--no-color")

	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out, "❌ Missing story for:")
	assert.Contains(t, out, "ComponentName.stories.tsx (or .ts, .jsx, .js)")
}

func Test_rootCommand_JSONFormat(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "components/Card.tsx", "components/Button.tsx", "components/stories/Button.stories.jsx")

	out, err := executeRoot(t, "--root", root, "--format", "json")
	require.ErrorIs(t, err, errCheckFailed)

	var r report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 2, r.TotalComponents)
	assert.Equal(t, 1, r.MissingCount)
	assert.False(t, r.Passed)
}

func Test_rootCommand_UnknownFormat(t *testing.T) {
	_, err := executeRoot(t, "--root", t.TempDir(), "--format", "xml")

	require.Error(t, err)
	assert.NotErrorIs(t, err, errCheckFailed)
}

func Test_rootCommand_MissingRootIsError(t *testing.T) {
	_, err := executeRoot(t, "--root", filepath.Join(t.TempDir(), "absent"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, errCheckFailed)
}

func Test_rootCommand_ExcludeFlag(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "legacy/components/Old.tsx")

	out, err := executeRoot(t, "--root", root, "--no-color", "--exclude", "legacy")

	require.NoError(t, err)
	assert.Contains(t, out, "No component files found")
}

func Test_rootCommand_SkipDefaultDirsFlag(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "node_modules/ui/components/Button.tsx")

	_, err := executeRoot(t, "--root", root, "--no-color")
	require.ErrorIs(t, err, errCheckFailed)

	out, err := executeRoot(t, "--root", root, "--no-color", "--skip-default-dirs")
	require.NoError(t, err)
	assert.Contains(t, out, "No component files found")
}

func Test_setupLogger_LogFileClosed(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "storycheck.log")

	logger, closeLog := setupLogger("info", logPath)
	logger.Info("scan complete", "total", 3)
	closeLog()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan complete")
	assert.Contains(t, string(data), "total=3")

	// The handle is closed, so the logger can no longer write.
	logger.Info("after close")
	data, err = os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "after close")
}

func Test_setupLogger_StderrCloseIsNoop(t *testing.T) {
	logger, closeLog := setupLogger("warn", "")
	require.NotNil(t, logger)
	closeLog()
	closeLog()
}
