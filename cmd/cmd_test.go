package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
)

func TestWriteDefaultConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, writeDefaultConfig(fs, "/repo", false))

	cfg, err := config.LoadFrom(fs, "/repo", "")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	err = writeDefaultConfig(fs, "/repo", false)
	require.Error(t, err)
	assert.Contains(t, errors.GetAllHints(err), "use --force to overwrite")

	require.NoError(t, writeDefaultConfig(fs, "/repo", true))
}

func TestReportFailsWhenAnyResultFailed(t *testing.T) {
	ok := []models.Result{
		{Companion: "/a.mock.ts", Outcome: models.Created, Changed: 1},
		{Companion: "/b.mock.ts", Outcome: models.NoOp, Err: models.ErrNoExports},
	}
	assert.NoError(t, report(ok))

	bad := append(ok, models.Result{Companion: "/c.mock.ts", Outcome: models.Failed, Err: models.ErrMalformedCompanion})
	err := report(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")
}

func TestLogResultLevels(t *testing.T) {
	var buf bytes.Buffer
	logger.SetWriter(&buf)
	defer logger.SetWriter(os.Stdout)

	logResult(models.Result{Kind: models.MockCompanion, Companion: "a.mock.ts", Outcome: models.Updated, Changed: 2})
	logResult(models.Result{Kind: models.TestCompanion, Companion: "a.test.ts", Outcome: models.NoOp})
	logResult(models.Result{Kind: models.MockCompanion, Companion: "b.mock.ts", Outcome: models.Failed, Err: models.ErrMalformedCompanion})

	out := buf.String()
	assert.Contains(t, out, "INFO mock a.mock.ts: updated(2)")
	assert.NotContains(t, out, "a.test.ts")
	assert.Contains(t, out, "ERROR mock b.mock.ts: failed:")
}
