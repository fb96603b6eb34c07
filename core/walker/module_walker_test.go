package walker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/models"
)

func TestWalkFindsSourceModules(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, f := range []string{
		"/repo/domain/user/service.ts",
		"/repo/domain/user/service.mock.ts",
		"/repo/domain/user/service.test.ts",
		"/repo/domain/user/index.ts",
		"/repo/domain/user/types.d.ts",
		"/repo/domain/ui/button.tsx",
		"/repo/domain/ui/button.spec.tsx",
		"/repo/domain/ui/readme.md",
		"/repo/domain/node_modules/pkg/index.ts",
		"/repo/other/outside.ts",
	} {
		require.NoError(t, afero.WriteFile(fs, f, []byte("export {}"), 0o644))
	}

	got, err := NewModuleWalker(fs, config.Default()).Walk("/repo")
	require.NoError(t, err)

	want := []models.DiscoveredModule{
		{Path: "/repo/domain/ui/button.tsx", RelPath: "ui/button.tsx"},
		{Path: "/repo/domain/user/index.ts", RelPath: "user/index.ts"},
		{Path: "/repo/domain/user/service.ts", RelPath: "user/service.ts", HasMock: true, HasTest: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Walk() mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkMissingDomainRoot(t *testing.T) {
	_, err := NewModuleWalker(afero.NewMemMapFs(), config.Default()).Walk("/repo")
	require.Error(t, err)
}
