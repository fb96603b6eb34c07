package generator

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/models"
)

const (
	sourcePath = "/repo/domain/foo.ts"
	mockPath   = "/repo/domain/foo.mock.ts"
	testPath   = "/repo/domain/foo.test.ts"
)

func setup(t *testing.T, files map[string]string) (afero.Fs, *CompanionGenerator) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs, NewCompanionGenerator(fs, config.Default())
}

func read(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(content)
}

func TestSyncMockCreatesCompanion(t *testing.T) {
	fs, g := setup(t, map[string]string{
		sourcePath: "export class Foo { bar(): void {} }\n",
	})

	res := g.SyncMock(context.Background(), sourcePath)
	require.NoError(t, res.Err)
	assert.Equal(t, models.Created, res.Outcome)
	assert.Equal(t, mockPath, res.Companion)

	assert.Equal(t, `import type { Foo } from '@sdv/domain/foo'

class FooMock implements Public<Foo> {
    static readonly shared = mockFunctionWithReturnValueRecreatingOnEachTest(
        () => new FooMock(),
    )

    private constructor() {
        //
    }

    readonly bar = jest.fn<
        ReturnType<Foo['bar']>,
        Parameters<Foo['bar']>
    >()
}

export { FooMock as Foo }
`, read(t, fs, mockPath))
}

func TestSyncMockUpdatesThenReachesFixedPoint(t *testing.T) {
	ctx := context.Background()
	fs, g := setup(t, map[string]string{
		sourcePath: "export class Foo { bar(): void {} }\n",
	})
	require.Equal(t, models.Created, g.SyncMock(ctx, sourcePath).Outcome)

	require.NoError(t, afero.WriteFile(fs, sourcePath, []byte("export class Foo { bar(): void {}; baz(): number { return 1 } }\nexport function load() {}\n"), 0o644))
	res := g.SyncMock(ctx, sourcePath)
	require.NoError(t, res.Err)
	assert.Equal(t, models.Updated, res.Outcome)
	assert.Equal(t, 2, res.Changed)

	content := read(t, fs, mockPath)
	assert.Contains(t, content, "    readonly baz = jest.fn<")
	assert.Contains(t, content, "const loadMock = jest.fn<ReturnType<typeof load>, Parameters<typeof load>>()")

	again := g.SyncMock(ctx, sourcePath)
	assert.Equal(t, models.NoOp, again.Outcome)
	assert.NoError(t, again.Err)
	assert.Equal(t, content, read(t, fs, mockPath))
}

func TestSyncMockFromCompanionSide(t *testing.T) {
	ctx := context.Background()
	fs, g := setup(t, map[string]string{
		sourcePath: "export function load() {}\n",
	})

	res := g.SyncMock(ctx, mockPath)
	require.NoError(t, res.Err)
	assert.Equal(t, models.Created, res.Outcome)
	assert.Equal(t, sourcePath, res.Source)
	assert.Contains(t, read(t, fs, mockPath), "export { loadMock as load }")
}

func TestSyncMockNoExports(t *testing.T) {
	fs, g := setup(t, map[string]string{
		sourcePath: "export type Id = string\nexport interface Shape {}\n",
	})

	res := g.SyncMock(context.Background(), sourcePath)
	assert.Equal(t, models.NoOp, res.Outcome)
	assert.True(t, errors.Is(res.Err, models.ErrNoExports))

	exists, err := afero.Exists(fs, mockPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSyncMockMalformedCompanionIsLeftAlone(t *testing.T) {
	broken := "class FooMock {\n    readonly bar = \n"
	fs, g := setup(t, map[string]string{
		sourcePath: "export class Foo { bar(): void {}; baz(): void {} }\n",
		mockPath:   broken,
	})

	res := g.SyncMock(context.Background(), sourcePath)
	assert.Equal(t, models.Failed, res.Outcome)
	assert.True(t, errors.Is(res.Err, models.ErrMalformedCompanion))
	assert.Equal(t, broken, read(t, fs, mockPath))
}

func TestSyncMockFailures(t *testing.T) {
	ctx := context.Background()
	_, g := setup(t, map[string]string{
		"/elsewhere/x.ts": "export function x() {}\n",
	})

	res := g.SyncMock(ctx, mockPath)
	assert.Equal(t, models.Failed, res.Outcome)
	assert.True(t, errors.Is(res.Err, models.ErrOwnPathUndeterminable) || errors.Is(res.Err, models.ErrSourceUnreadable))

	res = g.SyncMock(ctx, testPath)
	assert.True(t, errors.Is(res.Err, models.ErrUnsupportedFile))

	res = g.SyncMock(ctx, "/elsewhere/x.ts")
	assert.True(t, errors.Is(res.Err, models.ErrOwnPathUndeterminable))
}

func TestSyncMockMissingSourceForCompanion(t *testing.T) {
	_, g := setup(t, map[string]string{
		"/repo/domain/other.ts": "export function x() {}\n",
		mockPath:                "const loadMock = jest.fn()\n",
	})

	res := g.SyncMock(context.Background(), mockPath)
	assert.Equal(t, models.Failed, res.Outcome)
	assert.True(t, errors.Is(res.Err, models.ErrSourceUnreadable))
}

func TestSyncTestCreatesScaffold(t *testing.T) {
	fs, g := setup(t, map[string]string{
		"/repo/domain/thing/index.ts": "export class Thing {}\n",
		"/repo/domain/repo.ts":        "export function load() {}\n",
		sourcePath: `import { Thing } from '@sdv/domain/thing'
import type { Repo } from '@sdv/domain/repo'
import { load } from '@sdv/domain/repo'
import { helper } from './helper'

export function run() {}
`,
	})

	res := g.SyncTest(context.Background(), sourcePath)
	require.NoError(t, res.Err)
	assert.Equal(t, models.Created, res.Outcome)
	assert.Equal(t, `import { run } from '@sdv/domain/foo'

jest.useExtendedMock('@sdv/domain/thing/index.mock')
jest.useExtendedMock('@sdv/domain/repo.mock')

import { Thing } from '@sdv/domain/thing/index.mock'
import { load } from '@sdv/domain/repo.mock'
`, read(t, fs, testPath))
}

func TestSyncTestAddsOnlyMissingDirectives(t *testing.T) {
	ctx := context.Background()
	existing := `import { run } from '@sdv/domain/foo'

jest.useExtendedMock('@sdv/domain/thing/index.mock')

describe('run', () => {})
`
	fs, g := setup(t, map[string]string{
		"/repo/domain/thing/index.ts": "export class Thing {}\n",
		sourcePath:                    "import { Thing } from '@sdv/domain/thing'\nexport function run() {}\n",
		testPath:                      existing,
	})

	res := g.SyncTest(ctx, testPath)
	require.NoError(t, res.Err)
	assert.Equal(t, models.NoOp, res.Outcome)
	assert.Equal(t, existing, read(t, fs, testPath))

	require.NoError(t, afero.WriteFile(fs, sourcePath, []byte("import { Thing } from '@sdv/domain/thing'\nimport { load } from '@sdv/domain/repo'\nexport function run() {}\n"), 0o644))
	res = g.SyncTest(ctx, sourcePath)
	require.NoError(t, res.Err)
	assert.Equal(t, models.Updated, res.Outcome)
	assert.Equal(t, 1, res.Changed)
	assert.Equal(t, `import { run } from '@sdv/domain/foo'

jest.useExtendedMock('@sdv/domain/thing/index.mock')
jest.useExtendedMock('@sdv/domain/repo.mock')

describe('run', () => {})
`, read(t, fs, testPath))
}

func TestSyncExistingNeverCreates(t *testing.T) {
	ctx := context.Background()
	fs, g := setup(t, map[string]string{
		sourcePath: "export function load() {}\n",
	})
	assert.Empty(t, g.SyncExisting(ctx, sourcePath))

	require.Equal(t, models.Created, g.SyncMock(ctx, sourcePath).Outcome)
	require.NoError(t, afero.WriteFile(fs, sourcePath, []byte("export function load() {}\nexport function save() {}\n"), 0o644))

	results := g.SyncExisting(ctx, sourcePath)
	require.Len(t, results, 1)
	assert.Equal(t, models.MockCompanion, results[0].Kind)
	assert.Equal(t, models.Updated, results[0].Outcome)

	exists, err := afero.Exists(fs, testPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSyncAll(t *testing.T) {
	fs, g := setup(t, map[string]string{
		"/repo/domain/a.ts":       "export function a() {}\n",
		"/repo/domain/b/index.ts": "export type B = string\n",
	})

	results, err := g.SyncAll(context.Background(), "/repo", false)
	require.NoError(t, err)
	require.Len(t, results, 4)

	outcomes := map[string]models.Outcome{}
	for _, r := range results {
		outcomes[r.Companion] = r.Outcome
	}
	assert.Equal(t, models.Created, outcomes["/repo/domain/a.mock.ts"])
	assert.Equal(t, models.Created, outcomes["/repo/domain/a.test.ts"])
	assert.Equal(t, models.NoOp, outcomes["/repo/domain/b/index.mock.ts"])
	assert.Equal(t, models.NoOp, outcomes["/repo/domain/b/index.test.ts"])

	exists, err := afero.Exists(fs, "/repo/domain/b/index.test.ts")
	require.NoError(t, err)
	assert.False(t, exists, "nothing to test in a type-only module")
}

func TestSyncAllExistingOnly(t *testing.T) {
	fs, g := setup(t, map[string]string{
		"/repo/domain/a.ts":      "export function a() {}\nexport function b() {}\n",
		"/repo/domain/a.mock.ts": "const aMock = jest.fn()\nexport { aMock as a }\n",
		"/repo/domain/c.ts":      "export function c() {}\n",
	})

	results, err := g.SyncAll(context.Background(), "/repo", true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.Updated, results[0].Outcome)
	assert.Contains(t, read(t, fs, "/repo/domain/a.mock.ts"), "export { bMock as b }")

	for _, p := range []string{"/repo/domain/a.test.ts", "/repo/domain/c.mock.ts", "/repo/domain/c.test.ts"} {
		exists, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.False(t, exists, p)
	}
}

func TestSyncTestStillScaffoldsEmptyModuleOnRequest(t *testing.T) {
	fs, g := setup(t, map[string]string{
		"/repo/domain/b/index.ts": "export type B = string\n",
	})

	res := g.SyncTest(context.Background(), "/repo/domain/b/index.ts")
	require.NoError(t, res.Err)
	assert.Equal(t, models.Created, res.Outcome)
	assert.Contains(t, read(t, fs, "/repo/domain/b/index.test.ts"), "// TODO: import the module under test from '@sdv/domain/b'")
}

func TestSyncMockWithNestedDomainDirectory(t *testing.T) {
	ctx := context.Background()
	fs, g := setup(t, map[string]string{
		"/repo/domain/auth/service.ts":  "export function login() {}\n",
		"/repo/domain/auth/domain/x.ts": "export class X { run(): void {} }\n",
	})

	res := g.SyncMock(ctx, "/repo/domain/auth/service.ts")
	require.NoError(t, res.Err)
	assert.Equal(t, models.Created, res.Outcome)
	assert.Contains(t, read(t, fs, "/repo/domain/auth/service.mock.ts"), "import { login } from '@sdv/domain/auth/service'")

	res = g.SyncMock(ctx, "/repo/domain/auth/domain/x.ts")
	require.NoError(t, res.Err)
	assert.Contains(t, read(t, fs, "/repo/domain/auth/domain/x.mock.ts"), "import type { X } from '@sdv/domain/auth/domain/x'")
}
