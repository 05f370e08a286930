package lint

import (
	"context"
	"errors"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/gnolang/effectlint/internal/lints"
	"github.com/gnolang/effectlint/internal/types"
)

func TestMain(m *testing.M) {
	ProgressOutput = io.Discard
	goleak.VerifyTestMain(m)
}

type mockLintEngine struct {
	mock.Mock
}

func (m *mockLintEngine) Run(filePath string) ([]types.Issue, error) {
	args := m.Called(filePath)
	return args.Get(0).([]types.Issue), args.Error(1)
}

func (m *mockLintEngine) RunSource(source []byte) ([]types.Issue, error) {
	args := m.Called(source)
	return args.Get(0).([]types.Issue), args.Error(1)
}

func (m *mockLintEngine) IgnoreRule(rule string) {
	m.Called(rule)
}

func (m *mockLintEngine) IgnorePath(path string) {
	m.Called(path)
}

func setupMockEngine(expectedIssues []types.Issue, filePath string) *mockLintEngine {
	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", filePath).Return(expectedIssues, nil)
	return mockEngine
}

func setupSourceMockEngine(expectedIssues []types.Issue, content []byte) *mockLintEngine {
	mockEngine := new(mockLintEngine)
	mockEngine.On("RunSource", content).Return(expectedIssues, nil)
	return mockEngine
}

func issueAt(filename, rule, message string) types.Issue {
	return types.Issue{
		Rule:     rule,
		Filename: filename,
		Start:    token.Position{Filename: filename, Offset: 0, Line: 1, Column: 1},
		End:      token.Position{Filename: filename, Offset: 10, Line: 1, Column: 11},
		Message:  message,
	}
}

func TestProcessFile(t *testing.T) {
	t.Parallel()
	expectedIssues := []types.Issue{issueAt("test.tsx", "test-rule", "Test issue")}
	mockEngine := setupMockEngine(expectedIssues, "test.tsx")

	issues, err := ProcessFile(mockEngine, "test.tsx")

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
}

func TestProcessSource(t *testing.T) {
	t.Parallel()
	source := []byte("const Loader = () => null;")
	expectedIssues := []types.Issue{issueAt("", "test-rule", "Test issue")}
	mockEngine := setupSourceMockEngine(expectedIssues, source)

	issues, err := ProcessSource(mockEngine, source)

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
}

func TestProcessPath(t *testing.T) {
	t.Parallel()
	logger := zap.NewNop()
	ctx := context.Background()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "a.tsx", "b.jsx", "notes.txt")

	expectedIssues := []types.Issue{
		issueAt(paths[0], "rule1", "Test issue 1"),
		issueAt(paths[1], "rule2", "Test issue 2"),
	}

	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", paths[0]).Return([]types.Issue{expectedIssues[0]}, nil)
	mockEngine.On("Run", paths[1]).Return([]types.Issue{expectedIssues[1]}, nil)

	issues, err := ProcessPath(ctx, logger, mockEngine, tempDir, ProcessFile)

	assert.NoError(t, err)
	// results follow the scan order, not completion order
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
	mockEngine.AssertNotCalled(t, "Run", paths[2])
}

func TestProcessPathSkipsDependencies(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "node_modules", "react"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, ".cache"), 0o755))
	createTempFiles(t, tempDir, filepath.Join("node_modules", "react", "index.js"), filepath.Join(".cache", "x.tsx"))
	paths := createTempFiles(t, tempDir, "app.tsx")

	mockEngine := setupMockEngine([]types.Issue{}, paths[0])

	issues, err := ProcessPath(context.Background(), nil, mockEngine, tempDir, ProcessFile)

	assert.NoError(t, err)
	assert.Empty(t, issues)
	mockEngine.AssertNumberOfCalls(t, "Run", 1)
}

func TestProcessPathSingleFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "a.tsx", "readme.md")

	expected := []types.Issue{issueAt(paths[0], "rule", "issue")}
	mockEngine := setupMockEngine(expected, paths[0])

	issues, err := ProcessPath(context.Background(), nil, mockEngine, paths[0], ProcessFile)
	assert.NoError(t, err)
	assert.Equal(t, expected, issues)

	issues, err = ProcessPath(context.Background(), nil, mockEngine, paths[1], ProcessFile)
	assert.NoError(t, err)
	assert.Empty(t, issues)

	mockEngine.AssertNumberOfCalls(t, "Run", 1)
}

func TestProcessPathMissing(t *testing.T) {
	t.Parallel()

	_, err := ProcessPath(context.Background(), nil, new(mockLintEngine), filepath.Join(t.TempDir(), "missing"), ProcessFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessPathContinuesAfterErrors(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "a.tsx", "b.tsx", "c.tsx")
	errBroken := errors.New("broken")

	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", paths[0]).Return([]types.Issue{issueAt(paths[0], "rule", "first")}, nil)
	mockEngine.On("Run", paths[1]).Return([]types.Issue(nil), errBroken)
	mockEngine.On("Run", paths[2]).Return([]types.Issue{issueAt(paths[2], "rule", "third")}, nil)

	issues, err := ProcessPath(context.Background(), zap.NewNop(), mockEngine, tempDir, ProcessFile)

	assert.ErrorIs(t, err, errBroken)
	assert.Contains(t, err.Error(), paths[1])
	assert.Len(t, issues, 2)
	mockEngine.AssertExpectations(t)
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	createTempFiles(t, tempDir, "a.tsx", "b.tsx")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mockEngine := new(mockLintEngine)
	issues, err := ProcessPath(ctx, nil, mockEngine, tempDir, ProcessFile)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, issues)
	mockEngine.AssertNotCalled(t, "Run", mock.Anything)
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()
	logger := zap.NewNop()
	ctx := context.Background()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "test1.tsx", "test2.ts")

	expectedIssues := []types.Issue{
		issueAt(paths[0], "rule1", "Test issue 1"),
		issueAt(paths[1], "rule2", "Test issue 2"),
	}

	mockEngine := new(mockLintEngine)
	mockEngine.On("Run", paths[0]).Return([]types.Issue{expectedIssues[0]}, nil)
	mockEngine.On("Run", paths[1]).Return([]types.Issue{expectedIssues[1]}, nil)

	issues, err := ProcessFiles(ctx, logger, mockEngine, paths, ProcessFile)

	assert.NoError(t, err)
	assert.Len(t, issues, 2)
	assert.Contains(t, issues, expectedIssues[0])
	assert.Contains(t, issues, expectedIssues[1])
	mockEngine.AssertExpectations(t)
}

func TestProcessSources(t *testing.T) {
	t.Parallel()
	logger := zap.NewNop()
	ctx := context.Background()

	expectedIssues := []types.Issue{
		issueAt("", "rule1", "Test issue 1"),
		issueAt("", "rule2", "Test issue 2"),
	}

	first := []byte("const A = () => null;")
	second := []byte("const B = () => null;")

	mockEngine := new(mockLintEngine)
	mockEngine.On("RunSource", first).Return([]types.Issue{expectedIssues[0]}, nil)
	mockEngine.On("RunSource", second).Return([]types.Issue{expectedIssues[1]}, nil)

	issues, err := ProcessSources(ctx, logger, mockEngine, [][]byte{first, second}, ProcessSource)

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	mockEngine.AssertExpectations(t)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	content := `name: project
rules:
  effect-components:
    severity: WARNING
    data:
      suffix: Listener
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "project", config.Name)
	rule := config.Rules[lints.EffectComponentRule]
	assert.Equal(t, types.SeverityWarning, rule.Severity)
	assert.Equal(t, "Listener", rule.Data["suffix"])

	config, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, config.Rules)

	config, err = LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, config.Rules)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = LoadConfig(empty)
	assert.NoError(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("rules: [1, 2"), 0o644))
	_, err = LoadConfig(invalid)
	assert.Error(t, err)
}

func TestWriteConfigRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, WriteConfig(path, DefaultConfig()))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestNew(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`rules:
  effect-components:
    severity: WARNING
    data:
      suffix: Listener
`), 0o644))

	engine, err := New(dir, path)
	require.NoError(t, err)

	issues, err := engine.RunSource([]byte("const Loader = () => null;\n"))
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, lints.MissingSuffix, issues[0].MessageID)
	assert.Equal(t, types.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "LoaderListener", issues[0].Fix.NewText)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`rules:
  effect-components:
    data:
      suffix: effect
`), 0o644))
	_, err = New(dir, bad)
	assert.ErrorIs(t, err, lints.ErrInvalidSuffix)
}

func TestProcessPathWithEngine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"loader.tsx": "export const Loader = () => <></>;\n",
		"gate.jsx":   "export function GateEffect() {\n  return <div />;\n}\n",
		"page.tsx":   "export const Page = () => <main />;\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	engine, err := New(dir, "")
	require.NoError(t, err)

	issues, err := ProcessPath(context.Background(), zap.NewNop(), engine, dir, ProcessFile)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, filepath.Join(dir, "gate.jsx"), issues[0].Filename)
	assert.Equal(t, lints.SpuriousSuffix, issues[0].MessageID)
	assert.Equal(t, filepath.Join(dir, "loader.tsx"), issues[1].Filename)
	assert.Equal(t, lints.MissingSuffix, issues[1].MessageID)
}

func createTempFiles(t *testing.T, dir string, fileNames ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(fileNames))
	for _, fileName := range fileNames {
		filePath := filepath.Join(dir, fileName)
		f, err := os.Create(filePath)
		require.NoError(t, err)
		require.NoError(t, f.Close())
		paths = append(paths, filePath)
	}
	return paths
}
