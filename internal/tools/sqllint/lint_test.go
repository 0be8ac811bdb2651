package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLinterFlagsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "a.go", "package q\n\n"+
		"const QGood = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;\n`\n\n"+
		"const QMissing = `select 2;`\n\n"+
		"const message = \"failed to update the board\"\n")
	writeGo(t, dir, "b.go", "package q\n\n"+
		"const QCopy = `--sql 11111111-2222-4333-8444-555555555555\ncreate table t (id int);\n`\n")
	writeGo(t, dir, "b_test.go", "package q\n\nconst QTest = `select 3;`\n")

	l := newLinter()
	require.NoError(t, l.lintPath(dir))
	vs := l.violations()
	require.Len(t, vs, 2)
	require.Equal(t, "QMissing", vs[0].name)
	require.Equal(t, "QCopy", vs[1].name)
	require.Contains(t, vs[1].message, "already used by QGood")
}

func TestLinterAcceptsRepositoryStatements(t *testing.T) {
	l := newLinter()
	require.NoError(t, l.lintPath(filepath.Join("..", "..", "sqlinline")))
	require.Empty(t, l.violations())
}
