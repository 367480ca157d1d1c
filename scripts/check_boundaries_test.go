package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, root string, rel string, src string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func TestCollectViolations(t *testing.T) {
	root := filepath.Join(t.TempDir(), "contexts")
	writeSource(t, root, "area/svc/domain/entities/ok.go", "package entities\n\nimport \"time\"\n\nvar _ = time.Now\n")
	writeSource(t, root, "area/svc/application/bad.go", "package application\n\nimport _ \"gorm.io/gorm\"\n")
	writeSource(t, root, "area/svc/ports/bad.go", "package ports\n\nimport _ \"docketdesk/contexts/area/other/ports\"\n")
	writeSource(t, root, "area/svc/adapters/postgres/ok.go", "package postgresadapter\n\nimport _ \"gorm.io/gorm\"\n")
	writeSource(t, root, "area/svc/application/svc_test.go", "package application\n\nimport _ \"github.com/stretchr/testify/require\"\n")

	violations := collectViolations(root)
	require.Len(t, violations, 2)

	rules := map[string]string{}
	for _, v := range violations {
		rules[v.Import] = v.Rule
	}
	assert.Contains(t, rules["gorm.io/gorm"], "third-party")
	assert.Contains(t, rules["docketdesk/contexts/area/other/ports"], "cross-service")
}

func TestIsStdlib(t *testing.T) {
	assert.True(t, isStdlib("net/http"))
	assert.False(t, isStdlib("github.com/google/uuid"))
	assert.False(t, isStdlib("docketdesk/contracts"))
}
