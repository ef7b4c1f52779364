package scaffold

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNames(t *testing.T) {
	names, err := NewNames("example.com/app", "coupon_code")
	require.NoError(t, err)
	assert.Equal(t, "CouponCode", names.Type)
	assert.Equal(t, "CouponCodes", names.Plural)
	assert.Equal(t, "coupon_codes", names.Table)
	assert.Equal(t, "coupon-codes", names.Route)

	for _, bad := range []string{"", "Coupon", "1coupon", "coupon-code", "coupon code"} {
		_, err := NewNames("example.com/app", bad)
		assert.Error(t, err, bad)
	}
}

func TestRenderProducesValidGo(t *testing.T) {
	names, err := NewNames("example.com/app", "coupon")
	require.NoError(t, err)

	files, err := Render(names)
	require.NoError(t, err)
	require.Len(t, files, len(templates))

	fset := token.NewFileSet()
	for _, f := range files {
		_, err := parser.ParseFile(fset, f.Path, f.Content, parser.AllErrors)
		assert.NoError(t, err, f.Path)
		assert.Contains(t, string(f.Content), "Coupon", f.Path)
	}
}

func TestWriteSkipsExistingFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.24\n"), 0o644))

	module, err := ModulePath(root)
	require.NoError(t, err)
	assert.Equal(t, "example.com/app", module)

	names, err := NewNames(module, "coupon")
	require.NoError(t, err)

	existing := filepath.Join(root, "internal", "models", "coupon.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("package models\n"), 0o644))

	res, err := Write(root, names)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("internal", "models", "coupon.go")}, res.Skipped)
	assert.Len(t, res.Created, len(templates)-1)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "package models\n", string(content))

	res, err = Write(root, names)
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Len(t, res.Skipped, len(templates))
}

func TestModulePathMissing(t *testing.T) {
	_, err := ModulePath(t.TempDir())
	assert.Error(t, err)
}
