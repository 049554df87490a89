package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/pdfqa-be/types"
)

func TestValidateFileType(t *testing.T) {
	assert.NoError(t, ValidateFileType("informe.pdf"))
	assert.NoError(t, ValidateFileType("INFORME.PDF"))

	err := ValidateFileType("notas.docx")
	assert.True(t, types.IsKind(err, types.KindInvalidFileType))
	assert.Contains(t, err.Error(), ".docx")

	err = ValidateFileType("sin_extension")
	assert.True(t, types.IsKind(err, types.KindInvalidFileType))
	assert.Contains(t, err.Error(), "sin extensión")
}

func TestValidateFileSize(t *testing.T) {
	assert.NoError(t, ValidateFileSize(1024, 1))
	assert.NoError(t, ValidateFileSize(1024*1024, 1))

	err := ValidateFileSize(1024*1024+1, 1)
	assert.True(t, types.IsKind(err, types.KindFileTooLarge))

	// zero falls back to the default limit
	assert.NoError(t, ValidateFileSize(DefaultMaxFileSizeMB*1024*1024, 0))
	assert.Error(t, ValidateFileSize(DefaultMaxFileSizeMB*1024*1024+1, 0))
}

func TestSaveUploadedFile(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveUploadedFile(strings.NewReader("%PDF-1.4"), filepath.Join(dir, "uploads"), "mi informe (v2).PDF")
	require.NoError(t, err)

	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "mi_informe__v2__"), name)
	assert.True(t, strings.HasSuffix(name, ".pdf"), name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestGetFileNameWithoutExt(t *testing.T) {
	assert.Equal(t, "manual", GetFileNameWithoutExt("/tmp/docs/manual.pdf"))
	assert.Equal(t, "manual", GetFileNameWithoutExt("manual"))
}
