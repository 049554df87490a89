package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pdfqa-be/types"
)

type fakeExtractor struct {
	name  string
	pages map[int]string
	err   error
	calls int
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Extract(context.Context, string) (map[int]string, error) {
	f.calls++
	return f.pages, f.err
}

func TestPDFService_FirstSuccessWins(t *testing.T) {
	first := &fakeExtractor{name: "first", pages: map[int]string{1: "texto"}}
	second := &fakeExtractor{name: "second", pages: map[int]string{1: "otro"}}

	pages, err := NewPDFService(first, second).ExtractTextWithPages(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "texto"}, pages)
	assert.Zero(t, second.calls)
}

func TestPDFService_FallsBackOnError(t *testing.T) {
	first := &fakeExtractor{name: "first", err: errors.New("xref roto")}
	second := &fakeExtractor{name: "second", pages: map[int]string{1: "uno", 2: ""}}

	pages, err := NewPDFService(first, second).ExtractTextWithPages(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "uno", 2: ""}, pages)
}

func TestPDFService_TextlessResultTriesNextExtractor(t *testing.T) {
	scanned := &fakeExtractor{name: "native", pages: map[int]string{1: "", 2: " "}}
	ocr := &fakeExtractor{name: "ocr", pages: map[int]string{1: "escaneado", 2: ""}}

	pages, err := NewPDFService(scanned, ocr).ExtractTextWithPages(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "escaneado", pages[1])

	ocr.pages = map[int]string{1: "", 2: ""}
	pages, err = NewPDFService(scanned, ocr).ExtractTextWithPages(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "", 2: " "}, pages)
}

func TestPDFService_AggregatesFailures(t *testing.T) {
	first := &fakeExtractor{name: "first", err: errors.New("cabecera inválida")}
	second := &fakeExtractor{name: "second", err: errors.New("El PDF está vacío (0 páginas)")}

	_, err := NewPDFService(first, second).ExtractTextWithPages(context.Background(), "doc.pdf")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindPDFProcessing))

	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t,
		"No se pudo procesar el archivo PDF. Error principal: cabecera inválida. Error alternativo: El PDF está vacío (0 páginas)",
		e.Message)
}

func TestNativeExtractor_ReadsPages(t *testing.T) {
	pages, err := NativeExtractor{}.Extract(context.Background(), "testdata/sample.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[1], "Hola mundo")
	assert.Contains(t, pages[2], "Segunda pagina")
}

func TestNativeExtractor_RejectsNonPDF(t *testing.T) {
	_, err := NativeExtractor{}.Extract(context.Background(), "testdata/not_a_pdf.pdf")
	assert.Error(t, err)

	_, err = NativeExtractor{}.Extract(context.Background(), "testdata/missing.pdf")
	assert.Error(t, err)
}
