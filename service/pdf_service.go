package service

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/types"
	"github.com/tieubaoca/pdfqa-be/utils"
)

var errEmptyPDF = errors.New("El PDF está vacío (0 páginas)")

// PDFExtractor turns a PDF file into 1-indexed page number -> page text.
// A page without extractable text maps to "".
type PDFExtractor interface {
	Name() string
	Extract(ctx context.Context, filePath string) (map[int]string, error)
}

// PDFService tries each extractor in order. A result without any text
// (typically a scanned document) lets later extractors have a go before it
// is accepted.
type PDFService struct {
	extractors []PDFExtractor
}

func NewPDFService(extractors ...PDFExtractor) *PDFService {
	return &PDFService{extractors: extractors}
}

// NewDefaultPDFService uses the pure Go reader first, then poppler, then OCR.
func NewDefaultPDFService() *PDFService {
	return NewPDFService(
		NativeExtractor{},
		PopplerExtractor{},
		NewOCRExtractor(""),
	)
}

func (s *PDFService) ExtractTextWithPages(ctx context.Context, filePath string) (map[int]string, error) {
	var (
		failures []string
		fallback map[int]string
	)
	for _, extractor := range s.extractors {
		pages, err := extractor.Extract(ctx, filePath)
		if err != nil {
			logger.Warnw("PDF extractor failed", "extractor", extractor.Name(), "path", filePath, "error", err)
			failures = append(failures, err.Error())
			continue
		}
		if hasText(pages) {
			return pages, nil
		}
		if fallback == nil {
			fallback = pages
		}
		logger.Infof("Extractor %s found no text in %s", extractor.Name(), filePath)
	}
	if fallback != nil {
		return fallback, nil
	}
	if len(failures) == 0 {
		return nil, types.NewError(types.KindPDFProcessing, "No se pudo procesar el archivo PDF")
	}
	return nil, types.NewError(types.KindPDFProcessing, "No se pudo procesar el archivo PDF. %s", describeFailures(failures))
}

func describeFailures(failures []string) string {
	parts := make([]string, 0, len(failures))
	for i, f := range failures {
		label := "Error alternativo"
		if i == 0 {
			label = "Error principal"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, f))
	}
	return strings.Join(parts, ". ")
}

func hasText(pages map[int]string) bool {
	for _, text := range pages {
		if !utils.IsBlank(text) {
			return true
		}
	}
	return false
}

// NativeExtractor reads the PDF text layer with github.com/ledongthuc/pdf.
type NativeExtractor struct{}

func (NativeExtractor) Name() string { return "native" }

func (NativeExtractor) Extract(_ context.Context, filePath string) (pages map[int]string, err error) {
	// The reader panics on some malformed inputs instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	total := reader.NumPage()
	if total == 0 {
		return nil, errEmptyPDF
	}

	pages = make(map[int]string, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages[i] = ""
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warnf("Failed to read text of page %d: %v", i, err)
			pages[i] = ""
			continue
		}
		pages[i] = strings.TrimSpace(text)
	}
	return pages, nil
}

// PopplerExtractor shells out to pdfinfo and pdftotext.
type PopplerExtractor struct{}

func (PopplerExtractor) Name() string { return "pdftotext" }

func (PopplerExtractor) Extract(ctx context.Context, filePath string) (map[int]string, error) {
	total, err := getNumPages(ctx, filePath)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, errEmptyPDF
	}

	pages := make(map[int]string, total)
	for pageNum := 1; pageNum <= total; pageNum++ {
		text, err := extractTextWithPdftotext(ctx, filePath, pageNum)
		if err != nil {
			logger.Warnf("Failed to extract text from page %d: %v", pageNum, err)
		}
		pages[pageNum] = text
	}
	return pages, nil
}

// OCRExtractor renders every page with pdftoppm and reads it with tesseract.
type OCRExtractor struct {
	languages string
}

func NewOCRExtractor(languages string) OCRExtractor {
	if languages == "" {
		languages = "spa+eng"
	}
	return OCRExtractor{languages: languages}
}

func (OCRExtractor) Name() string { return "tesseract" }

func (e OCRExtractor) Extract(ctx context.Context, filePath string) (map[int]string, error) {
	total, err := getNumPages(ctx, filePath)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, errEmptyPDF
	}

	tempFolder, err := os.MkdirTemp("", "ocr-"+utils.GetFileNameWithoutExt(filePath)+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempFolder)

	pages := make(map[int]string, total)
	for pageNum := 1; pageNum <= total; pageNum++ {
		text, err := e.extractPage(ctx, filePath, tempFolder, pageNum)
		if err != nil {
			logger.Warnf("OCR failed on page %d: %v", pageNum, err)
		}
		pages[pageNum] = text
	}
	return pages, nil
}

func (e OCRExtractor) extractPage(ctx context.Context, pdfPath, tempFolder string, pageNumber int) (string, error) {
	prefix := filepath.Join(tempFolder, fmt.Sprintf("page-%d", pageNumber))
	convertCmd := exec.CommandContext(ctx, "pdftoppm",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-png", "-singlefile",
		pdfPath, prefix)
	if err := convertCmd.Run(); err != nil {
		return "", fmt.Errorf("error converting page %d to image: %w", pageNumber, err)
	}

	ocrCmd := exec.CommandContext(ctx, "tesseract",
		prefix+".png",
		"stdout",
		"-l", e.languages,
		"--oem", "3", // LSTM engine
		"--psm", "3", // automatic page segmentation
	)
	var ocrOut bytes.Buffer
	ocrCmd.Stdout = &ocrOut
	if err := ocrCmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	return strings.TrimSpace(ocrOut.String()), nil
}

func extractTextWithPdftotext(ctx context.Context, filePath string, pageNumber int) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		filePath, "-")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running pdftotext: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

var pagesPattern = regexp.MustCompile(`Pages:\s+(\d+)`)

// getNumPages uses pdfinfo to get the total number of pages in a PDF file.
func getNumPages(ctx context.Context, pdfPath string) (int, error) {
	cmd := exec.CommandContext(ctx, "pdfinfo", pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %w", err)
	}

	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		if matches := pagesPattern.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}
	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}
