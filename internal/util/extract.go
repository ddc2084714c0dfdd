package util

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/fadilmartias/cv-batch-analyzer/internal/logger"
	"github.com/fadilmartias/cv-batch-analyzer/internal/model"
	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

type ExtractorInterface interface {
	Extract(doc model.Document) model.ExtractionOutcome
}

// Extractor turns uploaded documents into plain text. Failures are returned as
// data so a batch can carry on with the next document.
type Extractor struct {
	// OCRFallback runs tesseract over page images when a PDF has no text layer.
	OCRFallback bool
	logger      *zap.Logger
}

func NewExtractor(log *zap.Logger, ocrFallback bool) *Extractor {
	return &Extractor{OCRFallback: ocrFallback, logger: logger.OrNop(log)}
}

func (e *Extractor) Extract(doc model.Document) (outcome model.ExtractionOutcome) {
	format := doc.Format()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("extractor panicked", zap.String("document", doc.Name), zap.Any("panic", r))
			outcome = model.ExtractionFailed(fmt.Sprintf("extraction error: %v", r))
		}
	}()

	var (
		text string
		err  error
	)
	switch format {
	case ".pdf":
		text, err = e.extractPDF(doc.Content)
	case ".docx":
		text, err = ExtractDOCX(doc.Content)
	case ".txt", ".md", ".json":
		text, err = decodeUTF8(doc.Content)
	default:
		return model.ExtractionFailed("unsupported format: " + format)
	}
	if err != nil {
		e.logger.Debug("extraction failed", zap.String("document", doc.Name), zap.Error(err))
		return model.ExtractionFailed("extraction error: " + err.Error())
	}

	e.logger.Debug("document extracted",
		zap.String("document", doc.Name),
		zap.String("format", format),
		zap.Int("length", utf8.RuneCountInString(text)),
	)
	return model.Extracted(text)
}

func decodeUTF8(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", errors.New("content is not valid UTF-8")
	}
	return string(content), nil
}

// extractPDF concatenates page text in page order with no separator, so a word
// split across a page break may merge with the next page's first word.
func (e *Extractor) extractPDF(content []byte) (string, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return "", errors.New("PDF has no pages")
	}

	var fullText strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", n+1, err)
		}
		fullText.WriteString(pageText)
	}

	text := fullText.String()
	if strings.TrimSpace(text) == "" && e.OCRFallback {
		e.logger.Info("pdf has no text layer, falling back to OCR", zap.Int("pages", doc.NumPage()))
		return e.ocrPDF(doc)
	}
	return text, nil
}

func (e *Extractor) ocrPDF(doc *fitz.Document) (string, error) {
	if err := checkTesseract(); err != nil {
		return "", fmt.Errorf("tesseract check failed: %w", err)
	}

	var fullText bytes.Buffer
	var lastErr error

	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to extract image: %w", n+1, err)
			e.logger.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}

		pageText, err := ocrImage(img)
		if err != nil {
			lastErr = fmt.Errorf("page %d: %w", n+1, err)
			e.logger.Warn("ocr page skipped", zap.Error(lastErr))
			continue
		}
		fullText.WriteString(pageText)
	}

	result := fullText.String()
	if strings.TrimSpace(result) == "" {
		if lastErr != nil {
			return "", fmt.Errorf("failed to extract text via OCR: %w", lastErr)
		}
		return "", errors.New("no text extracted from PDF (PDF might be empty or images are unreadable)")
	}
	return result, nil
}

func ocrImage(img image.Image) (string, error) {
	tmpFile, err := os.CreateTemp("", "page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, img); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to write PNG: %w", err)
	}

	out, err := exec.Command("tesseract", tmpPath, "stdout", "-l", "eng").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tesseract error: %w, output: %s", err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

// checkTesseract verifies tesseract is installed and runnable.
func checkTesseract() error {
	out, err := exec.Command("tesseract", "-v").CombinedOutput()
	if err != nil {
		return fmt.Errorf("tesseract not found or not executable: %w\nOutput: %s", err, string(out))
	}
	return nil
}
