// Package pdftext turns raw PDF bytes into plain text. Extraction is
// best-effort: malformed input and per-page failures reduce to less text,
// never to a panic or an error surfaced to the pipeline.
package pdftext

import (
	"bytes"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// scannedThreshold is the chars-per-page floor below which a document is
// assumed to be a scanned image without a text layer.
const scannedThreshold = 50

// Result holds extracted text plus enough metadata for diagnostics.
type Result struct {
	Text          string
	Pages         int
	ScannedLikely bool
}

// Analyze extracts per-page text from PDF bytes, joining pages with a blank
// line in page order. Pages whose extraction fails are skipped. Unreadable
// input yields an empty Result; the pdf library can panic on garbage bytes,
// so the whole walk runs under recover.
func Analyze(data []byte) (result *Result) {
	result = &Result{ScannedLikely: true}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("pdftext: recovered from panic during extraction: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Printf("pdftext: open reader: %v", err)
		return result
	}

	result.Pages = reader.NumPage()
	var pages []string
	for i := 1; i <= result.Pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("pdftext: page %d extraction failed: %v", i, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	result.Text = strings.Join(pages, "\n\n")
	result.ScannedLikely = isLikelyScanned(result.Text, result.Pages)
	return result
}

// Extract is the plain-text entry point used by the pipeline.
func Extract(data []byte) string {
	return Analyze(data).Text
}

func isLikelyScanned(text string, pages int) bool {
	if pages <= 0 {
		pages = 1
	}
	return len(text)/pages < scannedThreshold
}
