package services

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"docsearch/models"
)

// ExtractText normalizes an uploaded file into a single plain-text string.
// Dispatch happens on the declared type only; content is never sniffed.
// A document of an unknown type fails with ErrUnsupportedFormat before any
// parsing is attempted.
func ExtractText(data []byte, docType models.DocumentType) (string, error) {
	switch docType {
	case models.DocumentTypeTXT:
		return extractPlainText(data)
	case models.DocumentTypeJSON:
		return extractJSON(data)
	case models.DocumentTypePDF:
		return extractPDF(data)
	case models.DocumentTypeDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, docType)
	}
}

// extractPlainText passes text through as-is after validating it decodes
// as UTF-8.
func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: file is not valid UTF-8", ErrInvalidEncoding)
	}
	return string(data), nil
}

// extractJSON parse-validates the body and re-emits it in canonical form, so
// downstream chunking always sees a normalized serialization rather than the
// uploader's byte layout. Numbers are decoded as json.Number: a float64
// round-trip would silently alter integers beyond 2^53.
func extractJSON(data []byte) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: invalid JSON: %v", ErrMalformedInput, err)
	}
	if decoder.More() {
		return "", fmt.Errorf("%w: trailing data after JSON value", ErrMalformedInput)
	}

	canonical, err := json.Marshal(parsed)
	if err != nil {
		return "", fmt.Errorf("%w: re-serialize JSON: %v", ErrMalformedInput, err)
	}
	return string(canonical), nil
}

// extractPDF extracts the text of each page with UniPDF and joins pages with
// a newline, in page order.
func extractPDF(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", ErrExtraction, err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("%w: read pdf page count: %v", ErrExtraction, err)
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("%w: read pdf page %d: %v", ErrExtraction, i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("%w: pdf extractor page %d: %v", ErrExtraction, i, err)
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("%w: extract pdf page %d: %v", ErrExtraction, i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// docxDocument mirrors the parts of word/document.xml we care about.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Text []struct {
			Content string `xml:",chardata"`
		} `xml:"t"`
	} `xml:"r"`
}

// extractDOCX opens the file as a ZIP archive and pulls paragraph text out of
// word/document.xml, joining paragraphs with a single space in document order.
func extractDOCX(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open docx archive: %v", ErrExtraction, err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open word/document.xml: %v", ErrExtraction, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: read word/document.xml: %v", ErrExtraction, err)
		}

		var doc docxDocument
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", fmt.Errorf("%w: parse word/document.xml: %v", ErrExtraction, err)
		}

		paragraphs := make([]string, 0, len(doc.Body.Paragraphs))
		for _, para := range doc.Body.Paragraphs {
			var sb strings.Builder
			for _, run := range para.Runs {
				for _, text := range run.Text {
					sb.WriteString(text.Content)
				}
			}
			paragraphs = append(paragraphs, sb.String())
		}
		return strings.Join(paragraphs, " "), nil
	}

	return "", fmt.Errorf("%w: docx archive has no word/document.xml", ErrExtraction)
}
