package pdfext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page gap above which two text rows are treated as separate blocks.
const blockGap = 20

// PageText holds the paragraph-level text blocks of one PDF page.
type PageText struct {
	Page   int
	Blocks []string
}

// Result is the extractor output consumed by the ingestion pipeline.
type Result struct {
	PageCount int
	WordCount int
	Pages     []PageText
}

// IsPDF sniffs the %PDF- magic bytes.
func IsPDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// Extract parses raw PDF bytes into per-page text blocks. Rows are grouped
// into blocks by vertical proximity; pages without extractable text yield an
// empty block list rather than an error.
func Extract(data []byte) (*Result, error) {
	if !IsPDF(data) {
		return nil, fmt.Errorf("missing %%PDF header")
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}

	res := &Result{PageCount: r.NumPage()}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			res.Pages = append(res.Pages, PageText{Page: i - 1})
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			// Unparseable page, not a fatal document error.
			res.Pages = append(res.Pages, PageText{Page: i - 1})
			continue
		}

		var blocks []string
		var current []string
		var prevPos int64
		for idx, row := range rows {
			var sb strings.Builder
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			line := strings.TrimSpace(sb.String())
			if line != "" {
				res.WordCount += len(strings.Fields(line))
			}

			if idx > 0 && prevPos-row.Position > blockGap && len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = current[:0]
			}
			current = append(current, line)
			prevPos = row.Position
		}
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
		}

		res.Pages = append(res.Pages, PageText{Page: i - 1, Blocks: blocks})
	}

	return res, nil
}
