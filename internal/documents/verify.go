package documents

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

const minPDFSize = 100

// VerifyPDF parses data as a PDF and returns its page count. The parser
// panics on some malformed input; that is reported as an error.
func VerifyPDF(data []byte) (pages int, err error) {
	if len(data) < minPDFSize || !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, fmt.Errorf("%w: not a pdf", ErrFileType)
	}

	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = fmt.Errorf("%w: %v", ErrFileType, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileType, err)
	}
	pages = reader.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("%w: no pages", ErrFileType)
	}
	return pages, nil
}
