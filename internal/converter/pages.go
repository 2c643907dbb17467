package converter

import (
	"bytes"
	"regexp"

	"github.com/ledongthuc/pdf"
)

// pageMarker matches page objects but not the /Pages tree nodes.
var pageMarker = regexp.MustCompile(`/Type\s*/Page\b`)

// CountPages estimates the page count of a rendered PDF. Page objects are
// matched structurally in the raw bytes. When they are hidden in compressed
// object streams the PDF is parsed instead. At least 1 is returned.
func CountPages(data []byte) int {
	if n := len(pageMarker.FindAllIndex(data, -1)); n > 0 {
		return n
	}
	if n := parsedPageCount(data); n > 0 {
		return n
	}
	return 1
}

func parsedPageCount(data []byte) (n int) {
	defer func() {
		// the parser panics on some malformed trailers
		if recover() != nil {
			n = 0
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}

// looksLikePDF checks the file header.
func looksLikePDF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("%PDF-"))
}
