package logo

import (
	"bytes"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// filetype does not know about SVG since it is text, register our own
// matcher so sniffing stays in one place.
var svgType = filetype.NewType("svg", "image/svg+xml")

// sniffLen limits how far into document we look for root element.
const sniffLen = 4096

func init() {
	filetype.AddMatcher(svgType, isSVG)
}

func isSVG(buf []byte) bool {
	head := buf[:min(len(buf), sniffLen)]
	head = bytes.TrimPrefix(head, []byte("\xEF\xBB\xBF"))
	head = bytes.TrimLeft(head, " \t\r\n")
	if len(head) == 0 || head[0] != '<' {
		return false
	}
	return bytes.Contains(head, []byte("<svg"))
}

func sniff(data []byte) (types.Type, error) {
	return filetype.Match(data)
}
