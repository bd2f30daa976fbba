package dapp

import "strings"

// Document is the part of a page's DOM consulted before injecting the
// provider. The Has* flags mark properties the page actually exposes.
type Document struct {
	HasDoctype  bool
	DoctypeName string

	Pathname string

	HasDocumentElement bool
	NodeName           string
}

var blockedSuffixes = []string{".xml", ".pdf"}

// ShouldInjectProvider injects everywhere except known non-HTML content.
// Missing document properties count as HTML.
func ShouldInjectProvider(doc Document) bool {
	return doctypeCheck(doc) && suffixCheck(doc) && documentElementCheck(doc)
}

func doctypeCheck(doc Document) bool {
	if !doc.HasDoctype {
		return true
	}
	return doc.DoctypeName == "html"
}

func suffixCheck(doc Document) bool {
	for _, suffix := range blockedSuffixes {
		if strings.HasSuffix(doc.Pathname, suffix) {
			return false
		}
	}
	return true
}

func documentElementCheck(doc Document) bool {
	if !doc.HasDocumentElement {
		return true
	}
	return strings.ToLower(doc.NodeName) == "html"
}
