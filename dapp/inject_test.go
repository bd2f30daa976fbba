package dapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldInjectProvider(t *testing.T) {
	html := Document{
		HasDoctype:         true,
		DoctypeName:        "html",
		Pathname:           "/swap",
		HasDocumentElement: true,
		NodeName:           "HTML",
	}

	tests := []struct {
		name   string
		doc    func(Document) Document
		inject bool
	}{
		{"html page", func(d Document) Document { return d }, true},
		{"empty document fails open", func(Document) Document { return Document{} }, true},
		{"no doctype", func(d Document) Document { d.HasDoctype = false; d.DoctypeName = ""; return d }, true},
		{"svg doctype", func(d Document) Document { d.DoctypeName = "svg"; return d }, false},
		{"xml path", func(d Document) Document { d.Pathname = "/feed.xml"; return d }, false},
		{"pdf path", func(d Document) Document { d.Pathname = "/whitepaper.pdf"; return d }, false},
		{"pdf in the middle", func(d Document) Document { d.Pathname = "/docs.pdf/view"; return d }, true},
		{"no document element", func(d Document) Document { d.HasDocumentElement = false; d.NodeName = ""; return d }, true},
		{"svg root", func(d Document) Document { d.NodeName = "svg"; return d }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.inject, ShouldInjectProvider(tt.doc(html)))
		})
	}
}
