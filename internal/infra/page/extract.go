// Package page reads the payloads a rendered dashboard page embeds as
// <script id="…-data"> elements, and builds the same payloads from a ledger.
package page

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"

	"golang.org/x/net/html"
)

var knownDatasets = append([]domain.DatasetName{domain.DatasetTransactions}, domain.AggregateDatasets...)

// Extract parses an HTML document and returns the dataset payloads found in
// it. Elements whose id is not a known dataset are ignored; an element that is
// present but blank is reported absent.
func Extract(r io.Reader, source string) (*domain.PagePayload, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page %s: %w", source, err)
	}

	byID := make(map[string]domain.DatasetName, len(knownDatasets))
	for _, name := range knownDatasets {
		byID[name.ElementID()] = name
	}

	payload := &domain.PagePayload{Source: source, Datasets: map[domain.DatasetName][]byte{}}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if name, ok := byID[attr(n, "id")]; ok {
				if body := bytes.TrimSpace([]byte(text(n))); len(body) > 0 {
					if _, dup := payload.Datasets[name]; !dup {
						payload.Datasets[name] = body
					}
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return payload, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// text concatenates the text children of n. Script content is raw text, so
// no entity decoding happens here.
func text(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
