package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// supportedExtensions lists the loadable source formats.
var supportedExtensions = map[string]bool{
	".txt":  true,
	".html": true,
	".htm":  true,
}

// SupportedFile reports whether a path has a loadable extension.
func SupportedFile(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// LoadFile reads a regulatory document from disk and returns its raw text.
// Plain text files are read as-is; HTML files are stripped down to their
// visible text. Unrecognized extensions return ErrUnsupportedFormat.
func LoadFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", path, err)
	}

	if ext == ".html" || ext == ".htm" {
		text, err := htmlText(string(data))
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", path, err)
		}
		return text, nil
	}
	return string(data), nil
}

// htmlText extracts the visible text of an HTML document, skipping script
// and style subtrees. Block boundaries become newlines so the splitter's
// paragraph separators keep working.
func htmlText(src string) (string, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		case html.TextNode:
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && isBlockElement(n.Data) {
			b.WriteString("\n")
		}
	}
	walk(root)
	return b.String(), nil
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "section", "article":
		return true
	}
	return false
}
