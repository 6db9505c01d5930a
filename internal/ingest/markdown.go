package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	"github.com/virtualta/virtualta/pkg/types"
)

// LoadMarkdownDir reads every .md file in dir and returns one document
// per file, tagged as course content. File order is deterministic
// (sorted by name) so repeated ingestion runs produce identical
// corpora. A missing directory yields no documents rather than an
// error; the discourse export may be the only source present.
func LoadMarkdownDir(dir string) ([]types.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read markdown directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]types.Document, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		text, err := MarkdownToText(raw)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", name, err)
		}
		docs = append(docs, types.Document{
			Text:   text,
			Source: "Course: " + strings.TrimSuffix(name, ".md"),
			Type:   types.SourceCourseContent,
		})
	}
	return docs, nil
}

// MarkdownToText renders markdown to HTML and strips the markup,
// leaving the readable text. Code fences survive as their literal
// content.
func MarkdownToText(src []byte) (string, error) {
	var htmlBuf bytes.Buffer
	if err := goldmark.Convert(src, &htmlBuf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	root, err := html.Parse(&htmlBuf)
	if err != nil {
		return "", fmt.Errorf("parse rendered html: %w", err)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return strings.Join(parts, "\n"), nil
}
