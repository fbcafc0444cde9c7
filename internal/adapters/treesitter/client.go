// Package treesitter implements ports.ParserClient in-process using
// tree-sitter grammars. It is the fallback when no remote parse service is
// configured: slower per language than uastd but requires nothing running.
//
// Only the grammars on the dispatch allow-list are compiled in (Python,
// Java, via CGo).
package treesitter

import (
	"context"
	"os"
	"strings"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/corey/repolex/internal/ports"
)

// identifierKinds are the node kinds whose text is collected as an
// identifier, across both grammars.
var identifierKinds = map[string]bool{
	"identifier":      true,
	"type_identifier": true,
}

// Client parses files locally. Each pipeline worker owns one Client; a fresh
// tree-sitter parser is created per call, so a Client carries only the
// grammar table.
type Client struct {
	languages map[string]*tree_sitter.Language
}

// NewClient creates a client with the compiled-in grammars registered.
func NewClient() *Client {
	return &Client{
		languages: map[string]*tree_sitter.Language{
			"python": langPtr(ts_python.Language()),
			"java":   langPtr(ts_java.Language()),
		},
	}
}

// Factory returns a ports.ClientFactory producing independent Clients.
func Factory() ports.ClientFactory {
	return func() (ports.ParserClient, error) {
		return NewClient(), nil
	}
}

// langPtr wraps a grammar binding's raw Language() pointer.
func langPtr(p unsafe.Pointer) *tree_sitter.Language {
	return tree_sitter.NewLanguage(p)
}

// Parse reads and parses path with the grammar for language (a classifier
// language name, e.g. "Python"). Returns ports.ErrNoResult for languages
// without a compiled-in grammar.
func (c *Client) Parse(ctx context.Context, path, language string) (*ports.UAST, error) {
	lang, ok := c.languages[strings.ToLower(language)]
	if !ok {
		return nil, ports.ErrNoResult
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(source) == 0 {
		return nil, ports.ErrNoResult
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, err
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, ports.ErrNoResult
	}
	defer tree.Close()

	uast := &ports.UAST{Path: path, Language: language}
	collect(tree.RootNode(), source, uast)
	return uast, nil
}

// Close is a no-op; per-call parsers are already released.
func (c *Client) Close() error { return nil }

// collect walks the whole tree counting nodes and gathering identifier text.
func collect(n *tree_sitter.Node, source []byte, uast *ports.UAST) {
	uast.NodeCount++
	if identifierKinds[n.Kind()] {
		uast.Identifiers = append(uast.Identifiers, string(source[n.StartByte():n.EndByte()]))
	}
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		collect(n.Child(i), source, uast)
	}
}
