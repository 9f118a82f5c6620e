package outline

import (
	"context"
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/davidbridgwood/RepoGPT/pkg/types"
)

// Builder produces a structural outline for one file's source text.
type Builder interface {
	Outline(ctx context.Context, src []byte) (*types.FileOutline, error)
}

// ForFile returns the builder for a file path. Files without a grammar get
// a no-op builder that yields an empty outline.
func ForFile(path string) Builder {
	spec := specForExt(filepath.Ext(path))
	if spec == nil {
		return noopBuilder{}
	}
	return &treeBuilder{spec: spec}
}

// noopBuilder is the variant for unrecognized extensions.
type noopBuilder struct{}

func (noopBuilder) Outline(_ context.Context, _ []byte) (*types.FileOutline, error) {
	return &types.FileOutline{
		Methods: []types.SymbolSpan{},
		Classes: []types.SymbolSpan{},
	}, nil
}

// treeBuilder builds outlines from a tree-sitter syntax tree.
type treeBuilder struct {
	spec *languageSpec
}

// Outline parses src and collects every function and class span in the
// tree, depth-first from the root. Definitions may nest; all are captured.
// The input tree and text are never mutated.
func (b *treeBuilder) Outline(ctx context.Context, src []byte) (*types.FileOutline, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(b.spec.language)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", b.spec.name, err)
	}
	defer tree.Close()

	out := &types.FileOutline{
		Methods: []types.SymbolSpan{},
		Classes: []types.SymbolSpan{},
	}
	b.walk(tree.RootNode(), src, out)
	out.Sort()
	return out, nil
}

func (b *treeBuilder) walk(node *sitter.Node, src []byte, out *types.FileOutline) {
	kind := node.Type()
	if b.spec.funcKinds[kind] {
		if name := definitionName(node, src); name != "" {
			out.Methods = append(out.Methods, spanOf(node, name))
		}
	}
	if b.spec.classKinds[kind] {
		if name := definitionName(node, src); name != "" {
			out.Classes = append(out.Classes, spanOf(node, name))
		}
	}

	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		b.walk(node.Child(i), src, out)
	}
}

func spanOf(node *sitter.Node, name string) types.SymbolSpan {
	return types.SymbolSpan{
		Name:      name,
		StartLine: int(node.StartPoint().Row),
		EndLine:   int(node.EndPoint().Row),
	}
}

// definitionName extracts the identifier of a definition node. Most
// grammars expose it through the "name" field; C++ function definitions
// bury it inside a declarator chain.
func definitionName(node *sitter.Node, src []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Content(src)
	}
	if d := node.ChildByFieldName("declarator"); d != nil {
		return declaratorName(d, src)
	}
	return ""
}

func declaratorName(node *sitter.Node, src []byte) string {
	for node != nil {
		switch node.Type() {
		case "identifier", "field_identifier", "qualified_identifier",
			"destructor_name", "operator_name":
			return node.Content(src)
		}
		if d := node.ChildByFieldName("declarator"); d != nil {
			node = d
			continue
		}
		node = node.NamedChild(0)
	}
	return ""
}
