package outline

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// languageSpec ties a tree-sitter grammar to the node kinds that mark
// function and class definitions in that grammar.
type languageSpec struct {
	name       string
	language   *sitter.Language
	funcKinds  map[string]bool
	classKinds map[string]bool
}

var (
	registryOnce sync.Once
	registry     map[string]*languageSpec
)

// ensureRegistry builds the extension to grammar table exactly once.
// Grammars are process-wide and read-only after initialization; concurrent
// first use is guarded by the sync.Once.
func ensureRegistry() {
	registryOnce.Do(func() {
		pythonSpec := &languageSpec{
			name:       "python",
			language:   python.GetLanguage(),
			funcKinds:  map[string]bool{"function_definition": true},
			classKinds: map[string]bool{"class_definition": true},
		}
		goSpec := &languageSpec{
			name:     "go",
			language: golang.GetLanguage(),
			funcKinds: map[string]bool{
				"function_declaration": true,
				"method_declaration":   true,
			},
			classKinds: map[string]bool{"type_spec": true},
		}
		javaSpec := &languageSpec{
			name:     "java",
			language: java.GetLanguage(),
			funcKinds: map[string]bool{
				"method_declaration":      true,
				"constructor_declaration": true,
			},
			classKinds: map[string]bool{
				"class_declaration":     true,
				"interface_declaration": true,
			},
		}
		jsSpec := &languageSpec{
			name:     "javascript",
			language: javascript.GetLanguage(),
			funcKinds: map[string]bool{
				"function_declaration": true,
				"method_definition":    true,
			},
			classKinds: map[string]bool{"class_declaration": true},
		}
		cppSpec := &languageSpec{
			name:       "cpp",
			language:   cpp.GetLanguage(),
			funcKinds:  map[string]bool{"function_definition": true},
			classKinds: map[string]bool{"class_specifier": true},
		}

		registry = map[string]*languageSpec{
			".py":   pythonSpec,
			".go":   goSpec,
			".java": javaSpec,
			".js":   jsSpec,
			".ts":   jsSpec,
			".cpp":  cppSpec,
			".cc":   cppSpec,
			".cxx":  cppSpec,
			".c":    cppSpec,
			".h":    cppSpec,
			".hpp":  cppSpec,
		}
	})
}

// specForExt returns the grammar spec for a file extension, or nil when the
// language has no structural support.
func specForExt(ext string) *languageSpec {
	ensureRegistry()
	return registry[strings.ToLower(ext)]
}

// Supported reports whether a file path has a grammar for structural
// outlines. Unsupported files are still eligible for chunking; they just
// get an empty outline.
func Supported(path string) bool {
	return specForExt(filepath.Ext(path)) != nil
}
