package splitter

import "strings"

// Language identifies a separator profile for splitting.
type Language string

const (
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangJava       Language = "java"
	LangJS         Language = "js"
	LangCpp        Language = "cpp"
	LangPHP        Language = "php"
	LangProto      Language = "proto"
	LangRST        Language = "rst"
	LangRuby       Language = "ruby"
	LangScala      Language = "scala"
	LangSwift      Language = "swift"
	LangMarkdown   Language = "markdown"
	LangLatex      Language = "latex"
	LangHTML       Language = "html"
	LangPlainText  Language = "text"
)

// extToLanguage is the fixed extension table deciding which files are
// eligible for chunking and which separator profile they get.
var extToLanguage = map[string]Language{
	".py":    LangPython,
	".cpp":   LangCpp,
	".cc":    LangCpp,
	".cxx":   LangCpp,
	".c":     LangCpp,
	".h":     LangCpp,
	".hpp":   LangCpp,
	".java":  LangJava,
	".go":    LangGo,
	".js":    LangJS,
	".ts":    LangJS,
	".php":   LangPHP,
	".proto": LangProto,
	".rs":    LangRST,
	".rb":    LangRuby,
	".scala": LangScala,
	".swift": LangSwift,
	".md":    LangMarkdown,
	".tex":   LangLatex,
	".html":  LangHTML,
}

// LanguageForExt resolves a file extension (with leading dot, any case) to
// its splitting language. The second return is false for extensions that
// must be filtered out before splitting.
func LanguageForExt(ext string) (Language, bool) {
	lang, ok := extToLanguage[strings.ToLower(ext)]
	return lang, ok
}

// SupportedExt reports whether files with this extension are chunked at all.
func SupportedExt(ext string) bool {
	_, ok := LanguageForExt(ext)
	return ok
}

// separatorsFor returns the boundary stack for a language, most semantic
// first. The trailing "" means "hard split anywhere" and must always be
// last.
func separatorsFor(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"\nclass ", "\ndef ", "\n\tdef ", "\n\n", "\n", " ", ""}
	case LangGo:
		return []string{
			"\nfunc ", "\nvar ", "\nconst ", "\ntype ",
			"\nif ", "\nfor ", "\nswitch ", "\ncase ",
			"\n\n", "\n", " ", "",
		}
	case LangJava, LangScala:
		return []string{
			"\nclass ", "\npublic ", "\nprotected ", "\nprivate ", "\nstatic ",
			"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
			"\n\n", "\n", " ", "",
		}
	case LangJS:
		return []string{
			"\nfunction ", "\nconst ", "\nlet ", "\nvar ", "\nclass ",
			"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ", "\ndefault ",
			"\n\n", "\n", " ", "",
		}
	case LangCpp:
		return []string{
			"\nclass ", "\nvoid ", "\nint ", "\nfloat ", "\ndouble ",
			"\nif ", "\nfor ", "\nwhile ", "\nswitch ", "\ncase ",
			"\n\n", "\n", " ", "",
		}
	case LangPHP:
		return []string{
			"\nfunction ", "\nclass ", "\nif ", "\nforeach ", "\nwhile ",
			"\ndo ", "\nswitch ", "\ncase ",
			"\n\n", "\n", " ", "",
		}
	case LangProto:
		return []string{
			"\nmessage ", "\nservice ", "\nenum ", "\noption ", "\nimport ",
			"\nsyntax ", "\n\n", "\n", " ", "",
		}
	case LangRuby:
		return []string{
			"\ndef ", "\nclass ", "\nif ", "\nunless ", "\nwhile ", "\nfor ",
			"\ndo ", "\nbegin ", "\nrescue ",
			"\n\n", "\n", " ", "",
		}
	case LangSwift:
		return []string{
			"\nfunc ", "\nclass ", "\nstruct ", "\nenum ",
			"\nif ", "\nfor ", "\nwhile ", "\ndo ", "\nswitch ", "\ncase ",
			"\n\n", "\n", " ", "",
		}
	case LangRST:
		return []string{"\n=+\n", "\n-+\n", "\n\\*+\n", "\n\n", "\n", " ", ""}
	case LangMarkdown:
		return []string{
			"\n## ", "\n### ", "\n#### ", "\n##### ", "\n###### ",
			"```\n\n", "\n\n***\n\n", "\n\n---\n\n", "\n\n___\n\n",
			"\n\n", "\n", " ", "",
		}
	case LangLatex:
		return []string{
			"\\chapter{", "\\section{", "\\subsection{", "\\subsubsection{",
			"\\begin{enumerate}", "\\begin{itemize}", "\\begin{description}",
			"\n\n", "\n", " ", "",
		}
	case LangHTML:
		return []string{
			"<body>", "<div>", "<p>", "<br>", "<li>",
			"<h1>", "<h2>", "<h3>", "<h4>", "<h5>", "<h6>",
			"<table>", "<tr>", "<td>", "<section>",
			"\n\n", "\n", " ", "",
		}
	default:
		return []string{"\n\n", "\n", " ", ""}
	}
}
