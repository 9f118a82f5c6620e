package annotate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/davidbridgwood/RepoGPT/pkg/types"
)

// Annotate composes the final chunk text: a file-location header, the
// symbol-context sentence when one exists, and the original body fenced as
// code. The transformation is purely textual and idempotent; location
// metadata rides along unchanged for downstream consumers.
func Annotate(chunk types.ResolvedChunk, dirPath, fileName, context string) types.AnnotatedChunk {
	location := filepath.Join(dirPath, fileName)

	var b strings.Builder
	fmt.Fprintf(&b,
		"The following code snippet is from a file at location %s starting at line %d and ending at line %d. ",
		location, chunk.StartLine, chunk.EndLine)
	if context != "" {
		b.WriteString(context)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b,
		"The code snippet starting at line %d and ending at line %d is \n```\n%s\n``` ",
		chunk.StartLine, chunk.EndLine, chunk.Text)

	annotated := types.AnnotatedChunk{
		Text:      b.String(),
		DirPath:   dirPath,
		FileName:  fileName,
		StartLine: chunk.StartLine,
		EndLine:   chunk.EndLine,
		ByteStart: chunk.ByteStart,
	}
	annotated.ComputeContentHash()
	return annotated
}
