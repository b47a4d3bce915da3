package plan

import (
	"path/filepath"
	"strings"

	"convertsave/internal/tools"
)

// buildSoffice plans a LibreOffice headless conversion. soffice picks its
// own output file name ({input-stem}.{ext} in the output directory), so the
// plan carries a post-step that moves that file onto the allocated output
// path.
func buildSoffice(binary, input, output, extra string) Plan {
	outDir := filepath.Dir(output)
	outExt := extOf(output)

	args := []string{"--headless", "--convert-to", outExt, "--outdir", outDir, input}
	args = append(args, tokenize(extra)...)

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	produced := filepath.Join(outDir, stem+"."+outExt)

	p := Plan{
		Tool:    tools.LibreOffice,
		Input:   input,
		Output:  output,
		Command: &Step{Binary: binary, Args: args},
	}
	if produced != output {
		p.PostRename = produced
	}
	return p
}
