package format

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Suggestion is one entry in the "convert to" list shown for an input file.
type Suggestion struct {
	Format      string `json:"format"`
	Tool        string `json:"tool"`
	DisplayName string `json:"displayName"`
	Color       string `json:"color"`
}

var titleCaser = cases.Title(language.English)

// displayNames overrides the default upper-cased extension label.
var displayNames = map[string]string{
	"jpg":  "JPEG",
	"jpeg": "JPEG",
	"jp2":  "JPEG 2000",
	"j2k":  "JPEG 2000 codestream",
	"jxl":  "JPEG XL",
	"heic": "HEIC",
	"heif": "HEIF",
	"avif": "AVIF",
	"tif":  "TIFF",
	"svgz": "Compressed SVG",
	"pdf":  "PDF document",
	"md":   "Markdown",
	"mp3":  "MP3 audio",
	"mp4":  "MP4 video",
	"docx": "Word document",
	"odt":  "OpenDocument text",
	"xlsx": "Excel workbook",
	"ods":  "OpenDocument spreadsheet",
	"pptx": "PowerPoint presentation",
	"odp":  "OpenDocument presentation",
	"epub": "EPUB e-book",
	"html": "HTML page",
	"txt":  "Plain text",
	"csv":  "CSV",
	"rtf":  "Rich text",
}

// classColors keys the suggestion accent color off the output family.
var classColors = map[Class]string{
	ClassVideo:    "#7c3aed",
	ClassAudio:    "#0ea5e9",
	ClassImage:    "#16a34a",
	ClassDocument: "#f59e0b",
	ClassOffice:   "#dc2626",
}

// DisplayName returns the label shown for a format in the UI.
func DisplayName(ext string) string {
	ext = Normalize(ext)
	if name, ok := displayNames[ext]; ok {
		return name
	}
	if len(ext) <= 4 {
		return strings.ToUpper(ext)
	}
	return titleCaser.String(ext)
}

// router is satisfied by the routing package; declared here so the registry
// does not depend on routing policy.
type router func(inExt, outExt string) (string, bool)

// Suggestions enumerates every output format reachable from inExt, using
// route to determine the responsible tool. Entries come back sorted by
// format name.
func Suggestions(inExt string, route router) []Suggestion {
	inExt = Normalize(inExt)
	if inExt == "" {
		return nil
	}

	candidates := union(
		avOutputs, rasterEngineOutputs, ffmpegImageOutputs,
		documentOutputs, officeOutputs,
		set("jpg", "jpeg"),
	)

	out := make([]Suggestion, 0, len(candidates))
	for ext := range candidates {
		if ext == inExt {
			continue
		}
		tool, ok := route(inExt, ext)
		if !ok {
			continue
		}
		color := classColors[ClassOf(ext)]
		if color == "" {
			color = classColors[ClassImage]
		}
		out = append(out, Suggestion{
			Format:      ext,
			Tool:        tool,
			DisplayName: DisplayName(ext),
			Color:       color,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Format < out[j].Format })
	return out
}

func sorted(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for e := range m {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
