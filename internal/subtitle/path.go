package subtitle

import (
	"path/filepath"
	"strings"
)

// DefaultLangSuffix names translated files when no target language is known.
const DefaultLangSuffix = "translated"

// OutputPath builds the path of the translated subtitles for src:
// <dir>/<name without its last extension>.<lang>.srt. dir defaults to the
// directory of src.
func OutputPath(src, lang, dir string) string {
	if lang == "" {
		lang = DefaultLangSuffix
	}
	if dir == "" {
		dir = filepath.Dir(src)
	}
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"."+lang+".srt")
}

// SourceTextPath is where the extracted text of src is written for a
// person to copy into a translator.
func SourceTextPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".source.txt"
}
