package embedded

import (
	"embed"
	"io/fs"
)

// SystemPromptTxt is the instruction template for text expansion
//
//go:embed data/system_prompt.txt
var SystemPromptTxt []byte

//go:embed static
var staticFiles embed.FS

// StaticFS returns the browser assets rooted at the static directory
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// the directory is embedded at build time
		panic(err)
	}
	return sub
}
