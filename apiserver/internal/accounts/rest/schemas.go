package rest

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemas embed.FS

// mustLoadSchema returns a loader for one of the embedded request body
// schemas. It panics if the schema is missing, which can only happen if the
// binary was built incorrectly.
func mustLoadSchema(name string) gojsonschema.JSONLoader {
	schemaBytes, err := schemas.ReadFile(fmt.Sprintf("schemas/%s.json", name))
	if err != nil {
		panic(err)
	}
	return gojsonschema.NewBytesLoader(schemaBytes)
}
