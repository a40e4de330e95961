package handler

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"
	"testing"

	"mapcandy-api/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routeAnnotation = regexp.MustCompile(`// @Router\s+(\S+)\s+\[(\w+)\]`)

// Every annotated route must be present in the generated swagger doc and
// every documented path must come from an annotation.
func TestPinHandler_SwaggerAnnotations(t *testing.T) {
	src, err := os.ReadFile("pin.go")
	require.NoError(t, err)

	annotated := make(map[string]bool)
	for _, m := range routeAnnotation.FindAllStringSubmatch(string(src), -1) {
		annotated[m[1]+" "+strings.ToLower(m[2])] = true
	}
	require.Len(t, annotated, 4)

	var doc struct {
		Paths map[string]map[string]struct {
			Summary string `json:"summary"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	documented := make(map[string]bool)
	for path, ops := range doc.Paths {
		for method, op := range ops {
			documented[path+" "+method] = true
			assert.NotEmpty(t, op.Summary, "%s %s", method, path)
		}
	}

	assert.Equal(t, annotated, documented)
}
