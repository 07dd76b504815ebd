package docs

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parameter struct {
	Name string `json:"name"`
	In   string `json:"in"`
}

type operation struct {
	Parameters []parameter `json:"parameters"`
}

type document struct {
	Paths       map[string]map[string]operation `json:"paths"`
	Definitions map[string]json.RawMessage      `json:"definitions"`
}

func readDoc(t *testing.T) document {
	t.Helper()
	var doc document
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))
	return doc
}

func TestDocDeclaresPathParameters(t *testing.T) {
	doc := readDoc(t)
	placeholder := regexp.MustCompile(`\{(\w+)\}`)

	for path, ops := range doc.Paths {
		for method, op := range ops {
			for _, m := range placeholder.FindAllStringSubmatch(path, -1) {
				found := false
				for _, p := range op.Parameters {
					if p.In == "path" && p.Name == m[1] {
						found = true
					}
				}
				assert.True(t, found, "%s %s does not declare path parameter %s", method, path, m[1])
			}
		}
	}
}

func TestDocDeclaresRequestBodies(t *testing.T) {
	doc := readDoc(t)

	for _, route := range []struct{ path, method string }{
		{"/auth/register", "post"},
		{"/auth/login", "post"},
		{"/auth/accept-invitation/{token}", "post"},
		{"/tasks", "post"},
		{"/tasks/{id}", "patch"},
		{"/documents", "post"},
		{"/payments/confirm-payment", "post"},
		{"/payments/webhook", "post"},
	} {
		op, ok := doc.Paths[route.path][route.method]
		require.True(t, ok, "missing %s %s", route.method, route.path)

		hasBody := false
		for _, p := range op.Parameters {
			if p.In == "body" {
				hasBody = true
			}
		}
		assert.True(t, hasBody, "%s %s has no request body", route.method, route.path)
	}

	for _, def := range []string{"dto.RegisterRequest", "dto.AcceptInvitationRequest", "dto.ErrorResponse", "models.Task"} {
		assert.Contains(t, doc.Definitions, def)
	}
}
