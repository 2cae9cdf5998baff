package httpapi

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type openAPIDoc struct {
	Paths map[string]map[string]yaml.Node `yaml:"paths"`
}

var pathParam = regexp.MustCompile(`\{[^}]+\}`)

func loadOpenAPI(t *testing.T) openAPIDoc {
	t.Helper()

	var doc openAPIDoc
	if err := yaml.Unmarshal(openAPISpec, &doc); err != nil {
		t.Fatalf("parse embedded openapi: %v", err)
	}
	if len(doc.Paths) == 0 {
		t.Fatalf("openapi document has no paths")
	}
	return doc
}

func TestOpenAPIOperationsAreRouted(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	handler := &Handler{}
	registerSystemRoutes(mux, handler, true)
	registerFootballRoutes(mux, handler)
	registerPredictionRoutes(mux, handler)
	registerToolRoutes(mux, handler)
	registerWorkflowRoutes(mux, handler)
	registerInternalRoutes(mux, handler, testJobToken)

	for path, ops := range loadOpenAPI(t).Paths {
		for method := range ops {
			method = strings.ToUpper(method)
			if method != http.MethodGet && method != http.MethodPost {
				continue
			}
			req := httptest.NewRequest(method, pathParam.ReplaceAllString(path, "x1"), nil)
			if _, pattern := mux.Handler(req); pattern == "" {
				t.Fatalf("%s %s is documented but not routed", method, path)
			}
		}
	}
}

func TestOpenAPIDocumentsCoreRoutes(t *testing.T) {
	t.Parallel()

	doc := loadOpenAPI(t)
	for _, path := range []string{
		"/v1/football/competitions/sync/{code}",
		"/v1/predictions/workflow/match/{matchID}",
		"/v1/predictions/tools/teams/similar",
		"/v1/workflows/events/{workflowID}/stream",
		"/v1/internal/messages/{topic}",
	} {
		if _, ok := doc.Paths[path]; !ok {
			t.Fatalf("openapi is missing %s", path)
		}
	}
}
