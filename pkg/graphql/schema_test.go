package graphql

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetingKey struct{}

func testSchema(t *testing.T) graphql.Schema {
	t.Helper()
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"greeting": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "world"},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					prefix, _ := p.Context.Value(greetingKey{}).(string)
					if prefix == "" {
						prefix = "hello"
					}
					return prefix + " " + p.Args["name"].(string), nil
				},
			},
			"broken": &graphql.Field{
				Type: graphql.String,
				Resolve: func(graphql.ResolveParams) (any, error) {
					return nil, errors.New("boom")
				},
			},
		},
	})
	schema, err := NewSchema(query)
	require.NoError(t, err)
	return schema
}

func TestHandler(t *testing.T) {
	h := Handler(testSchema(t))

	tests := []struct {
		name   string
		req    *http.Request
		status int
		body   string
	}{
		{
			"post",
			httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ greeting }"}`)),
			200, `{"data":{"greeting":"hello world"}}`,
		},
		{
			"post with variables",
			httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(
				`{"query":"query G($n: String) { greeting(name: $n) }","variables":{"n":"asha"}}`)),
			200, `{"data":{"greeting":"hello asha"}}`,
		},
		{
			"get",
			httptest.NewRequest(http.MethodGet, "/graphql?query="+url.QueryEscape("{ greeting(name: \"ravi\") }"), nil),
			200, `{"data":{"greeting":"hello ravi"}}`,
		},
		{
			"missing query",
			httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{}`)),
			400, `{"status":400,"message":"query is required"}`,
		},
		{
			"bad json",
			httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{`)),
			400, `{"status":400,"message":"invalid JSON body"}`,
		},
		{
			"bad variables",
			httptest.NewRequest(http.MethodGet, "/graphql?query=%7Bgreeting%7D&variables=nope", nil),
			400, `{"status":400,"message":"variables must be a JSON object"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h(rec, tt.req)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestHandler_ResolverErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(testSchema(t))(rec, httptest.NewRequest(http.MethodPost, "/graphql",
		strings.NewReader(`{"query":"{ broken }"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"boom"`)
	assert.Contains(t, rec.Body.String(), `"broken":null`)
}

func TestHandler_PassesRequestContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ greeting }"}`))
	req = req.WithContext(context.WithValue(req.Context(), greetingKey{}, "namaste"))

	rec := httptest.NewRecorder()
	Handler(testSchema(t))(rec, req)
	assert.JSONEq(t, `{"data":{"greeting":"namaste world"}}`, rec.Body.String())
}

func TestHandler_RejectsMutations(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler(testSchema(t))(rec, httptest.NewRequest(http.MethodPost, "/graphql",
		strings.NewReader(`{"query":"mutation { greeting }"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"errors"`)
}
