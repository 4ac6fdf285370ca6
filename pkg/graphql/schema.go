// Package graphql serves read-only GraphQL schemas over HTTP.
package graphql

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/thali/pkg/logger"
	"github.com/shashiranjanraj/thali/pkg/response"
)

const maxBodyBytes = 1 << 20

// NewSchema creates a query-only schema. Mutations stay on the REST routes.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}

// Request is the usual GraphQL-over-HTTP payload.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Handler executes requests against schema. GET reads the query string,
// anything else a JSON body. Resolver errors come back in the result's
// errors list with status 200.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decode(r)
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		res := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})
		if res.HasErrors() {
			logger.WithCtx(r.Context()).Warn("graphql query returned errors", "errors", len(res.Errors))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

func decode(r *http.Request) (Request, error) {
	var req Request
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return req, errors.New("variables must be a JSON object")
			}
		}
	} else {
		err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
		if err != nil {
			return req, errors.New("invalid JSON body")
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		return req, errors.New("query is required")
	}
	return req, nil
}
