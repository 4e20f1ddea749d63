package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// Request is the POST body of a GraphQL call.
type Request struct {
	Query         string                 `json:"query" validate:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler serves schema over POST. Results use the GraphQL response shape
// rather than the REST envelope.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		errs, err := bind.JSON(r, &req)
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if bind.HasErrors(errs) {
			response.ValidationError(w, errs)
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result) //nolint:errcheck
	}
}
