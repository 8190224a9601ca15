package graphql

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"blog-backend/internal/apperr"
	"blog-backend/internal/services"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/rs/zerolog/log"
)

// Handler serves POST /graphql
type Handler struct {
	schema graphql.Schema
}

// NewHandler builds the schema around the given services. Schema assembly is
// static; a failure there is a programming error.
func NewHandler(auth *services.AuthService, feed *services.FeedService) *Handler {
	root := &Root{auth: auth, feed: feed}
	schema, err := newSchema(root)
	if err != nil {
		panic(fmt.Sprintf("failed to build graphql schema: %v", err))
	}
	return &Handler{schema: schema}
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// formattedError is the error entry shape of this surface:
// {message, data, statusCode}.
type formattedError struct {
	Message    string              `json:"message"`
	Data       []apperr.FieldError `json:"data"`
	StatusCode int                 `json:"statusCode"`
}

type response struct {
	Data   interface{}      `json:"data"`
	Errors []formattedError `json:"errors,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Errors: []formattedError{{Message: "Invalid request body", StatusCode: http.StatusBadRequest}},
		})
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	writeJSON(w, http.StatusOK, response{
		Data:   result.Data,
		Errors: reformatErrors(result.Errors),
	})
}

// reformatErrors rewrites GraphQL execution errors into the taxonomy shape.
// Errors without taxonomy information become statusCode 500 entries with
// their detail logged server-side.
func reformatErrors(errs []gqlerrors.FormattedError) []formattedError {
	if len(errs) == 0 {
		return nil
	}

	out := make([]formattedError, 0, len(errs))
	for _, fe := range errs {
		if ae := taxonomyOf(fe); ae != nil {
			if ae.Kind == apperr.Internal {
				log.Error().Err(ae.Err).Msg("GraphQL request failed")
			}
			out = append(out, formattedError{
				Message:    ae.Message,
				Data:       ae.Data,
				StatusCode: ae.StatusCode(),
			})
			continue
		}
		out = append(out, formattedError{
			Message:    fe.Message,
			StatusCode: http.StatusInternalServerError,
		})
	}
	return out
}

// taxonomyOf digs through the gqlerrors wrapping for a taxonomy error.
func taxonomyOf(fe gqlerrors.FormattedError) *apperr.Error {
	err := fe.OriginalError()
	for err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return ae
		}
		var ge *gqlerrors.Error
		if errors.As(err, &ge) {
			err = ge.OriginalError
			continue
		}
		err = errors.Unwrap(err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode graphql response")
	}
}
