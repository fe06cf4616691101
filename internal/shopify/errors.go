package shopify

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnexpectedStatus  = errors.New("unexpected HTTP status")
	ErrGraphQL           = errors.New("graphql errors")
	ErrNoStagedTarget    = errors.New("no staged upload target returned")
	ErrNoFileReturned    = errors.New("no file returned by creation")
	ErrNotMaterializable = errors.New("descriptor has neither a source URL nor a local path")
)

// UserError is one field-level validation message reported by a mutation.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrorsError carries the userErrors list of a failed mutation. It is a
// hard failure for the file being processed, never for the whole batch.
type UserErrorsError struct {
	Mutation string
	Errors   []UserError
}

func (e *UserErrorsError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "shopify user errors"
	}
	msgs := make([]string, len(e.Errors))
	for i, ue := range e.Errors {
		if len(ue.Field) > 0 {
			msgs[i] = fmt.Sprintf("%s: %s", strings.Join(ue.Field, "."), ue.Message)
		} else {
			msgs[i] = ue.Message
		}
	}
	return fmt.Sprintf("%s: %s", e.Mutation, strings.Join(msgs, "; "))
}
