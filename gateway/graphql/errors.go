package graphql

import (
	"context"

	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/navith/genreguide/errors"
)

// Error codes for failures that are not the caller's fault.
const (
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeDataError        = "DATA_ERROR"
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"
	CodeCancelled        = "CANCELLED"
	CodeInternal         = "INTERNAL_ERROR"
)

// gatewayError is a field error carrying a code in extensions. graphql-go
// copies Extensions into the response.
type gatewayError struct {
	message   string
	code      string
	operation string
	cause     error
}

func (e *gatewayError) Error() string {
	return e.message
}

func (e *gatewayError) Unwrap() error {
	return e.cause
}

func (e *gatewayError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code":      e.code,
		"operation": e.operation,
	}
	if e.code == CodeStoreUnavailable {
		ext["retryable"] = true
	}
	return ext
}

// wrapError maps a resolver failure onto a coded GraphQL error. Query errors
// keep their code and message. Everything else is logged with its detail and
// reported with a generic message.
func wrapError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	if code, ok := errors.CodeOf(err); ok {
		slogcontext.FromCtx(ctx).Debug("Query rejected",
			"operation", operation,
			"code", code,
			"error", err)
		return &gatewayError{message: err.Error(), code: string(code), operation: operation, cause: err}
	}

	mapped := &gatewayError{operation: operation, cause: err}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		mapped.code, mapped.message = contextCode(err)
	case errors.IsTransient(err):
		mapped.code, mapped.message = CodeStoreUnavailable, "Store unavailable, please retry"
	case errors.IsFatal(err):
		mapped.code, mapped.message = CodeDataError, "Stored data could not be read"
	default:
		mapped.code, mapped.message = CodeInternal, "Internal server error"
	}

	slogcontext.FromCtx(ctx).Error("Field resolution failed",
		"operation", operation,
		"code", mapped.code,
		"error", err)
	return mapped
}

func contextCode(err error) (code, message string) {
	if errors.Is(err, context.Canceled) {
		return CodeCancelled, "Query cancelled"
	}
	return CodeDeadlineExceeded, "Query timeout exceeded"
}

// codeContextErrors gives a code to the errors the executor raises on its own
// once the request context has ended. Errors that already carry a code are
// left alone.
func codeContextErrors(errs []*gqlerrors.QueryError, ctxErr error, operation string) {
	code, message := contextCode(ctxErr)
	for _, e := range errs {
		if _, ok := e.Extensions["code"]; ok {
			continue
		}
		e.Message = message
		e.Extensions = map[string]interface{}{
			"code":      code,
			"operation": operation,
		}
	}
}
