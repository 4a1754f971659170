package datalog

import "context"

// DefaultOperator is recorded when no operator can be resolved for a call.
const DefaultOperator = "admin"

// OperatorFunc resolves who performed the intercepted call.
type OperatorFunc func(ctx context.Context) string

type operatorKey struct{}

// WithOperator attaches an operator name to the context.
func WithOperator(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operatorKey{}, name)
}

// OperatorFromContext extracts the operator attached with WithOperator.
func OperatorFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(operatorKey{}).(string)
	return name, ok && name != ""
}

// StaticOperator always resolves to name.
func StaticOperator(name string) OperatorFunc {
	return func(context.Context) string { return name }
}

// ContextOperator resolves the operator from the context and falls back to
// fallback when none was attached.
func ContextOperator(fallback string) OperatorFunc {
	return func(ctx context.Context) string {
		if name, ok := OperatorFromContext(ctx); ok {
			return name
		}
		return fallback
	}
}
