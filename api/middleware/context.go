package middleware

import "context"

type contextKey string

const (
	ctxWallet contextKey = "wallet"
	ctxRole   contextKey = "actor_role"
)

func WalletFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxWallet).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithWallet injects the caller's wallet address into the context.
func WithWallet(ctx context.Context, wallet string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxWallet, wallet)
}

// WithRole injects the caller's role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}
