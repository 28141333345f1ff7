package jwtx

import "context"

type tokenKey struct{}

// ContextWithToken makes Transport authenticate requests carrying ctx with
// token instead of asking its token source.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext retrieves a token previously stored with ContextWithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value := ctx.Value(tokenKey{})
	if value == nil {
		return "", false
	}
	token, ok := value.(string)
	return token, ok && token != ""
}
