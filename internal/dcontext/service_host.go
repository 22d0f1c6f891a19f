package dcontext

import "context"

type serviceHostKey struct{}

func (serviceHostKey) String() string { return "serviceHost" }

// WithServiceHost stores the externally visible host of the service on the
// context, for use when building absolute URLs behind a proxy.
func WithServiceHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, serviceHostKey{}, host)
}

// GetServiceHost returns the externally visible service host, or the empty
// string if none was set.
func GetServiceHost(ctx context.Context) string {
	return GetStringValue(ctx, serviceHostKey{})
}
