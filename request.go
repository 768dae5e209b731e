package docseq

import "context"

// Request addresses one series for issuing or previewing a number.
type Request struct {
	// Series is the series key, e.g. "receipt".
	Series string `json:"series"`

	// Prefix overrides the registered prefix. It is required for series
	// that are not registered.
	Prefix string `json:"prefix,omitempty"`

	// TenantID selects the per-tenant counter of a tenant-scoped series.
	// When empty, the tenant is taken from the context.
	TenantID string `json:"tenant_id,omitempty"`

	// EntityName is used to derive a decorative entity code for series
	// that render one, e.g. "Acme Trading Co" -> "QT-ATC-000051".
	EntityName string `json:"entity_name,omitempty"`
}

type tenantKey struct{}

// WithTenant returns a context carrying tenantID.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// TenantFromContext returns the tenant set by WithTenant, or "".
func TenantFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tenantKey{}).(string); ok {
		return v
	}
	return ""
}
