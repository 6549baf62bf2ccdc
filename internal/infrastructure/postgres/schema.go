package postgres

import (
	"context"
	"embed"
	"fmt"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Esquemas disponibles, uno por servicio.
const (
	SchemaIdentity = "identity"
	SchemaCatalog  = "catalog"
	SchemaOrders   = "orders"
)

// EnsureSchema aplica el DDL idempotente (CREATE ... IF NOT EXISTS) del servicio.
func EnsureSchema(ctx context.Context, q Querier, name string) error {
	ddl, err := schemaFS.ReadFile("schema/" + name + ".sql")
	if err != nil {
		return fmt.Errorf("leer esquema %s: %w", name, err)
	}
	if _, err := q.Exec(ctx, string(ddl)); err != nil {
		return fmt.Errorf("aplicar esquema %s: %w", name, err)
	}
	return nil
}
