package orders

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// Compensation liberación emitida para deshacer una reserva.
type Compensation struct {
	ProductID string
	Quantity  int
	Err       error
}

// SagaError fallo de un paso de la saga con las compensaciones que se ejecutaron.
// Unwrap devuelve la causa original para que el mapeo HTTP no cambie.
type SagaError struct {
	Step          string
	Err           error
	Compensations []Compensation
}

func (e *SagaError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *SagaError) Unwrap() error { return e.Err }

// Failed compensaciones que tampoco se pudieron aplicar; quedan como inconsistencia de stock.
func (e *SagaError) Failed() []Compensation {
	var out []Compensation
	for _, c := range e.Compensations {
		if c.Err != nil {
			out = append(out, c)
		}
	}
	return out
}

// reservation registra cada reserva confirmada para poder deshacerla en orden inverso.
type reservation struct {
	catalog CatalogClient
	log     zerolog.Logger
	done    []entity.OrderLine
}

func (r *reservation) reserve(ctx context.Context, line entity.OrderLine) error {
	if err := r.catalog.ReserveStock(ctx, line.ProductID, line.Quantity); err != nil {
		return err
	}
	r.done = append(r.done, line)
	return nil
}

// compensate libera lo reservado del último al primero. Usa un contexto sin cancelación:
// si la petición original expiró, las liberaciones igualmente deben salir.
func (r *reservation) compensate(ctx context.Context) []Compensation {
	ctx = context.WithoutCancel(ctx)
	out := make([]Compensation, 0, len(r.done))
	for i := len(r.done) - 1; i >= 0; i-- {
		line := r.done[i]
		err := r.catalog.ReleaseStock(ctx, line.ProductID, line.Quantity)
		ev := r.log.Info()
		if err != nil {
			ev = r.log.Error().Err(err)
		}
		ev.Str("product_id", line.ProductID).Int("quantity", line.Quantity).Msg("compensación de reserva")
		out = append(out, Compensation{ProductID: line.ProductID, Quantity: line.Quantity, Err: err})
	}
	r.done = nil
	return out
}

func (r *reservation) fail(ctx context.Context, step string, err error) *SagaError {
	se := &SagaError{Step: step, Err: err, Compensations: r.compensate(ctx)}
	r.log.Warn().Err(err).Str("step", step).Int("compensations", len(se.Compensations)).
		Int("failed_compensations", len(se.Failed())).Msg("saga de orden abortada")
	return se
}
