package inventory

import "github.com/jhoicas/tienda-api/internal/domain"

// Delta convierte una cantidad en el cambio de stock: negativo al reservar, positivo al liberar.
func Delta(quantity int, release bool) int {
	if release {
		return quantity
	}
	return -quantity
}

// Apply calcula el nuevo stock. Falla si la cantidad no es positiva o si el resultado sería negativo.
func Apply(current, quantity int, release bool, productID string) (int, error) {
	if quantity < 1 {
		return 0, domain.Validation("quantity must be an integer greater than 0")
	}
	next := current + Delta(quantity, release)
	if next < 0 {
		return 0, domain.InsufficientStock("Requested quantity of product id %s not available", productID)
	}
	return next, nil
}
