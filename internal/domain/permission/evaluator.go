// Package permission decide si un rol puede ejecutar un método sobre un recurso.
// No guarda estado: la concesión extra para órdenes reenviadas se calcula en cada llamada.
package permission

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// ReasonSelfRoleChange motivo de rechazo cuando un usuario intenta cambiar su propio rol.
const ReasonSelfRoleChange = "self-service users may not change their own role"

// ordersSegment primer segmento de las rutas del servicio de órdenes.
const ordersSegment = "orders"

// baseRules es de sólo lectura; verbsFor siempre devuelve copias.
var baseRules = map[string][]string{
	entity.RoleAdministrator: {http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	entity.RoleReader:        {http.MethodGet},
}

// Request entrada de la decisión.
// ForwardedPath no vacío indica que otro servicio pide verificar su propia petición original.
type Request struct {
	RoleName           string
	RequesterID        string
	PathFirstSegment   string
	Method             string
	ForwardedMethod    string
	ForwardedPath      string
	AttemptsRoleChange bool
}

// Forwarded indica si la verificación llegó reenviada por otro servicio.
func (r Request) Forwarded() bool {
	return r.ForwardedPath != ""
}

// EffectiveMethod método original reenviado si existe, si no el literal.
func (r Request) EffectiveMethod() string {
	if r.ForwardedMethod != "" {
		return strings.ToUpper(r.ForwardedMethod)
	}
	return strings.ToUpper(r.Method)
}

// Decision resultado de Evaluate. Reason vacío si Allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

// Evaluate aplica las reglas en orden:
//  1. recurso propio (segmento == id del solicitante): permitido salvo cambio de rol;
//  2. el conjunto de métodos del rol contiene el método efectivo;
//  3. un customer en verificación reenviada hacia /orders obtiene además POST, PUT y DELETE;
//  4. en otro caso, denegado.
func Evaluate(req Request) Decision {
	if req.PathFirstSegment != "" && req.PathFirstSegment == req.RequesterID {
		if req.AttemptsRoleChange {
			return Decision{Reason: ReasonSelfRoleChange}
		}
		return Decision{Allowed: true}
	}

	method := req.EffectiveMethod()
	for _, m := range verbsFor(req) {
		if m == method {
			return Decision{Allowed: true}
		}
	}
	return Decision{Reason: fmt.Sprintf("not allowed for %s users", req.RoleName)}
}

// verbsFor conjunto de métodos del rol para esta decisión.
func verbsFor(req Request) []string {
	if verbs, ok := baseRules[req.RoleName]; ok {
		return append([]string(nil), verbs...)
	}
	if req.RoleName != entity.RoleCustomer || !req.Forwarded() {
		return nil
	}
	verbs := []string{http.MethodGet}
	if FirstSegment(req.ForwardedPath) == ordersSegment {
		verbs = append(verbs, http.MethodPost, http.MethodPut, http.MethodDelete)
	}
	return verbs
}

// FirstSegment devuelve el primer segmento de una ruta ("/orders/1/products" -> "orders").
func FirstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	return path
}
