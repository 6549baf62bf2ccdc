package dto

import (
	"fmt"
	"strconv"

	"github.com/jhoicas/tienda-api/internal/domain"
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Pagination page_number/page_size, ambos presentes o ambos ausentes (All).
type Pagination struct {
	PageNumber int
	PageSize   int
	All        bool
}

// AllItems paginación sin límites.
var AllItems = Pagination{All: true}

// ParsePagination valida los query params crudos.
func ParsePagination(pageNumber, pageSize string) (Pagination, error) {
	if pageNumber == "" && pageSize == "" {
		return AllItems, nil
	}
	if pageNumber == "" || pageSize == "" {
		return Pagination{}, domain.Validation("page_number and page_size cannot be used separately")
	}
	n, err := strconv.Atoi(pageNumber)
	if err != nil || n < 1 {
		return Pagination{}, domain.Validation("page_number must be an integer greater than 0")
	}
	s, err := strconv.Atoi(pageSize)
	if err != nil || s < 1 {
		return Pagination{}, domain.Validation("page_size must be an integer greater than 0")
	}
	return Pagination{PageNumber: n, PageSize: s}, nil
}

// Descriptor parte de la clave de caché: "page_number:<n>:page_size:<s>" o "all".
func (p Pagination) Descriptor() string {
	if p.All {
		return "all"
	}
	return fmt.Sprintf("page_number:%d:page_size:%d", p.PageNumber, p.PageSize)
}

// Limit para SQL; 0 significa sin límite.
func (p Pagination) Limit() int {
	if p.All {
		return 0
	}
	return p.PageSize
}

// Offset para SQL.
func (p Pagination) Offset() int {
	if p.All {
		return 0
	}
	return (p.PageNumber - 1) * p.PageSize
}

// Page sobre de las respuestas de listados.
type Page[T any] struct {
	Items      []T `json:"items"`
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// NewPage arma el sobre. noun se usa en los 404: "No <noun> found" / "No more <noun> available".
func NewPage[T any](items []T, p Pagination, total int, noun string) (*Page[T], error) {
	if total == 0 {
		return nil, domain.NotFound("No %s found", noun)
	}
	if len(items) == 0 {
		return nil, domain.NotFound("No more %s available", noun)
	}
	if p.All {
		return &Page[T]{Items: items, PageNumber: 1, PageSize: total, TotalPages: 1, TotalItems: total}, nil
	}
	return &Page[T]{
		Items:      items,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
		TotalPages: (total + p.PageSize - 1) / p.PageSize,
		TotalItems: total,
	}, nil
}

// SlicePage recorta en memoria una colección completa.
func SlicePage[T any](all []T, p Pagination) []T {
	if p.All {
		return all
	}
	start := p.Offset()
	if start >= len(all) {
		return nil
	}
	end := start + p.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
