package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// ProductCounter cuenta productos existentes (repository.ProductRepository).
type ProductCounter interface {
	Count(ctx context.Context) (int, error)
}

// CategoryLister lee las categorías existentes (repository.CategoryRepository).
type CategoryLister interface {
	List(ctx context.Context) ([]*entity.Category, error)
}

// CategoryCreator alta validada de categorías (catalog.CategoryUseCase).
type CategoryCreator interface {
	Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error)
}

// ProductCreator alta validada de productos (catalog.ProductUseCase).
type ProductCreator interface {
	Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error)
}

// CatalogReport resultado de una carga de fixtures.
type CatalogReport struct {
	Skipped    bool
	Categories int
	Products   int
}

// CatalogSeeder carga productos (y las categorías que nombran) desde un CSV.
type CatalogSeeder struct {
	counter        ProductCounter
	categories     CategoryLister
	createCategory CategoryCreator
	createProduct  ProductCreator
	log            zerolog.Logger
}

func NewCatalogSeeder(counter ProductCounter, categories CategoryLister, createCategory CategoryCreator, createProduct ProductCreator, log zerolog.Logger) *CatalogSeeder {
	return &CatalogSeeder{counter: counter, categories: categories, createCategory: createCategory, createProduct: createProduct, log: log}
}

// fixture fila ya parseada; line es la línea del archivo para los mensajes de error.
type fixture struct {
	line     int
	category string
	product  dto.CreateProductRequest
}

// Columnas reconocidas en la cabecera. name y price son obligatorias.
const (
	colName        = "name"
	colDescription = "description"
	colPrice       = "price"
	colStock       = "stock"
	colCategory    = "category"
)

// Load sólo siembra un catálogo vacío: con al menos un producto no toca nada.
// Todo el archivo se valida antes de escribir; un error de formato no deja el catálogo a medias.
func (s *CatalogSeeder) Load(ctx context.Context, r io.Reader) (*CatalogReport, error) {
	n, err := s.counter.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("contar productos: %w", err)
	}
	if n > 0 {
		s.log.Info().Int("products", n).Msg("catálogo con datos, se omite la carga")
		return &CatalogReport{Skipped: true}, nil
	}

	rows, err := parseCatalog(r)
	if err != nil {
		return nil, err
	}

	existing, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar categorías: %w", err)
	}
	ids := make(map[string]string, len(existing))
	for _, c := range existing {
		ids[strings.ToLower(c.Name)] = c.ID
	}

	report := &CatalogReport{}
	for _, row := range rows {
		if row.category != "" {
			key := strings.ToLower(row.category)
			id, ok := ids[key]
			if !ok {
				name := row.category
				c, err := s.createCategory.Create(ctx, dto.CategoryRequest{Name: &name})
				if err != nil {
					return report, fmt.Errorf("línea %d: categoría %q: %w", row.line, row.category, err)
				}
				id = c.ID
				ids[key] = id
				report.Categories++
			}
			row.product.CategoryID = &id
		}
		if _, err := s.createProduct.Create(ctx, row.product); err != nil {
			return report, fmt.Errorf("línea %d: producto %q: %w", row.line, row.product.Name, err)
		}
		report.Products++
	}
	s.log.Info().Int("categories", report.Categories).Int("products", report.Products).Msg("catálogo sembrado")
	return report, nil
}

func parseCatalog(r io.Reader) ([]fixture, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv vacío")
	}
	if err != nil {
		return nil, fmt.Errorf("leer cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colName, colPrice} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}
	get := func(rec []string, col string) string {
		if i, ok := cols[col]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var out []fixture
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		price, err := decimal.NewFromString(get(rec, colPrice))
		if err != nil {
			return nil, fmt.Errorf("línea %d: price inválido %q", line, get(rec, colPrice))
		}
		stock := 0
		if raw := get(rec, colStock); raw != "" {
			if stock, err = strconv.Atoi(raw); err != nil {
				return nil, fmt.Errorf("línea %d: stock inválido %q", line, raw)
			}
		}
		f := fixture{
			line:     line,
			category: get(rec, colCategory),
			product: dto.CreateProductRequest{
				Name:        get(rec, colName),
				Description: get(rec, colDescription),
				Price:       price,
				Stock:       stock,
			},
		}
		if err := dto.Validate(f.product); err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Decode envuelve r según el charset del archivo de fixtures. Vacío o utf-8 lo deja igual.
func Decode(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(charset, "_", "-")) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("charset no soportado %q", charset)
}
