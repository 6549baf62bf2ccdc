package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tienda-api/internal/domain"
)

const maxBody = 64 * 1024

// client base común a los clientes de servicio: JSON, bearer reenviado, timeout fijo.
type client struct {
	service string
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func newClient(service, baseURL string, timeout time.Duration, log zerolog.Logger) client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("upstream", service).Logger(),
	}
}

// do envía in como JSON (si no es nil) y decodifica la respuesta 2xx en out (si no es nil).
// Cualquier otro resultado es un *domain.UpstreamError.
func (c client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: serializar request: %w", c.service, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: crear request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := BearerFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		timeout := isTimeout(err)
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Bool("timeout", timeout).
			Dur("latency", time.Since(start)).Msg("llamada sin respuesta")
		return &domain.UpstreamError{Service: c.service, Timeout: timeout, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &domain.UpstreamError{Service: c.service, Status: resp.StatusCode, Err: err}
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).Msg("llamada a servicio")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.UpstreamError{Service: c.service, Status: resp.StatusCode, Body: raw}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.UpstreamError{Service: c.service, Status: resp.StatusCode, Body: raw,
			Err: fmt.Errorf("decodificar respuesta: %w", err)}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
