package observability

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// scrapeSpanName names the span started for every scrape.
	scrapeSpanName = "metrics.scrape"

	attrHTTPMethod       = "http.method"
	attrHTTPStatusCode   = "http.status_code"
	attrHTTPResponseSize = "http.response.size"
	attrScrapeFormat     = "http.response.format"

	formatOpenMetrics = "openmetrics"
	formatText        = "text"
	openMetricsType   = "application/openmetrics-text"
)

// scrapeRecorder remembers the status and size of a scrape response.
type scrapeRecorder struct {
	http.ResponseWriter

	status int
	size   int64
}

func (sr *scrapeRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}

	sr.ResponseWriter.WriteHeader(code)
}

func (sr *scrapeRecorder) Write(buf []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}

	n, err := sr.ResponseWriter.Write(buf)
	sr.size += int64(n)

	return n, err //nolint:wrapcheck // writer errors pass through as is.
}

// ScrapeHandler serves the Prometheus endpoint, tracing each scrape as one
// span. Only GET and HEAD are served; other methods get 405 without reaching
// the exporter.
func ScrapeHandler(tracer trace.Tracer, metrics http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		ctx, span := tracer.Start(req.Context(), scrapeSpanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String(attrHTTPMethod, req.Method),
				attribute.String(attrScrapeFormat, scrapeFormat(req)),
			),
		)
		defer span.End()

		rec := &scrapeRecorder{ResponseWriter: rw}

		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			rec.Header().Set("Allow", "GET, HEAD")
			http.Error(rec, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		} else {
			metrics.ServeHTTP(rec, req.WithContext(ctx))
		}

		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		span.SetAttributes(
			attribute.Int(attrHTTPStatusCode, rec.status),
			attribute.Int64(attrHTTPResponseSize, rec.size),
		)

		if rec.status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}

// scrapeFormat reports which exposition format the scraper asked for.
func scrapeFormat(req *http.Request) string {
	if strings.Contains(req.Header.Get("Accept"), openMetricsType) {
		return formatOpenMetrics
	}

	return formatText
}
