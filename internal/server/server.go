package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/vektah/gqlparser/v2/gqlerror"

	coercion "github.com/hanpama/gqlcoerce/internal/coercion"
	eventbus "github.com/hanpama/gqlcoerce/internal/eventbus"
	events "github.com/hanpama/gqlcoerce/internal/events"
	"github.com/hanpama/gqlcoerce/internal/input"
	language "github.com/hanpama/gqlcoerce/internal/language"
	reqid "github.com/hanpama/gqlcoerce/internal/reqid"
	schema "github.com/hanpama/gqlcoerce/internal/schema"
)

// Handler is an http.Handler that accepts GraphQL requests and answers with
// the coerced variables and root-field arguments of the selected operation.
// Nothing is executed.
type Handler struct {
	cat    *coercion.SchemaCatalog
	schema *schema.Schema
	opt    Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a handler for s. The schema must have been built from SDL so
// that queries can be validated against it.
func New(cat *coercion.SchemaCatalog, s *schema.Schema, opts ...Option) (*Handler, error) {
	if s.Validated == nil {
		return nil, errors.New("server: schema was not built from SDL")
	}
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{cat: cat, schema: s, opt: op}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, rid := reqid.NewContext(ctx)
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r, RequestID: rid})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, RequestID: rid, Status: status, Duration: time.Since(start)})
	}()
	w.Header().Set("X-Request-Id", reqid.Header(rid))

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResponse(gqlerror.Errorf("method not allowed")), h.opt.Pretty)
		return
	}

	req, batch, berr := parseRequest(r, h.opt.MaxBodyBytes)
	if berr != nil {
		status = http.StatusBadRequest
		if berr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse(berr), h.opt.Pretty)
		return
	}

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	if batch != nil {
		out := make([]Response, len(batch))
		for i := range batch {
			out[i] = h.coerceOne(ctx, batch[i])
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	writeJSON(w, status, h.coerceOne(ctx, req), h.opt.Pretty)
}

// Response is a GraphQL response: either Data or Errors is set.
type Response struct {
	Data   *coercion.OperationInput `json:"data,omitempty"`
	Errors gqlerror.List            `json:"errors,omitempty"`
}

func errorResponse(errs ...*gqlerror.Error) Response { return Response{Errors: errs} }

func (h *Handler) coerceOne(ctx context.Context, req GraphQLRequest) Response {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		var ge *gqlerror.Error
		if errors.As(err, &ge) {
			return errorResponse(ge)
		}
		return errorResponse(gqlerror.Wrap(err))
	}
	if errs := language.ValidateQuery(h.schema.Validated, doc); len(errs) > 0 {
		return Response{Errors: errs}
	}

	op := language.SelectOperation(doc, req.OperationName)
	if op == nil {
		if req.OperationName == "" {
			return errorResponse(gqlerror.Errorf("operation name is required when the document has several operations"))
		}
		return errorResponse(gqlerror.Errorf("unknown operation %q", req.OperationName))
	}

	start := time.Now()
	eventbus.Publish(ctx, events.CoercionStart{
		OperationName: op.Name,
		OperationType: string(op.Operation),
		Variables:     len(op.VariableDefinitions),
	})
	res, err := h.coerceOperation(doc, op, req.Variables)
	var violations coercion.Violations
	if errors.As(err, &violations) {
		err = nil
	}
	eventbus.Publish(ctx, events.CoercionFinish{
		OperationName: op.Name,
		OperationType: string(op.Operation),
		Violations:    len(violations),
		Err:           err,
		Duration:      time.Since(start),
	})

	switch {
	case err != nil:
		return errorResponse(gqlerror.Wrap(err))
	case len(violations) > 0:
		return Response{Errors: toErrorList(violations)}
	}
	return Response{Data: res}
}

func (h *Handler) coerceOperation(doc *language.QueryDocument, op *language.OperationDefinition, rawVars json.RawMessage) (*coercion.OperationInput, error) {
	var root any
	if len(bytes.TrimSpace(rawVars)) > 0 {
		v, err := input.DecodeJSONBytes(rawVars)
		if err != nil {
			return nil, fmt.Errorf("invalid variables: %w", err)
		}
		root = v
	}
	return coercion.CoerceOperation(h.cat, h.schema, doc, op, input.JSON{}, root)
}

func toErrorList(vs coercion.Violations) gqlerror.List {
	out := make(gqlerror.List, len(vs))
	for i, v := range vs {
		e := &gqlerror.Error{
			Message:    v.Error(),
			Path:       v.Path(),
			Extensions: map[string]any{"code": coercion.Code(v)},
		}
		if pos := v.Position(); pos != nil {
			e.Locations = []gqlerror.Location{{Line: pos.Line, Column: pos.Column}}
		}
		out[i] = e
	}
	return out
}

// ------------------ Request parsing ------------------

type GraphQLRequest struct {
	Query         string          `json:"query"`
	OperationName string          `json:"operationName,omitempty"`
	Variables     json.RawMessage `json:"variables,omitempty"`
	Extensions    map[string]any  `json:"extensions,omitempty"`
}

func parseRequest(r *http.Request, maxBody int64) (GraphQLRequest, []GraphQLRequest, *gqlerror.Error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return GraphQLRequest{}, nil, gqlerror.Errorf("missing 'query'")
		}
		req := GraphQLRequest{Query: q, OperationName: r.URL.Query().Get("operationName")}
		if v := r.URL.Query().Get("variables"); v != "" {
			if !json.Valid([]byte(v)) {
				return GraphQLRequest{}, nil, gqlerror.Errorf("invalid 'variables' JSON")
			}
			req.Variables = json.RawMessage(v)
		}
		return req, nil, nil
	}

	// POST
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return GraphQLRequest{}, nil, gqlerror.Errorf("unsupported Content-Type")
	}
	defer r.Body.Close()
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return GraphQLRequest{}, nil, gqlerror.Errorf("failed to read body")
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return GraphQLRequest{}, nil, gqlerror.Errorf(errBodyTooLargeMessage)
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var arr []GraphQLRequest
		if err := json.Unmarshal(body, &arr); err != nil {
			return GraphQLRequest{}, nil, gqlerror.Errorf("invalid JSON")
		}
		if len(arr) == 0 {
			return GraphQLRequest{}, nil, gqlerror.Errorf("empty batch")
		}
		return GraphQLRequest{}, arr, nil
	}
	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return GraphQLRequest{}, nil, gqlerror.Errorf("invalid JSON")
	}
	if req.Query == "" {
		return GraphQLRequest{}, nil, gqlerror.Errorf("missing 'query'")
	}
	return req, nil, nil
}

// ------------------ Response formatting ------------------

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const errBodyTooLargeMessage = "body too large"

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	wildcard := false
	allowed := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" {
			wildcard = true
		}
		if o == "*" || o == origin {
			allowed = true
		}
	}
	if !allowed {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}
