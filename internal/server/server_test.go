package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	coercion "github.com/hanpama/gqlcoerce/internal/coercion"
	eventbus "github.com/hanpama/gqlcoerce/internal/eventbus"
	events "github.com/hanpama/gqlcoerce/internal/events"
	reqid "github.com/hanpama/gqlcoerce/internal/reqid"
	schema "github.com/hanpama/gqlcoerce/internal/schema"
)

const testSDL = `
scalar DateTime

input Point {
  x: Int!
  y: Int = 0
}

enum Color { RED GREEN }

type Query {
  shape(at: Point!, color: Color = RED, tags: [String!]): String
  events(since: DateTime): [String]
  hello: String
}

type Mutation {
  move(to: Point!): Boolean
}
`

func newTestHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	sch, err := schema.BuildFromSDL("test.graphql", testSDL)
	require.NoError(t, err)
	cat, err := coercion.NewCatalog(sch, coercion.WithScalar(coercion.DateTimeScalar))
	require.NoError(t, err)
	h, err := New(cat, sch, opts...)
	require.NoError(t, err)
	return h
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func request(t *testing.T, query string, variables any) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	require.NoError(t, err)
	return string(b)
}

func TestCoerceVariablesAndArguments(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, request(t,
		`query Q($p: Point!) { shape(at: $p, tags: "a") greeting: hello }`,
		map[string]any{"p": map[string]any{"x": 1}}))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data": {
		"variables": {"p": {"x": 1, "y": 0}},
		"arguments": {
			"shape": {"at": {"x": 1, "y": 0}, "color": "RED", "tags": ["a"]},
			"greeting": {}
		}
	}}`, w.Body.String())
}

func TestFragmentsAndMutations(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, request(t,
		`mutation M($x: Int!) { ...Moves } fragment Moves on Mutation { move(to: {x: $x}) }`,
		map[string]any{"x": 4}))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data": {
		"variables": {"x": 4},
		"arguments": {"move": {"to": {"x": 4, "y": 0}}}
	}}`, w.Body.String())
}

func TestVariableViolations(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, request(t,
		`query Q($p: Point!, $c: Color) { shape(at: $p, color: $c) }`,
		map[string]any{"p": map[string]any{"x": "one"}, "c": "BLUE"}))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"errors": [
		{
			"message": "Variable '$p' expected value of type 'Point!' but got: {\"x\":\"one\"}.",
			"path": ["$p"],
			"extensions": {"code": "VARIABLE_TYPE_MISMATCH"}
		},
		{
			"message": "Variable '$c' expected value of type 'Color' but got: \"BLUE\".",
			"path": ["$c"],
			"extensions": {"code": "VARIABLE_TYPE_MISMATCH"}
		}
	]}`, w.Body.String())
}

func TestArgumentViolationsAreLocated(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, request(t, `{ events(since: "yesterday") }`, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Data   any
		Errors []struct {
			Message    string
			Path       []any
			Locations  []struct{ Line, Column int }
			Extensions map[string]any
		}
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, []any{"since"}, res.Errors[0].Path)
	require.Equal(t, "FIELD_COERCION", res.Errors[0].Extensions["code"])
	require.Len(t, res.Errors[0].Locations, 1)
	require.Equal(t, 1, res.Errors[0].Locations[0].Line)
	require.Equal(t, 17, res.Errors[0].Locations[0].Column)
}

func TestQueryErrors(t *testing.T) {
	h := newTestHandler(t)

	t.Run("Syntax", func(t *testing.T) {
		w := post(t, h, request(t, `{ shape(`, nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"errors"`)
		require.NotContains(t, w.Body.String(), `"data"`)
	})

	t.Run("Validation", func(t *testing.T) {
		w := post(t, h, request(t, `{ shape(at: {x: 1.5}) }`, nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"errors"`)
		require.NotContains(t, w.Body.String(), `"data"`)
	})

	t.Run("AmbiguousOperation", func(t *testing.T) {
		w := post(t, h, request(t, `query A { hello } query B { hello }`, nil))
		require.JSONEq(t, `{"errors": [{"message": "operation name is required when the document has several operations"}]}`, w.Body.String())
	})

	t.Run("UnknownOperation", func(t *testing.T) {
		w := post(t, h, `{"query": "query A { hello }", "operationName": "B"}`)
		require.JSONEq(t, `{"errors": [{"message": "unknown operation \"B\""}]}`, w.Body.String())
	})
}

func TestGetRequest(t *testing.T) {
	h := newTestHandler(t)
	q := url.Values{}
	q.Set("query", `query Q($c: Color = GREEN) { shape(at: {x: 2}, color: $c) }`)
	q.Set("variables", `{}`)

	req := httptest.NewRequest("GET", "/?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data": {
		"variables": {"c": "GREEN"},
		"arguments": {"shape": {"at": {"x": 2, "y": 0}, "color": "GREEN"}}
	}}`, w.Body.String())
}

func TestBatch(t *testing.T) {
	h := newTestHandler(t)
	w := post(t, h, `[{"query": "{ hello }"}, {"query": "query($n: Int!) { shape(at: {x: $n}) }"}]`)

	require.Equal(t, http.StatusOK, w.Code)
	var res []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res, 2)
	require.Contains(t, res[0], "data")
	require.Contains(t, res[1], "errors")
}

func TestBadRequests(t *testing.T) {
	h := newTestHandler(t)

	for _, tc := range []struct {
		name   string
		body   string
		status int
	}{
		{"InvalidJSON", `{"query":`, http.StatusBadRequest},
		{"MissingQuery", `{"variables": {}}`, http.StatusBadRequest},
		{"EmptyBatch", `[]`, http.StatusBadRequest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := post(t, h, tc.body)
			require.Equal(t, tc.status, w.Code)
		})
	}

	t.Run("Method", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("PUT", "/", nil))
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("ContentType", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`query=x`))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, WithCORS("*"))

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	require.Equal(t, http.StatusNoContent, pw.Code)
	require.Equal(t, "*", pw.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "X-Test", pw.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORSSpecificOrigin(t *testing.T) {
	h := newTestHandler(t, WithCORS("http://a.example"))

	for origin, want := range map[string]string{
		"http://a.example": "http://a.example",
		"http://b.example": "",
	} {
		req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, want, w.Header().Get("Access-Control-Allow-Origin"), origin)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	h := newTestHandler(t, WithMaxBodyBytes(10))
	w := post(t, h, `{"query":"1234567890"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestPretty(t *testing.T) {
	h := newTestHandler(t, WithPretty())
	w := post(t, h, `{"query":"{ hello }"}`)
	require.Contains(t, w.Body.String(), "\n  ")
}

func TestRequiresValidatedSchema(t *testing.T) {
	_, err := New(nil, schema.NewSchema(""))
	require.Error(t, err)
}

func TestEventsAndRequestID(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var mu sync.Mutex
	var got []string
	var startID, coerceID int64
	eventbus.Subscribe(func(_ context.Context, e events.HTTPStart) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, "http.start")
		startID = e.RequestID
	})
	eventbus.Subscribe(func(ctx context.Context, e events.CoercionStart) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, "coerce.start:"+e.OperationName)
		coerceID, _ = reqid.FromContext(ctx)
	})
	eventbus.Subscribe(func(_ context.Context, e events.CoercionFinish) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, "coerce.finish")
		require.Equal(t, 1, e.Violations)
	})
	eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, "http.finish")
		require.Equal(t, http.StatusOK, e.Status)
	})

	h := newTestHandler(t)
	w := post(t, h, request(t, `query Q($n: Int!) { shape(at: {x: $n}) }`, map[string]any{}))
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, []string{"http.start", "coerce.start:Q", "coerce.finish", "http.finish"}, got)
	require.NotZero(t, startID)
	require.Equal(t, startID, coerceID)
	require.Equal(t, reqid.Header(startID), w.Header().Get("X-Request-Id"))
}
