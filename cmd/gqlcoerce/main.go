package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/hanpama/gqlcoerce/internal/coercion"
	"github.com/hanpama/gqlcoerce/internal/eventbus"
	"github.com/hanpama/gqlcoerce/internal/input"
	"github.com/hanpama/gqlcoerce/internal/language"
	"github.com/hanpama/gqlcoerce/internal/otel"
	"github.com/hanpama/gqlcoerce/internal/schema"
	"github.com/hanpama/gqlcoerce/internal/server"
)

const rootUsage = `gqlcoerce — schema-directed GraphQL input coercion

USAGE:
  gqlcoerce <command> [flags]

COMMANDS:
  coerce           Coerce the variables and arguments of one operation
  serve            Run an HTTP endpoint that coerces GraphQL requests
  types            Print the input types of a schema as SDL
  help             Show help for any command
`

const coerceUsage = `coerce FLAGS:
  -schema.file <file>          GraphQL SDL file (required)
  -query.file <file>           GraphQL document file (required)
  -operation <name>            Operation to coerce (default: the only one)
  -variables.file <file>       Variables payload (default: none)
  -variables.format <fmt>      json | yaml | protojson (default: by file extension, else json)
  -pretty                      Indent JSON output
  (Prints {"variables":…,"arguments":…}; exits non-zero on violations)
`

const serveUsage = `serve FLAGS:
  -schema.file <file>                 GraphQL SDL file (required)
  -server.addr <addr>                 HTTP listen address (default: :8080)
  -server.pretty                      Pretty-print JSON responses
  -server.timeout <duration>          Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body-bytes N            Request body limit in bytes (default: 1048576)
  -server.cors-origin <origin>        Allowed CORS origin. Repeatable; "*" allows any
  -otel.endpoint <addr>               OTLP collector endpoint
  -otel.service <name>                OpenTelemetry service name (default: gqlcoerce)
`

const typesUsage = `types FLAGS:
  -schema.file <file>      GraphQL SDL file (required)
  -out  <file>             Write SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("gqlcoerce", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "coerce":
		return cmdCoerce(cmdArgs, stdout, stderr)
	case "serve":
		return cmdServe(cmdArgs, stderr)
	case "types":
		return cmdTypes(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "coerce":
		fmt.Fprint(stdout, coerceUsage)
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "types":
		fmt.Fprint(stdout, typesUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return strings.Join(*s, ",") }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// loadSchema builds the schema and its catalog. A scalar named DateTime gets
// RFC 3339 coercion; other custom scalars pass through.
func loadSchema(file string) (*schema.Schema, *coercion.SchemaCatalog, error) {
	sdl, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	sch, err := schema.BuildFromSDL(file, string(sdl))
	if err != nil {
		return nil, nil, fmt.Errorf("build schema: %w", err)
	}
	cat, err := coercion.NewCatalog(sch, coercion.WithScalar(coercion.DateTimeScalar))
	if err != nil {
		return nil, nil, fmt.Errorf("build catalog: %w", err)
	}
	return sch, cat, nil
}

func cmdCoerce(args []string, stdout, stderr io.Writer) error {
	schemaFile := ""
	queryFile := ""
	operation := ""
	varsFile := ""
	varsFormat := ""
	pretty := false

	fs := flag.NewFlagSet("coerce", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL file")
	fs.StringVar(&queryFile, "query.file", queryFile, "GraphQL document file")
	fs.StringVar(&operation, "operation", operation, "Operation name")
	fs.StringVar(&varsFile, "variables.file", varsFile, "Variables payload")
	fs.StringVar(&varsFormat, "variables.format", varsFormat, "json, yaml or protojson")
	fs.BoolVar(&pretty, "pretty", pretty, "Indent JSON output")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, coerceUsage)
		return err
	}
	if schemaFile == "" || queryFile == "" {
		fmt.Fprint(stderr, coerceUsage)
		return fmt.Errorf("-schema.file and -query.file are required")
	}
	if varsFormat == "" {
		varsFormat = formatOf(varsFile)
	}

	sch, cat, err := loadSchema(schemaFile)
	if err != nil {
		return err
	}
	query, err := os.ReadFile(queryFile)
	if err != nil {
		return err
	}
	doc, err := language.ParseQuery(string(query))
	if err != nil {
		return fmt.Errorf("parse query: %w", err)
	}
	if errs := language.ValidateQuery(sch.Validated, doc); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(stderr, e.Error())
		}
		return fmt.Errorf("query has %d validation errors", len(errs))
	}
	op := language.SelectOperation(doc, operation)
	if op == nil {
		return fmt.Errorf("operation %q not found", operation)
	}

	var payload []byte
	if varsFile != "" {
		if payload, err = os.ReadFile(varsFile); err != nil {
			return err
		}
	}

	res, err := coerceOperation(sch, cat, doc, op, varsFormat, varsFile, payload)
	var vs coercion.Violations
	if errors.As(err, &vs) {
		for _, v := range vs {
			fmt.Fprintln(stderr, formatViolation(v))
		}
		return fmt.Errorf("%d input violations", len(vs))
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func formatOf(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// coerceOperation decodes payload in the given format and coerces op with the
// matching reader.
func coerceOperation(sch *schema.Schema, cat *coercion.SchemaCatalog, doc *language.QueryDocument, op *language.OperationDefinition, format, name string, payload []byte) (*coercion.OperationInput, error) {
	empty := len(bytes.TrimSpace(payload)) == 0
	switch format {
	case "json":
		var root any
		if !empty {
			v, err := input.DecodeJSONBytes(payload)
			if err != nil {
				return nil, fmt.Errorf("decode variables: %w", err)
			}
			root = v
		}
		return coercion.CoerceOperation(cat, sch, doc, op, input.JSON{}, root)
	case "yaml":
		root, err := input.DecodeYAML(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("decode variables: %w", err)
		}
		return coercion.CoerceOperation(cat, sch, doc, op, input.YAML{Name: name}, root)
	case "protojson":
		root, err := input.DecodeProtoJSON(payload)
		if empty {
			root, err = nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode variables: %w", err)
		}
		return coercion.CoerceOperation(cat, sch, doc, op, input.Struct{}, root)
	default:
		return nil, fmt.Errorf("unknown variables format %q", format)
	}
}

func formatViolation(v coercion.Violation) string {
	msg := fmt.Sprintf("%s [%s]", v.Error(), coercion.Code(v))
	pos := v.Position()
	if pos == nil {
		return msg
	}
	if pos.Src != nil && pos.Src.Name != "" {
		return fmt.Sprintf("%s:%d:%d: %s", pos.Src.Name, pos.Line, pos.Column, msg)
	}
	return fmt.Sprintf("%d:%d: %s", pos.Line, pos.Column, msg)
}

func cmdServe(args []string, stderr io.Writer) error {
	schemaFile := ""
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	maxBody := int64(1 << 20)
	otelEndpoint := ""
	otelService := "gqlcoerce"
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL file")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBody, "server.max-body-bytes", maxBody, "Request body limit")
	fs.Var(&corsOrigins, "server.cors-origin", "Allowed CORS origin")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(stderr, serveUsage)
		return fmt.Errorf("-schema.file is required")
	}

	sch, cat, err := loadSchema(schemaFile)
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	var sopts []server.Option
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if maxBody > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(maxBody))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	h, err := server.New(cat, sch, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)

	log.Printf("coercion endpoint listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func cmdTypes(args []string, stdout, stderr io.Writer) error {
	schemaFile := ""
	outFile := ""
	fs := flag.NewFlagSet("types", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema.file", schemaFile, "GraphQL SDL file")
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, typesUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(stderr, typesUsage)
		return fmt.Errorf("-schema.file is required")
	}

	sch, _, err := loadSchema(schemaFile)
	if err != nil {
		return err
	}
	sdl := schema.RenderInputTypes(sch)
	if outFile == "" {
		fmt.Fprint(stdout, sdl)
		return nil
	}
	return os.WriteFile(outFile, []byte(sdl), 0644)
}
