package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	invoker "github.com/miorlan/openapi-invoker"
	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func newApp() *cli.App {
	return &cli.App{
		Name:    "openapi-call",
		Usage:   "build and send HTTP requests from an OpenAPI 3 document",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "spec", Aliases: []string{"s"}, Usage: "path or URL of the OpenAPI document", Required: true},
			&cli.StringFlag{Name: "operation", Aliases: []string{"o"}, Usage: "operationId to invoke"},
			&cli.StringFlag{Name: "base-url", Aliases: []string{"u"}, Usage: "base URL requests are built against"},
			&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "parameter value as name=value (value parsed as JSON when possible)"},
			&cli.StringSliceFlag{Name: "header", Aliases: []string{"H"}, Usage: "extra request header as 'Name: value'"},
			&cli.StringFlag{Name: "body", Aliases: []string{"d"}, Usage: "request body (parsed as JSON when possible)"},
			&cli.StringSliceFlag{Name: "token", Usage: "credential as scheme=token (bearer, api key, oauth2)"},
			&cli.StringSliceFlag{Name: "basic", Usage: "credential as scheme=user:pass"},
			&cli.BoolFlag{Name: "execute", Aliases: []string{"x"}, Usage: "send the request instead of printing it"},
			&cli.BoolFlag{Name: "list", Aliases: []string{"l"}, Usage: "list operations and exit"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log advisory warnings"},
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second, Usage: "HTTP timeout"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	api, err := invoker.Load(c.Context, c.String("spec"),
		invoker.WithBaseURL(c.String("base-url")),
		invoker.WithLogging(c.Bool("verbose")),
		invoker.WithHTTPTimeout(c.Duration("timeout")),
	)
	if err != nil {
		return err
	}
	defer api.Close()

	if c.Bool("list") {
		for _, id := range api.Operations() {
			fmt.Fprintln(c.App.Writer, id)
		}
		return nil
	}

	operationID := c.String("operation")
	if operationID == "" {
		return fmt.Errorf("--operation is required (use --list to see operations)")
	}
	op, err := api.Operation(operationID)
	if err != nil {
		return err
	}

	params, err := parseParams(c.StringSlice("param"))
	if err != nil {
		return err
	}
	headers, err := parseHeaders(c.StringSlice("header"))
	if err != nil {
		return err
	}
	creds, err := parseCredentials(c.StringSlice("token"), c.StringSlice("basic"))
	if err != nil {
		return err
	}

	opts := invoker.CallOptions{Headers: headers}
	if raw := c.String("body"); raw != "" {
		opts.Body = parseValue(raw)
	}

	call := op.Prepare(params, opts)
	env := invoker.Environment{Credentials: creds}

	if !c.Bool("execute") {
		req, err := call.BuildRequest(c.Context, env)
		if err != nil {
			return err
		}
		return printRequest(c.App.Writer, req)
	}

	resp, err := call.Execute(c.Context, env)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(c.App.Writer, resp)
}

func parseParams(raw []string) (invoker.Params, error) {
	params := make(invoker.Params, len(raw))
	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q, expected name=value", entry)
		}
		params[name] = parseValue(value)
	}
	return params, nil
}

// parseValue keeps the raw string when it is not valid JSON, so plain
// strings do not need quoting on the command line.
func parseValue(raw string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

func parseHeaders(raw []string) (http.Header, error) {
	headers := make(http.Header, len(raw))
	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --header %q, expected 'Name: value'", entry)
		}
		headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return headers, nil
}

func parseCredentials(tokens, basics []string) (invoker.Credentials, error) {
	creds := make(invoker.Credentials)
	for _, entry := range tokens {
		scheme, token, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --token %q, expected scheme=token", entry)
		}
		creds[scheme] = invoker.Credential{Token: token}
	}
	for _, entry := range basics {
		scheme, pair, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --basic %q, expected scheme=user:pass", entry)
		}
		user, pass, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --basic %q, expected scheme=user:pass", entry)
		}
		creds[scheme] = invoker.Credential{Username: user, Password: pass}
	}
	return creds, nil
}

func printRequest(w io.Writer, req *http.Request) error {
	fmt.Fprintf(w, "%s %s\n", req.Method, req.URL.String())
	for _, name := range sortedHeaderNames(req.Header) {
		for _, v := range req.Header[name] {
			fmt.Fprintf(w, "%s: %s\n", name, v)
		}
	}
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return err
		}
		if len(data) > 0 {
			fmt.Fprintf(w, "\n%s\n", data)
		}
	}
	return nil
}

func printResponse(w io.Writer, resp *http.Response) error {
	fmt.Fprintln(w, resp.Status)
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		fmt.Fprintf(w, "%s\n", data)
	}
	return nil
}

func sortedHeaderNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
