package builtins

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/tj-mc/tilde-sub001/internal/object"
)

func init() {
	register("get", httpVerb("get", http.MethodGet))
	register("post", httpVerb("post", http.MethodPost))
	register("put", httpVerb("put", http.MethodPut))
	register("delete", httpVerb("delete", http.MethodDelete))
	register("patch", httpVerb("patch", http.MethodPatch))
	register("http", evalHTTP)
}

const defaultHTTPTimeout = 30 * time.Second

type requestOptions struct {
	headers map[string]string
	body    string
	hasBody bool
	timeout time.Duration
}

func httpVerb(name, method string) object.BuiltinFunction {
	return func(ctx object.EvaluatorContext, args ...object.Object) object.Object {
		if len(args) == 0 {
			return ctx.NewError("%s requires at least a URL argument", name)
		}
		url, ok := args[0].(*object.String)
		if !ok {
			return ctx.NewError("%s URL must be a string", name)
		}
		opts, err := parseRequestOptions(ctx, args[1:])
		if err != nil {
			return err
		}
		return doRequest(ctx, name, method, url.Value, opts)
	}
}

func evalHTTP(ctx object.EvaluatorContext, args ...object.Object) object.Object {
	if len(args) < 2 {
		return ctx.NewError("http requires method and URL arguments")
	}
	method, ok := args[0].(*object.String)
	if !ok {
		return ctx.NewError("http method must be a string")
	}
	url, ok := args[1].(*object.String)
	if !ok {
		return ctx.NewError("http URL must be a string")
	}
	opts, err := parseRequestOptions(ctx, args[2:])
	if err != nil {
		return err
	}
	return doRequest(ctx, "http", strings.ToUpper(method.Value), url.Value, opts)
}

// parseRequestOptions reads the optional options map: headers, body,
// timeout (milliseconds), bearer_token and basic_auth.
func parseRequestOptions(ctx object.EvaluatorContext, rest []object.Object) (requestOptions, *object.Error) {
	opts := requestOptions{
		headers: map[string]string{},
		timeout: defaultHTTPTimeout,
	}
	if len(rest) == 0 {
		return opts, nil
	}
	m, ok := rest[0].(*object.Map)
	if !ok {
		return opts, nil
	}

	if h, found := m.Get("headers"); found {
		headerMap, ok := h.(*object.Map)
		if !ok {
			return opts, ctx.NewError("headers option must be a map")
		}
		for _, key := range headerMap.Keys {
			val, ok := headerMap.Entries[key].(*object.String)
			if !ok {
				return opts, ctx.NewError("Header '%s' must be a string", key)
			}
			opts.headers[strings.ToLower(key)] = val.Value
		}
	}

	if body, found := m.Get("body"); found {
		if s, ok := body.(*object.String); ok {
			opts.body = s.Value
		} else {
			var buf bytes.Buffer
			if encodeErr := encodeJSON(&buf, body); encodeErr != nil {
				return opts, ctx.NewError("body option: %s", encodeErr)
			}
			opts.body = buf.String()
			opts.headers["content-type"] = "application/json"
		}
		opts.hasBody = true
	}

	if t, found := m.Get("timeout"); found {
		if n, ok := t.(*object.Number); ok {
			opts.timeout = time.Duration(n.Value) * time.Millisecond
		}
	}

	if tok, found := m.Get("bearer_token"); found {
		if s, ok := tok.(*object.String); ok {
			opts.headers["authorization"] = "Bearer " + s.Value
		}
	}

	if auth, found := m.Get("basic_auth"); found {
		if authMap, ok := auth.(*object.Map); ok {
			user, uok := authMap.Get("username")
			pass, pok := authMap.Get("password")
			if uok && pok {
				username, uok := user.(*object.String)
				password, pok := pass.(*object.String)
				if uok && pok {
					creds := base64.StdEncoding.EncodeToString(
						[]byte(username.Value + ":" + password.Value))
					opts.headers["authorization"] = "Basic " + creds
				}
			}
		}
	}

	return opts, nil
}

func doRequest(ctx object.EvaluatorContext, fn, method, url string, opts requestOptions) object.Object {
	var bodyReader io.Reader
	if opts.hasBody {
		bodyReader = strings.NewReader(opts.body)
	}
	req, reqErr := http.NewRequest(method, url, bodyReader)
	if reqErr != nil {
		return ctx.NewError("%s: %s", fn, reqErr)
	}
	for key, val := range opts.headers {
		req.Header.Set(key, val)
	}

	client := &http.Client{Timeout: opts.timeout}
	start := time.Now()
	resp, doErr := client.Do(req)
	if doErr != nil {
		return ctx.NewError("%s: %s", fn, doErr)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if readErr != nil {
		return ctx.NewError("%s: failed to read response body: %s", fn, readErr)
	}

	return responseMap(ctx, url, resp, string(body), elapsed)
}

// responseMap shapes a response the way scripts consume it: status fields
// first, then headers, then the body both parsed and raw.
func responseMap(ctx object.EvaluatorContext, url string, resp *http.Response, body string, elapsed time.Duration) *object.Map {
	out := object.NewMap()
	out.Put("status", number(float64(resp.StatusCode)))
	out.Put("status_text", str(statusText(resp)))
	out.Put("url", str(url))
	out.Put("response_time_ms", number(float64(elapsed.Milliseconds())))

	headers := object.NewMap()
	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		headers.Put(strings.ToLower(name), str(resp.Header.Get(name)))
	}
	out.Put("headers", headers)

	// The body lands twice: decoded when it is valid JSON, raw always.
	trimmed := strings.TrimSpace(body)
	if json.Valid([]byte(trimmed)) && trimmed != "" {
		dec := json.NewDecoder(strings.NewReader(trimmed))
		if val, err := decodeJSONValue(ctx, dec); err == nil {
			out.Put("body", val)
		} else {
			out.Put("body", str(body))
		}
	} else {
		out.Put("body", str(body))
	}
	out.Put("body_text", str(body))

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	out.Put("ok", ctx.NativeBoolToBooleanObject(ok))
	out.Put("success", ctx.NativeBoolToBooleanObject(ok))
	return out
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("%d", resp.StatusCode)
}
