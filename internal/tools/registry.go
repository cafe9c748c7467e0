package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"racksum-backend/internal/logger"
	"racksum-backend/internal/metrics"
	"racksum-backend/internal/resource"
	"racksum-backend/internal/store"
)

// ErrUnknownTool is returned by Call for names that are not registered. It is
// the only error Call reports; failures inside a tool come back as text.
var ErrUnknownTool = errors.New("unknown tool")

// Output formats accepted by the read tools.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Definition describes a tool and its JSON input schema.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Result is the outcome of a tool call. IsError marks text that describes a
// failure, such as a missing site or a placement conflict.
type Result struct {
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
}

type handlerFunc func(ctx context.Context, args json.RawMessage) (string, error)

type tool struct {
	def     Definition
	handler handlerFunc
}

// Registry dispatches tool calls to handlers backed by the store.
type Registry struct {
	store           store.Store
	agg             *resource.Aggregator
	defaultRUHeight int
	tools           map[string]tool
}

// NewRegistry builds a registry with every tool registered.
func NewRegistry(s store.Store, agg *resource.Aggregator, defaultRUHeight int) *Registry {
	r := &Registry{
		store:           s,
		agg:             agg,
		defaultRUHeight: defaultRUHeight,
		tools:           make(map[string]tool),
	}
	r.register()
	return r
}

func (r *Registry) add(def Definition, h handlerFunc) {
	r.tools[def.Name] = tool{def: def, handler: h}
}

// Definitions lists the registered tools sorted by name.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Call runs the named tool with raw JSON arguments.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	t, ok := r.tools[name]
	if !ok {
		metrics.ToolCallsTotal.WithLabelValues("unknown", "error").Inc()
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		args = json.RawMessage("{}")
	}

	start := time.Now()
	text, err := t.handler(ctx, args)
	status := "ok"
	if err != nil {
		status = "error"
		text = errorText(err)
		logger.Warn().Err(err).Str("tool", name).Msg("tool call failed")
	} else {
		logger.Info().Str("tool", name).Dur("elapsed", time.Since(start)).Msg("tool call handled")
	}
	metrics.ToolCallsTotal.WithLabelValues(name, status).Inc()

	return Result{Text: text, IsError: err != nil}, nil
}

// decode unmarshals tool arguments, rejecting unknown fields so typos in
// argument names do not silently fall back to defaults.
func decode(args json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func outputFormat(f string) (string, error) {
	switch f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("output_format must be %q or %q, got %q", FormatText, FormatJSON, f)
	}
}
