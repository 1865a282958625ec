package mathgrade

import (
	"context"
	"encoding/json"
	"fmt"
)

// ============================================================
// Tool interface
// ============================================================

// Tool names accepted by HandleToolCall.
const (
	ToolNormalize  = "normalize_expression"
	ToolEquivalent = "expressions_equivalent"
	ToolLaTeX      = "simplified_latex"
	ToolSchema     = "tool_schema"
)

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches one tool request. Failures are reported in the
// Error field.
func (n *Normalizer) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}

	switch req.Tool {
	case ToolNormalize:
		e, err := getString("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		a := n.Analyze(ctx, e)
		resp := ToolResponse{LaTeX: a.LaTeX, String: a.Normalized}
		if a.Tree != nil {
			resp.Result = a.Tree
		}
		return resp

	case ToolEquivalent:
		a, err := getString("a")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		b, err := getString("b")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v := n.Compare(ctx, a, b)
		return ToolResponse{Result: v, String: fmt.Sprintf("%t", v.Equivalent)}

	case ToolLaTeX:
		e, err := getString("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		l := n.SimplifiedLaTeX(ctx, e)
		return ToolResponse{LaTeX: l, String: l}

	case ToolSchema:
		return ToolResponse{String: ToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the JSON schema of every tool for agent registration.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts(ToolNormalize, "Canonical storage form of a plain-text or LaTeX expression", []string{"expr"}, map[string]string{"expr": "string"}),
		ts(ToolEquivalent, "Decide whether two expressions are mathematically equivalent", []string{"a", "b"}, map[string]string{"a": "string", "b": "string"}),
		ts(ToolLaTeX, "Render the canonical form of an expression as LaTeX", []string{"expr"}, map[string]string{"expr": "string"}),
		ts(ToolSchema, "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
