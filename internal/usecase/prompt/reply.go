package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/oklog/ulid/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"canvas-ai/internal/domain"
)

// envelopeSchema is the shape every model reply must have.
const envelopeSchema = `{
	"type": "object",
	"required": ["canvas_objects"],
	"properties": {
		"canvas_objects": {
			"type": "array",
			"items": {"type": "object"}
		}
	}
}`

func compileEnvelope() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("envelope.json", strings.NewReader(envelopeSchema)); err != nil {
		return nil, fmt.Errorf("add envelope schema: %w", err)
	}
	schema, err := compiler.Compile("envelope.json")
	if err != nil {
		return nil, fmt.Errorf("compile envelope schema: %w", err)
	}
	return schema, nil
}

// codeFenceRe matches markdown code fences wrapping JSON.
var codeFenceRe = regexp.MustCompile("(?si)^```(?:json)?\\s*(.*?)\\s*```$")

// stripCodeFences removes a markdown code fence if the model wrapped its output.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return s
}

// parseReply turns the model's text into the list of raw canvas objects.
// Any failure is reported as domain.ErrInvalidModelOutput.
func parseReply(schema *jsonschema.Schema, text string) ([]json.RawMessage, error) {
	cleaned := stripCodeFences(text)

	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidModelOutput, err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidModelOutput, err)
	}

	var env domain.PromptResponse
	if err := json.Unmarshal([]byte(cleaned), &env); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidModelOutput, err)
	}
	if env.CanvasObjects == nil {
		env.CanvasObjects = []json.RawMessage{}
	}
	return env.CanvasObjects, nil
}

// idSource hands out ULIDs that increase within one reply.
type idSource struct {
	entropy io.Reader
	now     func() time.Time
}

func newIDSource(now func() time.Time) *idSource {
	t := now()
	return &idSource{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0),
		now:     now,
	}
}

func (s *idSource) next() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func hasID(raw []byte) bool {
	v, t, _, err := jsonparser.Get(raw, "id")
	if err != nil {
		return false
	}
	switch t {
	case jsonparser.String:
		return len(v) > 0
	case jsonparser.Number:
		return true
	default:
		return false
	}
}

// assignIDs gives every object without an "id" a fresh one. Other fields are
// left byte-for-byte as the model wrote them.
func assignIDs(objects []json.RawMessage, ids *idSource) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(objects))
	for i, raw := range objects {
		if hasID(raw) {
			out[i] = raw
			continue
		}
		quoted, _ := json.Marshal(ids.next())
		updated, err := jsonparser.Set(bytes.Clone(raw), quoted, "id")
		if err != nil {
			return nil, fmt.Errorf("%w: object %d: %w", domain.ErrInvalidModelOutput, i, err)
		}
		out[i] = updated
	}
	return out, nil
}
