package llmprovider

import (
	"errors"

	"github.com/tidwall/gjson"
)

var (
	errInvalidJSON     = errors.New("not valid JSON")
	errForbiddenKey    = errors.New("object contains forbidden key __proto__")
	errForbiddenCtorFn = errors.New("object contains forbidden constructor.prototype")
)

// SecureParseJSON parses model-produced JSON text into plain Go values
// (map[string]any, []any, string, float64, bool, nil).
//
// The text must be strict JSON. Objects that carry a "__proto__" key, or a
// "constructor" object with a "prototype" key, are rejected at any depth so
// that arguments can be handed to runtimes that treat those keys specially.
func SecureParseJSON(text string) (any, error) {
	if !gjson.Valid(text) {
		return nil, errInvalidJSON
	}
	result := gjson.Parse(text)
	if err := checkForbiddenKeys(result); err != nil {
		return nil, err
	}
	return result.Value(), nil
}

func checkForbiddenKeys(v gjson.Result) error {
	var err error
	switch {
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			switch key.String() {
			case "__proto__":
				err = errForbiddenKey
				return false
			case "constructor":
				if value.IsObject() && value.Get("prototype").Exists() {
					err = errForbiddenCtorFn
					return false
				}
			}
			err = checkForbiddenKeys(value)
			return err == nil
		})
	case v.IsArray():
		v.ForEach(func(_, value gjson.Result) bool {
			err = checkForbiddenKeys(value)
			return err == nil
		})
	}
	return err
}

// ParseToolArguments parses the argument text of a tool call. Failures are
// reported as *OutputParseError. Empty text is treated as an empty object.
func ParseToolArguments(toolCallID, toolName, text string) (any, error) {
	if text == "" {
		return map[string]any{}, nil
	}
	v, err := SecureParseJSON(text)
	if err != nil {
		return nil, &OutputParseError{
			ToolCallID: toolCallID,
			ToolName:   toolName,
			Text:       text,
			Err:        err,
		}
	}
	return v, nil
}
