package detect

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tendant/sortbin/pkg/recycling"
)

// ParseResult validates a prediction body and decodes it.
//
// The body must be a JSON object. object, mainCategory and subCategory must
// be strings when present, and at least one category must be set so the
// result can be navigated to.
func ParseResult(body []byte) (*recycling.DetectionResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrInvalidResult)
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: body is not an object", ErrInvalidResult)
	}

	fields := map[string]string{}
	for _, name := range []string{"object", "mainCategory", "subCategory"} {
		v := doc.Get(name)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if v.Type != gjson.String {
			return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidResult, name)
		}
		fields[name] = v.String()
	}

	result := &recycling.DetectionResult{
		Object:       fields["object"],
		MainCategory: strings.TrimSpace(fields["mainCategory"]),
		SubCategory:  strings.TrimSpace(fields["subCategory"]),
	}
	if result.MainCategory == "" && result.SubCategory == "" {
		return nil, fmt.Errorf("%w: no category", ErrInvalidResult)
	}

	return result, nil
}
