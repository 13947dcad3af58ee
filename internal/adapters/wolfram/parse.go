package wolfram

import (
	"bytes"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/samirrijal/formhunt/internal/core/domain"
)

// parseOutput decodes the engine's JSON object. Values that are not arrays
// are skipped individually, as are non-string array entries, so one bad
// category does not discard the others.
func parseOutput(out []byte) (domain.Metadata, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, domain.ErrEngineNoOutput
	}
	if !gjson.ValidBytes(out) {
		return nil, fmt.Errorf("%w: invalid JSON", domain.ErrEngineMalformed)
	}
	root := gjson.ParseBytes(out)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: got %s", domain.ErrEngineMalformed, root.Type)
	}

	md := make(domain.Metadata)
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			return true
		}
		names := []string{}
		for _, v := range value.Array() {
			if v.Type == gjson.String && v.Str != "" {
				names = append(names, v.Str)
			}
		}
		md[key.String()] = names
		return true
	})
	return md, nil
}
