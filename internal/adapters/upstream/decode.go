package upstream

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/scout/internal/domain/coerce"
	"github.com/okian/scout/internal/domain/normalize"
)

// MaxPages bounds the page count a service may announce.
const MaxPages = 10_000

// decodeRecords reads either a bare JSON array of records or an
// {"items": [...], "pages": N} envelope. Numbers stay json.Number so the
// normalizer sees them exactly as sent. pages is 1 for a bare array.
func decodeRecords(r io.Reader) ([]normalize.Raw, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	pages := 1
	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["items"].([]any)
		if !ok && v["items"] != nil {
			return nil, 0, fmt.Errorf("%w: items is not a list", ErrMalformed)
		}
		items = list
		if raw, ok := v["pages"]; ok && raw != nil {
			n := coerce.Float(raw, -1)
			if n < 1 || n > MaxPages {
				return nil, 0, fmt.Errorf("%w: pages %v out of range [1, %d]", ErrMalformed, raw, MaxPages)
			}
			pages = coerce.Int(n, 1)
		}
	default:
		return nil, 0, fmt.Errorf("%w: expected a list or an object", ErrMalformed)
	}

	out := make([]normalize.Raw, 0, len(items))
	for _, item := range items {
		// non-object entries cannot be player records
		if m, ok := item.(map[string]any); ok {
			out = append(out, normalize.Raw(m))
		}
	}
	return out, pages, nil
}
