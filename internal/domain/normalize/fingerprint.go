package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the content of a raw record. Key order does not
// matter; any change to a value produces a different fingerprint.
func Fingerprint(raw Raw) string {
	// encoding/json writes map keys sorted.
	b, err := json.Marshal(raw)
	if err != nil {
		// Unencodable values (NaN, channels); fmt also sorts map keys.
		b = []byte(fmt.Sprintf("%v", map[string]any(raw)))
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}

// Key identifies a player-season: the unit that replaces earlier versions
// of the same record.
func Key(raw Raw) string {
	return strconv.FormatInt(ID(raw), 10) + "|" + Season(raw)
}
