package alerts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Filter keeps alerts whose type is in allowed and whose severity ranks at
// least min. Order is preserved.
func Filter(list []Alert, allowed []Type, min Severity) []Alert {
	want := make(map[Type]bool, len(allowed))
	for _, t := range allowed {
		want[t] = true
	}
	out := make([]Alert, 0, len(list))
	for _, a := range list {
		if want[a.Type] && a.Severity.Rank() >= min.Rank() {
			out = append(out, a)
		}
	}
	return out
}

// Hash returns a hex SHA-256 digest of the alert set. Each alert is encoded
// with sorted keys and the encodings are sorted, so equal sets hash equally
// regardless of order.
func Hash(list []Alert) string {
	encoded := make([]string, 0, len(list))
	for _, a := range list {
		encoded = append(encoded, canonical(a))
	}
	sort.Strings(encoded)

	sum := sha256.Sum256([]byte("[" + strings.Join(encoded, ",") + "]"))
	return hex.EncodeToString(sum[:])
}

func canonical(a Alert) string {
	// map keys are emitted in sorted order; a string map cannot fail to encode
	b, _ := json.Marshal(map[string]string{
		"type":     string(a.Type),
		"severity": string(a.Severity),
		"title":    a.Title,
		"detail":   a.Detail,
	})
	return string(b)
}
