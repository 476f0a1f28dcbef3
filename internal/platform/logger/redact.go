package logger

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var secretKeyFragments = []string{"token", "authorization", "secret", "password", "email"}

type redactor struct {
	salt string
}

// apply rewrites sensitive values in a key/value list. A nil redactor
// returns kv unchanged.
func (r *redactor) apply(kv []interface{}) []interface{} {
	if r == nil || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		out[i+1] = r.value(strings.ToLower(strings.TrimSpace(key)), out[i+1])
	}
	return out
}

func (r *redactor) value(key string, v interface{}) interface{} {
	if key == "user_id" || strings.HasSuffix(key, "_user_id") {
		return r.hash(v)
	}
	for _, frag := range secretKeyFragments {
		if strings.Contains(key, frag) {
			return "[REDACTED]"
		}
	}
	return v
}

func (r *redactor) hash(v interface{}) string {
	raw := strings.TrimSpace(fmt.Sprint(v))
	if v == nil || raw == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}
