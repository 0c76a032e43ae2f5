package lastfm

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// signature generates the md5 request signature the API requires:
// parameter key+value pairs concatenated in alphabetical key order,
// followed by the API secret.
func signature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var plain strings.Builder
	for _, k := range keys {
		plain.WriteString(k)
		plain.WriteString(params[k])
	}
	plain.WriteString(secret)

	sum := md5.Sum([]byte(plain.String()))
	return hex.EncodeToString(sum[:])
}
