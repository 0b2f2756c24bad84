package content

import (
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"hash/fnv"
)

//Key returns the store file name for a URL; the fnv and md5 pair keeps
//collisions practically impossible while staying filesystem safe.
func Key(URL string) string {
	return fmt.Sprintf("%v_%v.json", fnvHash(URL), md5Hash(URL))
}

func md5Hash(key string) string {
	h := md5.New()
	_, _ = h.Write([]byte(key))
	data := h.Sum(nil)
	return base64.RawURLEncoding.EncodeToString(data)
}

func fnvHash(key string) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(key))
	data := h.Sum(nil)
	keyNumeric := int64(0)
	shift := 0
	for i := 0; i < 8 && i < len(data); i++ {
		v := int64(data[len(data)-1-i])
		if shift == 0 {
			keyNumeric |= v
		} else {
			keyNumeric |= v << uint64(shift)
		}
		shift += 8
	}
	if keyNumeric < 0 {
		keyNumeric *= -1
	}
	return int(keyNumeric)
}
