package postageapp

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// UIDLength is the length of a generated UID.
const UIDLength = 40

var uidCounter atomic.Uint64

// NewUID returns a 40 character lowercase hex token for method. The SHA-1
// input combines a random UUID, the method, the clock and a process-wide
// counter, so two calls never share a UID in practice.
func NewUID(method string) string {
	h := sha1.New()
	h.Write([]byte(uuid.NewString()))
	h.Write([]byte(method))
	h.Write(strconv.AppendInt(nil, time.Now().UnixNano(), 10))
	h.Write(strconv.AppendUint(nil, uidCounter.Add(1), 10))
	return hex.EncodeToString(h.Sum(nil))
}
