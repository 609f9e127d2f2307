package id

import (
	"crypto/rand"
	"encoding/hex"
	"hash/fnv"
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.jetify.com/typeid/v2"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

const voucherCodePrefix = "VC-"

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// node id derived from hostname hash (10 bits) so codes stay unique across instances
func initNode() {
	host, _ := os.Hostname()
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	n, err := snowflake.NewNode(int64(h.Sum32()) & 0x3FF)
	if err != nil {
		n, _ = snowflake.NewNode(1)
	}
	node = n
}

// NewVoucherCode returns a short, unique, human-presentable voucher code,
// e.g. "VC-YB8T3KQZ1XMCE". z-base-32 has no case collisions, so upper-casing is safe.
func NewVoucherCode() string {
	nodeOnce.Do(initNode)
	return voucherCodePrefix + strings.ToUpper(node.Generate().Base32())
}

// NewEventID returns a K-sortable, prefix-qualified id like "evt_01h2xcejqtf2nbrexx3vqjhp41".
func NewEventID() string {
	tid, err := typeid.Generate("evt")
	if err != nil {
		return "evt_" + NewID32()
	}
	return tid.String()
}
