package common

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	nodeID := cast.ToInt64(os.Getenv("GOCART_NODE_ID")) % 1024
	var err error
	snowflakeNode, err = snowflake.NewNode(nodeID)
	if err != nil {
		panic(err)
	}
}

// UUID returns a random uuid string used as an opaque resource id.
func UUID() string {
	return uuid.NewString()
}

// NextOrderNo returns a human-facing order number backed by a snowflake id,
// unique across processes as long as node ids differ.
func NextOrderNo() string {
	return fmt.Sprintf("ORD%s", snowflakeNode.Generate().String())
}

func Sha256Hash(src string) string {
	h := sha256.New()
	h.Write([]byte(src))
	return hex.EncodeToString(h.Sum(nil))
}

// RandomHex returns n random bytes hex-encoded.
func RandomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func IfEmptyStr(src string, defval string) string {
	if src == "" {
		return defval
	}
	return src
}
