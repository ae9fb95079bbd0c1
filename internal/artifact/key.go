package artifact

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ContentHash returns the first 8 hex characters of the MD5 digest of
// the artifact bytes. MD5 is used for addressing, not security; the key
// space only needs to separate revisions of one order line's artwork.
func ContentHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])[:8]
}

// Key derives the storage key for a rendered artifact:
// orders/order-<orderId>-item-<lineItemId>/<hash>/print.png
func Key(orderID, lineItemID int64, contentHash string) string {
	return fmt.Sprintf("orders/order-%d-item-%d/%s/print.png", orderID, lineItemID, contentHash)
}
