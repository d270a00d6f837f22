package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}\-_.]`)

// NormalizeName chuẩn hóa persona name để dùng trong paths và object keys.
// Cùng một normalization ở mọi backend, nếu không thì save và delete sẽ
// tính ra key khác nhau cho cùng một persona.
func NormalizeName(name string) string {
	safe := strings.TrimSpace(name)
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = strings.ReplaceAll(safe, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	safe = strings.ToLower(safe)
	return unsafeChars.ReplaceAllString(safe, "_")
}

// assetHash derives the collision-resistant part of the asset identifier.
// Hashing owner+name+content means two uploads for the same user and name
// with different bytes never collide, and re-uploading identical bytes is
// idempotent.
func assetHash(ownerID int64, name string, data []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|", ownerID, NormalizeName(name))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:8]
}

// assetFilename: photo_<name>_<hash>.jpg
func assetFilename(ownerID int64, name string, data []byte) string {
	return fmt.Sprintf("photo_%s_%s.jpg", NormalizeName(name), assetHash(ownerID, name, data))
}

// bucketAssetKey: personas/<owner_id>/photo_<name>_<hash>.jpg
func bucketAssetKey(ownerID int64, name string, data []byte) string {
	return fmt.Sprintf("personas/%d/%s", ownerID, assetFilename(ownerID, name, data))
}
