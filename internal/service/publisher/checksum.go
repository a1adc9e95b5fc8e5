package publisher

import (
	"context"
	"crypto"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	domain "github.com/foundriesio/hawkbit-publish/internal/domain/hawkbit"
	"github.com/foundriesio/hawkbit-publish/internal/logger"

	// Register the digests hawkBit reports for artifacts.
	_ "crypto/md5"  //nolint:gosec // hawkBit still reports MD5, it is compared, not trusted alone.
	_ "crypto/sha1" //nolint:gosec // Same for SHA-1.
	_ "crypto/sha256"
)

// verifyOrder lists digests from strongest to weakest; the first one the
// server reported is compared.
//
//nolint:gochecknoglobals // Fixed preference order.
var verifyOrder = []crypto.Hash{crypto.SHA256, crypto.SHA1, crypto.MD5}

// digests computes every artifact hash in a single pass over the file.
type digests struct {
	hashers map[crypto.Hash]hash.Hash
}

func newDigests() *digests {
	d := &digests{
		hashers: make(map[crypto.Hash]hash.Hash, len(verifyOrder)),
	}

	for _, h := range verifyOrder {
		d.hashers[h] = h.New()
	}

	return d
}

// writer feeds every hasher at once.
func (d *digests) writer() io.Writer {
	writers := make([]io.Writer, 0, len(d.hashers))
	for _, h := range d.hashers {
		writers = append(writers, h)
	}

	return io.MultiWriter(writers...)
}

// sum returns the hex digest for h.
func (d *digests) sum(h crypto.Hash) string {
	return hex.EncodeToString(d.hashers[h].Sum(nil))
}

// verify compares the strongest digest the server reported with the local one.
func (d *digests) verify(ctx context.Context, remote domain.Hashes) error {
	reported := map[crypto.Hash]string{
		crypto.SHA256: remote.SHA256,
		crypto.SHA1:   remote.SHA1,
		crypto.MD5:    remote.MD5,
	}

	for _, h := range verifyOrder {
		want := reported[h]
		if want == "" {
			continue
		}

		if got := d.sum(h); !strings.EqualFold(got, want) {
			return fmt.Errorf("%s local %s, server %s: %w", h, got, want, ErrChecksumMismatch)
		}

		logger.DebugKV(ctx, "Verified artifact checksum", "hash", h.String())

		return nil
	}

	logger.WarnKV(ctx, "Server reported no artifact hashes, skipping verification")

	return nil
}
