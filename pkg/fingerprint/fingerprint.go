// Package fingerprint computes cheap, non-cryptographic digests used to tell
// whether clipboard contents or rule files changed since the last observation.
// Equal digests are treated as "probably unchanged"; collisions are accepted.
package fingerprint

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/arthur-debert/clipfmt/pkg/formatter"
)

// Digest is an opaque fixed-size fingerprint.
type Digest uint64

// String renders the digest as hex for logs.
func (d Digest) String() string {
	return fmt.Sprintf("xxh64:%016x", uint64(d))
}

// String fingerprints a text value.
func String(s string) Digest {
	return Digest(xxhash.Sum64String(s))
}

// Bytes fingerprints raw bytes.
func Bytes(b []byte) Digest {
	return Digest(xxhash.Sum64(b))
}

// Of fingerprints an ordered list of parts. Parts are length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func Of(parts ...string) Digest {
	h := xxhash.New()
	for _, p := range parts {
		writePart(h, p)
	}
	return Digest(h.Sum64())
}

// Rules fingerprints a rule collection together with its exclusion set.
// Rule order is part of the digest.
func Rules(rules formatter.Rules, exclusions formatter.Exclusions) Digest {
	h := xxhash.New()
	for _, r := range rules {
		writePart(h, r.Original)
		writePart(h, r.Replacement)
	}
	writePart(h, "\x00exclusions")
	writePart(h, exclusions.String())
	return Digest(h.Sum64())
}

// File fingerprints the contents of a file.
func File(fs afero.Fs, path string) (Digest, error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return Digest(h.Sum64()), nil
}

// Changed reports whether two digests differ.
func Changed(prev, next Digest) bool {
	return prev != next
}

func writePart(h *xxhash.Digest, s string) {
	var n [binary.MaxVarintLen64]byte
	l := binary.PutUvarint(n[:], uint64(len(s)))
	_, _ = h.Write(n[:l])
	_, _ = h.WriteString(s)
}
