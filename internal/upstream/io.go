package upstream

import "io"

// maxResponseBytes bounds how much of an upstream response body adapters
// will buffer, guarding against a misbehaving or malicious upstream.
const maxResponseBytes = 5 << 20

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxResponseBytes))
}
