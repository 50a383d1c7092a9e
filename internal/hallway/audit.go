package hallway

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// CanonicalJSON serializes with stable key ordering and no whitespace
// variability so hashes are deterministic. encoding/json already sorts map
// keys and emits compact output.
func CanonicalJSON(obj map[string]any) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SHA256Hex returns the hex-encoded SHA-256 of payload.
func SHA256Hex(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// ComputeStepHash hashes a room's legacy output as "sha256:<hex>". An
// unserializable payload hashes to a fixed sentinel rather than erroring;
// the executor flags malformed outputs separately.
func ComputeStepHash(legacyOutput map[string]any) string {
	canonical, err := CanonicalJSON(legacyOutput)
	if err != nil {
		return "sha256:" + SHA256Hex("unserializable")
	}
	return "sha256:" + SHA256Hex(canonical)
}

// BuildAuditChain extracts the ordered step hashes from envelopes.
func BuildAuditChain(steps []Envelope) []string {
	chain := make([]string, 0, len(steps))
	for _, s := range steps {
		chain = append(chain, s.Audit.StepHash)
	}
	return chain
}
