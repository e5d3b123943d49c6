package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/iteebz/spacebrr-api/internal/errors"
)

// SignatureTolerance bounds how old a signed webhook timestamp may be.
// Stripe recommends rejecting anything outside five minutes to limit
// replay.
const SignatureTolerance = 5 * time.Minute

// VerifySignature checks a Stripe-Signature header against the raw payload.
// The header carries `t=<unix>,v1=<hex hmac>` pairs; the v1 signature is
// HMAC-SHA256 over "<t>.<payload>" keyed with the endpoint secret. Any
// failure, malformed header included, is ErrInvalidSignature.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	var timestamp string
	var candidates []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			candidates = append(candidates, kv[1])
		}
	}

	if timestamp == "" || len(candidates) == 0 {
		return apierrors.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return apierrors.ErrInvalidSignature
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > SignatureTolerance || age < -SignatureTolerance {
		return apierrors.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		sig, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return apierrors.ErrInvalidSignature
}

// SignPayload produces a Stripe-Signature header value for the payload.
// Used by tests and local tooling.
func SignPayload(payload []byte, secret string, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + timestamp + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
