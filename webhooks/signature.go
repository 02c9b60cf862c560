package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-messenger/core"
)

type SignatureStatus string

const (
	SignatureVerified      SignatureStatus = "verified"
	SignatureRejected      SignatureStatus = "rejected"
	SignatureMissingHeader SignatureStatus = "missing_header"
	SignatureMissingSecret SignatureStatus = "missing_secret"
	SignatureNotConfigured SignatureStatus = "not_configured"
)

// SignatureVerifier checks the hex HMAC-SHA256 of the raw body against the
// signature header. Verification is soft: it only rejects when both a secret
// and a header are present and they disagree. A lone secret or a lone header
// is logged and let through.
type SignatureVerifier struct {
	Header string
	Secret string
	Logger core.Logger
}

func NewSignatureVerifier(cfg core.Config, logger core.Logger) SignatureVerifier {
	header := strings.TrimSpace(cfg.Shortcut.SignatureHeader)
	if header == "" {
		header = core.DefaultSignatureHeader
	}
	return SignatureVerifier{
		Header: header,
		Secret: strings.TrimSpace(cfg.Shortcut.Secret),
		Logger: logger,
	}
}

func (v SignatureVerifier) Check(ctx context.Context, req core.InboundRequest) (SignatureStatus, error) {
	headerName := strings.TrimSpace(v.Header)
	if headerName == "" {
		headerName = core.DefaultSignatureHeader
	}
	signature := headerValue(req.Headers, headerName)
	secret := strings.TrimSpace(v.Secret)
	logger := glog.Ensure(v.Logger)
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}

	switch {
	case secret == "" && signature == "":
		return SignatureNotConfigured, nil
	case secret == "":
		logger.Warn("webhook signature received but no secret is configured; skipping verification", "header", headerName)
		return SignatureMissingSecret, nil
	case signature == "":
		logger.Warn("webhook signature header missing; skipping verification", "header", headerName)
		return SignatureMissingHeader, nil
	}

	if !SignatureMatches(secret, req.Body, signature) {
		return SignatureRejected, signatureError("webhooks: signature verification failed")
	}
	return SignatureVerified, nil
}

// Sign returns the hex encoded HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func SignatureMatches(secret string, body []byte, signature string) bool {
	decoded, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return subtle.ConstantTimeCompare(decoded, mac.Sum(nil)) == 1
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
