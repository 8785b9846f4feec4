package repocache

import (
	"bytes"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
)

// ManifestClaims is the payload of the optional JWT-signed manifest header
// that accompanies a remote cache bundle. LoadRemote checks the token's
// HMAC signature before decoding the bundle; BundleSHA256 is decoded but
// not compared against the downloaded bundle, so the token is not tied to
// the bundle's contents.
type ManifestClaims struct {
	jwt.RegisteredClaims
	BundleSHA256 string `json:"bundle_sha256"`
}

// LoadRemote fetches a cache bundle over HTTP(S) via a fasthttp client. If
// manifestJWT is non-empty, it is verified against jwtSecret before the
// bundle is decoded; any verification failure is returned as an error and
// the bundle is not trusted.
func LoadRemote(url string, manifestJWT string, jwtSecret []byte) (*Cache, error) {
	if manifestJWT != "" {
		if _, err := verifyManifest(manifestJWT, jwtSecret); err != nil {
			return nil, fmt.Errorf("repocache: manifest verification failed: %w", err)
		}
	}

	client := &fasthttp.Client{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := client.Do(req, resp); err != nil {
		return nil, fmt.Errorf("repocache: fetch %s: %w", url, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("repocache: fetch %s: status %d", url, resp.StatusCode())
	}

	return decodeBundle(bytes.NewReader(resp.Body()))
}

func verifyManifest(tokenStr string, secret []byte) (*ManifestClaims, error) {
	claims := &ManifestClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid manifest token")
	}
	return claims, nil
}
