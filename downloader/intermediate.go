package downloader

import (
	"context"
	"time"

	"lanzoufetch/internal"
)

// resolveIntermediate turns the {dom, url} locator into the final download URL.
// It returns "" when no URL could be obtained; transport failures here are
// logged rather than surfaced so the caller can fall back to the locator.
func (r *Resolver) resolveIntermediate(ctx context.Context, dom, fileURL string) string {
	ctx, cancel := context.WithTimeout(ctx, r.config.SessionTimeoutDuration())
	defer cancel()

	finalURL, err := r.followIntermediate(ctx, dom, fileURL)
	if err != nil {
		internal.LogWarn("Intermediate resolution failed, falling back to locator: %v", err)
		return ""
	}
	return finalURL
}

func (r *Resolver) followIntermediate(ctx context.Context, dom, fileURL string) (string, error) {
	intermediateURL := dom + "/file/" + fileURL

	session, err := NewSession(r.client, intermediateURL)
	if err != nil {
		return "", err
	}

	page, err := session.Get(ctx, intermediateURL)
	if err != nil {
		return "", err
	}

	if m := challengeSeedPattern.FindStringSubmatch(page); m != nil {
		cookie, err := DeriveChallengeCookie(m[1])
		if err != nil {
			return "", internal.NewParseFailureError("Invalid challenge seed").WithCause(err)
		}
		if err := session.SetCookie(intermediateURL, ChallengeCookieName, cookie); err != nil {
			return "", err
		}
		internal.LogDebug("Solved cookie challenge for %s", intermediateURL)

		// Legacy flow: the challenge answer is redirected straight to the file
		location, err := session.RedirectLocation(ctx, intermediateURL)
		if err != nil {
			return "", err
		}
		if location != "" {
			return location, nil
		}

		page, err = session.Get(ctx, intermediateURL)
		if err != nil {
			return "", err
		}
	}

	fileMatch := verifyFilePattern.FindStringSubmatch(page)
	signMatch := verifySignPattern.FindStringSubmatch(page)
	if fileMatch == nil || signMatch == nil {
		internal.LogDebug("No verification block on intermediate page %s", intermediateURL)
		return "", nil
	}

	// The verification page arms a client-side timer before it accepts the request
	if err := sleepContext(ctx, r.config.VerifyDelay); err != nil {
		return "", err
	}

	body, err := session.Post(ctx, dom+"/file/ajax.php",
		map[string]string{
			"file": fileMatch[1],
			"el":   "2",
			"sign": signMatch[1],
		},
		map[string]string{
			"X-Requested-With": "XMLHttpRequest",
			"Referer":          intermediateURL,
			"Origin":           dom,
		},
	)
	if err != nil {
		return "", err
	}

	var result verifyResult
	if err := decodeProviderJSON(body, &result); err != nil {
		internal.LogDebug("Verification response is not JSON: %v", err)
		return "", nil
	}
	if result.Zt != ztSuccess || result.URL == "" {
		internal.LogDebug("Verification rejected: zt=%d inf=%s", result.Zt, result.Inf)
		return "", nil
	}

	return result.URL.String(), nil
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
