package api

import (
	"context"
	"fmt"
	"regexp"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/upstream"
)

const (
	maxAppID       = 10_000_000
	maxBatchAppIDs = 100
)

var (
	steamID64Pattern   = regexp.MustCompile(`^7656119\d{10}$`)
	vanityNamePattern  = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)
	communityProfileRe = regexp.MustCompile(`steamcommunity\.com/profiles/(\d+)`)
	communityVanityRe  = regexp.MustCompile(`steamcommunity\.com/id/([A-Za-z0-9_]+)`)
)

// validateAppID enforces the 0 < appid <= 10_000_000 bound (spec §8).
func validateAppID(appid int64) *apierrors.ServiceError {
	if appid <= 0 || appid > maxAppID {
		return apierrors.OutOfRange("appid")
	}
	return nil
}

// validateBatchAppIDs enforces the <=100 batch size bound (spec §8) plus
// the per-appid bound on every entry.
func validateBatchAppIDs(appids []int64) *apierrors.ServiceError {
	if len(appids) == 0 {
		return apierrors.MissingParameter("appids")
	}
	if len(appids) > maxBatchAppIDs {
		return apierrors.OutOfRange("appids")
	}
	for _, appid := range appids {
		if svcErr := validateAppID(appid); svcErr != nil {
			return svcErr
		}
	}
	return nil
}

// validateRange rejects v outside [min, max], inclusive.
func validateRange(field string, v, min, max int) *apierrors.ServiceError {
	if v < min || v > max {
		return apierrors.OutOfRange(field)
	}
	return nil
}

// resolveSteamID accepts a steamid64, a vanity name, or a community profile
// URL and returns the resolved steamid64, resolving vanity names through the
// user adapter (spec §6).
func resolveSteamID(ctx context.Context, user *upstream.UserAdapter, raw string) (string, *apierrors.ServiceError) {
	candidate := extractFromCommunityURL(raw)

	if steamID64Pattern.MatchString(candidate) {
		return candidate, nil
	}
	if !vanityNamePattern.MatchString(candidate) {
		return "", apierrors.InvalidInput("steamid", "not a valid steamid64, vanity name, or community URL")
	}
	if user == nil || !user.HasAPIKey() {
		return "", apierrors.UpstreamUnavailable(fmt.Errorf("user adapter has no API key configured"))
	}

	steamID, ok, err := user.ResolveVanity(ctx, candidate)
	if err != nil {
		return "", apierrors.UpstreamUnavailable(err)
	}
	if !ok {
		return "", apierrors.NotFound("steam profile")
	}
	return steamID, nil
}

func extractFromCommunityURL(raw string) string {
	if m := communityProfileRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if m := communityVanityRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}
