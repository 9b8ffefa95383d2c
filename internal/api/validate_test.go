package api

import (
	"context"
	"testing"
)

func TestValidateAppID_Bounds(t *testing.T) {
	cases := []struct {
		name  string
		appid int64
		valid bool
	}{
		{"zero rejected", 0, false},
		{"negative rejected", -1, false},
		{"one accepted", 1, true},
		{"max accepted", maxAppID, true},
		{"over max rejected", maxAppID + 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateAppID(tc.appid)
			if tc.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatalf("expected rejection, got nil")
			}
		})
	}
}

func TestValidateBatchAppIDs_BoundaryAt100(t *testing.T) {
	ok := make([]int64, maxBatchAppIDs)
	for i := range ok {
		ok[i] = int64(i + 1)
	}
	if err := validateBatchAppIDs(ok); err != nil {
		t.Fatalf("100 appids should be accepted, got %v", err)
	}

	tooMany := append(ok, 99999)
	if err := validateBatchAppIDs(tooMany); err == nil {
		t.Fatal("101 appids should be rejected")
	}

	if err := validateBatchAppIDs(nil); err == nil {
		t.Fatal("empty batch should be rejected")
	}
}

func TestValidateRange(t *testing.T) {
	if err := validateRange("limit", 50, 1, 50); err != nil {
		t.Fatalf("50 within [1,50] should be valid, got %v", err)
	}
	if err := validateRange("limit", 51, 1, 50); err == nil {
		t.Fatal("51 should be rejected")
	}
	if err := validateRange("min_discount", -1, 0, 100); err == nil {
		t.Fatal("-1 should be rejected")
	}
}

func TestResolveSteamID_AcceptsSteamID64(t *testing.T) {
	const id = "76561198000000000"
	got, err := resolveSteamID(context.Background(), nil, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id {
		t.Fatalf("got %q, want %q", got, id)
	}
}

func TestResolveSteamID_AcceptsCommunityProfileURL(t *testing.T) {
	got, err := resolveSteamID(context.Background(), nil, "https://steamcommunity.com/profiles/76561198000000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "76561198000000000" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveSteamID_VanityWithoutAPIKeyFails(t *testing.T) {
	_, err := resolveSteamID(context.Background(), nil, "some_vanity_name")
	if err == nil {
		t.Fatal("expected failure: vanity resolution requires a user adapter with an API key")
	}
}

func TestResolveSteamID_RejectsGarbage(t *testing.T) {
	_, err := resolveSteamID(context.Background(), nil, "!!not valid!!")
	if err == nil {
		t.Fatal("expected rejection")
	}
}
