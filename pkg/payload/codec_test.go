package payload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	snap := &Snapshot{
		Title:          "Quarterly outlook published",
		Summary:        "A new analysis is available",
		ContentID:      42,
		ContentVersion: 3,
		Locales: map[string]Titles{
			"de": {Title: "Quartalsausblick", Summary: "Neue Analyse verfügbar"},
		},
	}

	raw, err := Encode(snap)
	require.NoError(t, err)

	got, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, snap, got)
}

func TestEncodeNil(t *testing.T) {
	_, err := Encode(nil)
	require.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode("")
	require.NoError(t, err)
	require.Equal(t, &Snapshot{}, got)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode("{not json")
	require.Error(t, err)
}
