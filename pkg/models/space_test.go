package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWikiSpaceValidateRequiresDisplayNameAndRoute(t *testing.T) {
	cases := []struct {
		name  string
		space WikiSpace
		valid bool
	}{
		{"both set", WikiSpace{DisplayName: "Engineering", Route: "/eng"}, true},
		{"missing display name", WikiSpace{Route: "/eng"}, false},
		{"missing route", WikiSpace{DisplayName: "Engineering"}, false},
		{"both missing", WikiSpace{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.space.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
