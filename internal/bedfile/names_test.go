package bedfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterminePrimerNameVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		primerName string
		want       PrimerNameVersion
	}{
		// v2 names carry an explicit primer index
		{"v2 basic", "artic-nCoV_1_LEFT_0", NameV2},
		{"v2 large numbers", "artic-nCoV_100_RIGHT_99", NameV2},
		{"v2 right", "marv-2023_1_RIGHT_2", NameV2},
		{"v2 numeric prefix", "2024-scheme_12_LEFT_3", NameV2},

		// v1 names have no index, optionally an alt suffix
		{"v1 basic", "artic-nCoV_1_LEFT", NameV1},
		{"v1 right", "marv-2023_100_RIGHT", NameV1},
		{"v1 lower alt", "artic-nCoV_1_LEFT_alt", NameV1},
		{"v1 upper alt", "artic-nCoV_1_LEFT_ALT", NameV1},
		{"v1 numbered alt", "artic-nCoV_1_RIGHT_alt2", NameV1},
		{"v1 numbered upper alt", "artic-nCoV_1_RIGHT_ALT3", NameV1},

		// anything else is invalid
		{"empty", "", NameInvalid},
		{"illegal prefix char", "artic*nCoV_100_LEFT_99", NameInvalid},
		{"underscore in prefix", "artic_nCoV_100_LEFT", NameInvalid},
		{"lowercase direction", "artic-nCoV_1_left", NameInvalid},
		{"missing direction", "artic-nCoV_1", NameInvalid},
		{"alt after index", "marv-2023_1_RIGHT_2_alt", NameInvalid},
		{"index after alt", "marv-2023_1_RIGHT_alt_2", NameInvalid},
		{"trailing underscore", "artic-nCoV_1_LEFT_", NameInvalid},
		{"space", "artic-nCoV 1 LEFT", NameInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DeterminePrimerNameVersion(tt.primerName))
		})
	}
}

func TestPrimerNameVersionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "v1", NameV1.String())
	assert.Equal(t, "v2", NameV2.String())
	assert.Equal(t, "invalid", NameInvalid.String())
}

func TestParsePrimerName(t *testing.T) {
	t.Parallel()

	t.Run("v2", func(t *testing.T) {
		t.Parallel()
		pn, err := ParsePrimerName("artic-nCoV_12_LEFT_3")
		require.NoError(t, err)
		assert.Equal(t, "artic-nCoV", pn.Prefix)
		assert.Equal(t, 12, pn.AmpliconNumber)
		assert.Equal(t, DirectionLeft, pn.Direction)
		assert.Equal(t, 3, pn.Index)
		assert.Equal(t, NameV2, pn.Version)
		assert.False(t, pn.IsAlt())
		assert.Equal(t, "artic-nCoV_12_LEFT_3", pn.String())
	})

	t.Run("v1 plain", func(t *testing.T) {
		t.Parallel()
		pn, err := ParsePrimerName("marv-2023_7_RIGHT")
		require.NoError(t, err)
		assert.Equal(t, "marv-2023", pn.Prefix)
		assert.Equal(t, 7, pn.AmpliconNumber)
		assert.Equal(t, DirectionRight, pn.Direction)
		assert.Equal(t, -1, pn.Index)
		assert.Equal(t, NameV1, pn.Version)
		assert.False(t, pn.IsAlt())
		assert.Equal(t, "marv-2023_7_RIGHT", pn.String())
	})

	t.Run("v1 alt", func(t *testing.T) {
		t.Parallel()
		pn, err := ParsePrimerName("marv-2023_7_RIGHT_alt2")
		require.NoError(t, err)
		assert.Equal(t, "alt2", pn.AltTag)
		assert.True(t, pn.IsAlt())
		assert.Equal(t, NameV1, pn.Version)
		assert.Equal(t, "marv-2023_7_RIGHT_alt2", pn.String())
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		pn, err := ParsePrimerName("artic*nCoV_100_LEFT_99")
		require.Error(t, err)
		assert.Nil(t, pn)
		assert.Contains(t, err.Error(), "invalid primername")
	})
}

func TestConvertV1NameToV2(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		primerName string
		want       string
		wantErr    bool
	}{
		{"plain v1 left", "artic-nCoV_1_LEFT", "artic-nCoV_1_LEFT_0", false},
		{"plain v1 right", "marv-2023_100_RIGHT", "marv-2023_100_RIGHT_0", false},
		{"alt refused", "artic-nCoV_1_LEFT_alt", "", true},
		{"already v2 refused", "artic-nCoV_1_LEFT_0", "", true},
		{"invalid refused", "not a name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ConvertV1NameToV2(tt.primerName)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
