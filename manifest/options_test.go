package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_OrderedSubstrings(t *testing.T) {
	cases := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"copy", "copy_s4_c90", true},
		{"copy*c90", "copy_s4_c90", true},
		{"c90*copy", "copy_s4_c90", false},
		{"copy*s4*c90", "copy_s4_c90", true},
		{"copy*s5", "copy_s4_c90", false},
		{"*", "anything", true},
		{"", "anything", true},
		{"s4", "copy_s4_c90", true},
	}
	for _, tc := range cases {
		got := CompileFilter(tc.pattern).Matches(tc.name)
		assert.Equalf(t, tc.want, got, "pattern %q against %q", tc.pattern, tc.name)
	}
}

func TestFilter_SegmentsConsumeForward(t *testing.T) {
	// Both segments exist, but the second only before the first.
	f := CompileFilter("c90*s4")
	assert.False(t, f.Matches("copy_s4_c90"))
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("PIPEGEN_CAPS", "80,90")
	t.Setenv("PIPEGEN_NAMES", "copy*,store*")
	t.Setenv("PIPEGEN_JOBS", "2")

	o, err := OptionsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []int{80, 90}, o.Caps)
	assert.Equal(t, []string{"copy*", "store*"}, o.Names)
	assert.Equal(t, 2, o.Jobs)
	assert.Equal(t, "generated", o.Out)
	assert.Equal(t, "pipelines", o.Package)
}

func TestOptionsFromEnv_Defaults(t *testing.T) {
	o, err := OptionsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []int{90, 100}, o.Caps)
	assert.Empty(t, o.Names)
	assert.Empty(t, o.Ignore)
}
