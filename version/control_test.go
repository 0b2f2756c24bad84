package version

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestClock_Version(t *testing.T) {
	var useCases = []struct {
		description string
		epochBumps  int
		rollbacks   []string
		URI         string
		intrinsic   int64
		expect      string
	}{
		{
			description: "initial version",
			URI:         "file:///src/a.ts",
			intrinsic:   1,
			expect:      "0.1",
		},
		{
			description: "rollback shifts reported version",
			rollbacks:   []string{"file:///src/a.ts"},
			URI:         "file:///src/a.ts",
			intrinsic:   3,
			expect:      "0.2",
		},
		{
			description: "rollback of another file leaves version intact",
			rollbacks:   []string{"file:///src/b.ts"},
			URI:         "file:///src/a.ts",
			intrinsic:   3,
			expect:      "0.3",
		},
		{
			description: "epoch bump changes every version",
			epochBumps:  2,
			URI:         "file:///src/a.ts",
			intrinsic:   1,
			expect:      "2.1",
		},
		{
			description: "repeated rollbacks accumulate",
			rollbacks:   []string{"file:///src/a.ts", "file:///src/a.ts"},
			URI:         "file:///src/a.ts",
			intrinsic:   5,
			expect:      "0.3",
		},
	}

	for _, useCase := range useCases {
		clock := New()
		for i := 0; i < useCase.epochBumps; i++ {
			clock.BumpEpoch()
		}
		for _, URI := range useCase.rollbacks {
			clock.Rollback(URI)
		}
		actual := clock.Version(useCase.URI, useCase.intrinsic)
		assert.EqualValues(t, useCase.expect, actual, useCase.description)
	}
}

func TestClock_Forget(t *testing.T) {
	clock := New()
	clock.Rollback("file:///src/a.ts")
	assert.EqualValues(t, "0.0", clock.Version("file:///src/a.ts", 1))
	clock.Forget("file:///src/a.ts")
	assert.EqualValues(t, "0.1", clock.Version("file:///src/a.ts", 1))
}
