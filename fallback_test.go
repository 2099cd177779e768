package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopAfter(t *testing.T) {
	tests := []struct {
		outcome Outcome
		stop    bool
	}{
		{OutcomeDeliverable, true},
		{OutcomeRejected, true},
		{OutcomeUnreachable, false},
		{OutcomeUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			assert.Equal(t, tt.stop, stopAfter(tt.outcome))
		})
	}
}
