package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForMeanTest(t *testing.T) {
	assert.Equal(t, Reject, ForMeanTest(0.01, DefaultAlpha))
	assert.Equal(t, FailToReject, ForMeanTest(0.05, DefaultAlpha))
	assert.Equal(t, FailToReject, ForMeanTest(0.9, DefaultAlpha))
	assert.Equal(t, Reject, ForMeanTest(0.05, 0.10))
}

func TestForPeriodTest(t *testing.T) {
	assert.Equal(t, Confident, ForPeriodTest(0.5, DefaultAlpha))
	assert.Equal(t, NotConfident, ForPeriodTest(0.05, DefaultAlpha))
	assert.Equal(t, NotConfident, ForPeriodTest(0.001, DefaultAlpha))
}

func TestIsReject(t *testing.T) {
	assert.True(t, Reject.IsReject())
	assert.True(t, NotConfident.IsReject())
	assert.False(t, FailToReject.IsReject())
	assert.False(t, Confident.IsReject())
}
