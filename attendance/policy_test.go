package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopcrew.com/shopcrew/core"
	"shopcrew.com/shopcrew/utils"
)

func TestEvaluateAdmission(t *testing.T) {
	shop := &core.Shop{ShopId: 1, AdmissionRadius: 50}

	tests := []struct {
		name     string
		channel  Channel
		distance *float64
		expected Decision
	}{
		{
			name:     "Tag inside radius",
			channel:  ChannelTag,
			distance: utils.Ptr(30.0),
			expected: Allow,
		},
		{
			name:     "Tag on the boundary",
			channel:  ChannelTag,
			distance: utils.Ptr(50.0),
			expected: Allow,
		},
		{
			name:     "Tag beyond radius",
			channel:  ChannelTag,
			distance: utils.Ptr(51.0),
			expected: Deny,
		},
		{
			name:     "Code beyond radius",
			channel:  ChannelCode,
			distance: utils.Ptr(200.0),
			expected: Deny,
		},
		{
			name:     "Terminal beyond radius",
			channel:  ChannelTerminal,
			distance: utils.Ptr(80.0),
			expected: Deny,
		},
		{
			name:     "Terminal without a fix degrades to allow",
			channel:  ChannelTerminal,
			distance: nil,
			expected: Allow,
		},
		{
			name:     "GPS near the shop",
			channel:  ChannelGPS,
			distance: utils.Ptr(40.0),
			expected: Allow,
		},
		{
			name:     "GPS at the review threshold",
			channel:  ChannelGPS,
			distance: utils.Ptr(100.0),
			expected: Allow,
		},
		{
			name:     "GPS beyond review threshold is flagged, never denied",
			channel:  ChannelGPS,
			distance: utils.Ptr(5000.0),
			expected: FlagForReview,
		},
		{
			name:     "Unknown channel denies",
			channel:  Channel("carrier-pigeon"),
			distance: utils.Ptr(1.0),
			expected: Deny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EvaluateAdmission(tt.channel, tt.distance, shop))
		})
	}
}

func TestEvaluateAdmissionDefaultRadius(t *testing.T) {
	// shop with no configured radius falls back to 50 m
	shop := &core.Shop{ShopId: 2}

	assert.Equal(t, Allow, EvaluateAdmission(ChannelTag, utils.Ptr(49.0), shop))
	assert.Equal(t, Deny, EvaluateAdmission(ChannelTag, utils.Ptr(60.0), shop))
}

func TestGPSNeverDenies(t *testing.T) {
	shop := &core.Shop{ShopId: 3, AdmissionRadius: 50}

	for _, distance := range []float64{0, 99, 101, 9999, 250000} {
		decision := EvaluateAdmission(ChannelGPS, utils.Ptr(distance), shop)
		assert.NotEqual(t, Deny, decision, "GPS denied at %.0f m", distance)
	}
}
