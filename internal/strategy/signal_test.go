package strategy

import (
	"testing"

	"KWatch/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestClassify_AllBoundaries(t *testing.T) {
	tests := []struct {
		k    float64
		want model.Signal
	}{
		{0, model.SignalBuy},
		{19.99, model.SignalBuy},
		{20, model.SignalHold},
		{50, model.SignalHold},
		{66.67, model.SignalHold},
		{80, model.SignalHold},
		{80.01, model.SignalSell},
		{100, model.SignalSell},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.k), "k=%.2f", tt.k)
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "green", Describe(model.SignalBuy).Color)
	assert.Equal(t, "red", Describe(model.SignalSell).Color)
	assert.Equal(t, "orange", Describe(model.SignalHold).Color)
	assert.Equal(t, Actions[model.SignalHold], Describe("UNKNOWN"))
}

func TestEvaluate(t *testing.T) {
	r := &model.Reading{Symbol: "0050.TW", K: 85, Available: true}
	Evaluate(r)
	assert.Equal(t, model.SignalSell, r.Signal)

	failed := &model.Reading{Symbol: "2002.TW", K: 10, Signal: model.SignalBuy}
	Evaluate(failed)
	assert.Empty(t, failed.Signal)
}
