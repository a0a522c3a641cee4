package strategy

import (
	"math"
	"testing"
	"time"

	"StockRadar/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func snap(close, ma, rsi float64) *model.IndicatorSnapshot {
	return &model.IndicatorSnapshot{Symbol: "2330.TW", Date: asOf, Close: close, MA200: ma, RSI: rsi}
}

func TestClassify_AllBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		close float64
		ma    float64
		rsi   float64
		buy   model.Signal
		sell  model.Signal
	}{
		{"oversold uptrend", 110, 100, 25, model.SignalStrongBuy, model.SignalNone},
		{"rsi exactly 30 is watch", 110, 100, 30, model.SignalWatch, model.SignalNone},
		{"watch band", 110, 100, 35, model.SignalWatch, model.SignalNone},
		{"rsi exactly 40 is nothing", 110, 100, 40, model.SignalNone, model.SignalNone},
		{"neutral", 110, 100, 55, model.SignalNone, model.SignalNone},
		{"rsi exactly 70 is nothing", 110, 100, 70, model.SignalNone, model.SignalNone},
		{"overheated", 110, 100, 75, model.SignalNone, model.SignalOverheated},
		{"overheated below ma", 90, 100, 80, model.SignalNone, model.SignalOverheated},
		{"oversold below ma", 90, 100, 20, model.SignalNone, model.SignalNone},
		{"close equals ma", 100, 100, 20, model.SignalNone, model.SignalNone},
	}
	rules := DefaultRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(snap(tt.close, tt.ma, tt.rsi), "TSMC", rules)
			if tt.buy == model.SignalNone {
				assert.Nil(t, v.Buy)
			} else {
				require.NotNil(t, v.Buy)
				assert.Equal(t, tt.buy, v.Buy.Signal)
			}
			if tt.sell == model.SignalNone {
				assert.Nil(t, v.Sell)
			} else {
				require.NotNil(t, v.Sell)
				assert.Equal(t, tt.sell, v.Sell.Signal)
			}
		})
	}
}

func TestClassify_BuyAndSellTogether(t *testing.T) {
	rules := Rules{BuyRSI: 30, WatchRSI: 80, SellRSI: 70}
	v := Classify(snap(110, 100, 75), "", rules)
	require.NotNil(t, v.Buy)
	require.NotNil(t, v.Sell)
	assert.Equal(t, []model.Signal{model.SignalWatch, model.SignalOverheated}, v.Signals())
}

func TestClassify_OutputSetInvariant(t *testing.T) {
	allowed := map[string]bool{
		"":                      true,
		"STRONG_BUY":            true,
		"WATCH":                 true,
		"OVERHEATED":            true,
		"STRONG_BUY+OVERHEATED": true,
		"WATCH+OVERHEATED":      true,
	}
	rules := DefaultRules()
	for close := 80.0; close <= 120; close += 5 {
		for rsi := 0.0; rsi <= 100; rsi += 2.5 {
			v := Classify(snap(close, 100, rsi), "", rules)
			key := ""
			for i, s := range v.Signals() {
				if i > 0 {
					key += "+"
				}
				key += s.String()
			}
			assert.True(t, allowed[key], "close=%.1f rsi=%.1f gave %q", close, rsi, key)
		}
	}
}

func TestClassify_Deviation(t *testing.T) {
	v := Classify(snap(123.45, 98.76, 28), "TSMC", DefaultRules())
	require.NotNil(t, v.Buy)
	want := (123.45 - 98.76) / 98.76 * 100
	assert.InDelta(t, want, v.Buy.Deviation, 1e-9)
	assert.Equal(t, "TSMC", v.Buy.Name)
	assert.Equal(t, asOf, v.Buy.Date)

	sell := Classify(snap(150, 100, 90), "", DefaultRules())
	require.NotNil(t, sell.Sell)
	assert.Zero(t, sell.Sell.Deviation)
}

func TestClassify_NonFiniteRSIExcluded(t *testing.T) {
	for _, rsi := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		v := Classify(snap(110, 100, rsi), "", DefaultRules())
		assert.True(t, v.Empty())
	}
	assert.True(t, Classify(nil, "", DefaultRules()).Empty())
}

func TestRules_Validate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())
	assert.Error(t, Rules{BuyRSI: 45, WatchRSI: 40, SellRSI: 70}.Validate())
	assert.Error(t, Rules{BuyRSI: 30, WatchRSI: 80, SellRSI: 70}.Validate())
	assert.Error(t, Rules{BuyRSI: -1, WatchRSI: 40, SellRSI: 70}.Validate())
	assert.Error(t, Rules{BuyRSI: 30, WatchRSI: 40, SellRSI: 101}.Validate())
}
