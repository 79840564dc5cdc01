package designer

import (
	"errors"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/keydrop-back/internal/keyshape"
)

func initialParams() keyshape.Params {
	return keyshape.Params{
		HeadWidth:   40,
		HeadHeight:  30,
		ShaftHeight: 20,
		Notches:     []float64{10, 10, 10, 10},
		Fill:        colorful.Color{R: 100.0 / 255, G: 150.0 / 255, B: 200.0 / 255},
	}
}

func TestSession_Initial(t *testing.T) {
	s := NewSession(initialParams(), 60)

	p := s.Params()

	assert.InDelta(t, 40.0, p.HeadWidth, 1e-9)
	assert.InDelta(t, 20.0, p.ShaftHeight, 1e-9)
	assert.Equal(t, 4, p.NotchCount())
	assert.InDelta(t, 10.0, p.Notches[0], 1e-9)
	assert.True(t, s.Settled())
}

func TestSession_SmoothApproach(t *testing.T) {
	s := NewSession(initialParams(), 60)
	require.NoError(t, s.Set(SliderHeadWidth, 100))

	first := s.Step()

	// 1フレームで目標に飛ばない
	assert.Greater(t, first.HeadWidth, 40.0)
	assert.Less(t, first.HeadWidth, 100.0)
	assert.False(t, s.Settled())

	prev := first.HeadWidth
	for i := 0; i < 600; i++ {
		p := s.Step()
		// 臨界減衰なので行き過ぎない
		assert.LessOrEqual(t, p.HeadWidth, 100.0+1e-6)
		assert.GreaterOrEqual(t, p.HeadWidth, prev-1e-9)
		prev = p.HeadWidth
	}

	assert.InDelta(t, 100.0, prev, 0.01)
	assert.True(t, s.Settled())
}

func TestSession_Set(t *testing.T) {
	tests := []struct {
		name    string
		slider  string
		value   float64
		wantErr bool
		unknown bool
	}{
		{name: "正常系: ヘッド高さ", slider: SliderHeadHeight, value: 50},
		{name: "正常系: 色", slider: SliderRed, value: 300},
		{name: "正常系: ノッチ数", slider: SliderNotchCount, value: 5.4},
		{name: "異常系: 未知のスライダー", slider: "tooth", value: 1, wantErr: true, unknown: true},
		{name: "異常系: 負の値", slider: SliderHeadWidth, value: -1, wantErr: true},
		{name: "異常系: NaN", slider: SliderHeadWidth, value: math.NaN(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(initialParams(), 60)

			err := s.Set(tt.slider, tt.value)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.unknown, errors.Is(err, ErrUnknownSlider))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSession_NotchCountSnaps(t *testing.T) {
	s := NewSession(initialParams(), 60)

	require.NoError(t, s.Set(SliderNotchCount, 9))
	assert.Equal(t, 6, s.Params().NotchCount())

	require.NoError(t, s.Set(SliderNotchCount, 1))
	assert.Equal(t, 3, s.Params().NotchCount())
}

func TestSession_ColorClamped(t *testing.T) {
	s := NewSession(initialParams(), 60)
	require.NoError(t, s.Set(SliderBlue, 1000))

	var p keyshape.Params
	for i := 0; i < 600; i++ {
		p = s.Step()
	}

	_, _, b := p.Fill.RGB255()
	assert.Equal(t, uint8(255), b)
}
