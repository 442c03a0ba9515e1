package queue

import (
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type closeTracker struct {
	io.Reader
	closed int
}

func (c *closeTracker) Close() error {
	c.closed++
	return nil
}

func TestAudioSession_Stop(t *testing.T) {
	source := &closeTracker{Reader: strings.NewReader("audio")}
	session := newAudioSession(nil, source, 1)

	session.Stop()

	assert.True(t, session.isStopped())
	assert.Equal(t, 1, source.closed)
	select {
	case <-session.stop:
	default:
		t.Fatal("stop channel was not closed")
	}
}

func TestAudioSession_StopTwice(t *testing.T) {
	source := &closeTracker{Reader: strings.NewReader("audio")}
	session := newAudioSession(nil, source, 1)

	session.Stop()
	session.Stop()

	assert.True(t, session.isStopped())
	assert.Equal(t, 1, source.closed)
}

func TestAudioSession_Gain(t *testing.T) {
	session := newAudioSession(nil, nil, 0.75)
	assert.Equal(t, 0.75, session.Gain())

	session.SetGain(2.5)
	assert.Equal(t, 2.5, session.Gain())
}

func TestScalePCM(t *testing.T) {
	tests := []struct {
		name     string
		gain     float64
		samples  []int16
		expected []int16
	}{
		{
			name:     "unity gain",
			gain:     1,
			samples:  []int16{-100, 0, 100},
			expected: []int16{-100, 0, 100},
		},
		{
			name:     "half volume",
			gain:     0.5,
			samples:  []int16{-100, 0, 100},
			expected: []int16{-50, 0, 50},
		},
		{
			name:     "muted",
			gain:     0,
			samples:  []int16{-100, 0, 100},
			expected: []int16{0, 0, 0},
		},
		{
			name:     "clips when amplified",
			gain:     3,
			samples:  []int16{20000, -20000, 1000},
			expected: []int16{math.MaxInt16, math.MinInt16, 3000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scalePCM(tt.samples, tt.gain)
			assert.Equal(t, tt.expected, tt.samples)
		})
	}
}

func TestVoiceConn_WithoutSession(t *testing.T) {
	transport := NewVoiceTransport(nil)
	conn := &voiceConn{transport: transport, guildID: "guild"}

	assert.Equal(t, "", conn.ChannelID())
	conn.SetGain(1)
	conn.Stop()
	assert.NoError(t, conn.Leave())
}
