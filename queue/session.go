package queue

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

const (
	sampleRate       = 48000
	channels         = 2
	frameSize        = 960
	maxOpusFrameSize = 4000
)

type AudioSession struct {
	VC      *discordgo.VoiceConnection // Discord voice connection for this session
	Cmd     *exec.Cmd                  // ffmpeg process converting audio to PCM
	Encoder *gopus.Encoder             // Opus encoder for sending audio to Discord
	source  io.ReadCloser              // Audio bytes fed to ffmpeg
	gain    atomic.Uint64              // Volume multiplier as float64 bits
	mu      sync.Mutex                 // Mutex to protect concurrent access
	stop    chan struct{}              // Channel to signal stopping the session
	stopped bool                       // True if session has been stopped already
}

func newAudioSession(vc *discordgo.VoiceConnection, source io.ReadCloser, gain float64) *AudioSession {
	session := &AudioSession{
		VC:     vc,
		source: source,
		stop:   make(chan struct{}),
	}
	session.SetGain(gain)
	return session
}

// SetGain changes the volume of the session while it plays
func (s *AudioSession) SetGain(gain float64) {
	s.gain.Store(math.Float64bits(gain))
}

// Gain returns the current volume multiplier
func (s *AudioSession) Gain() float64 {
	return math.Float64frombits(s.gain.Load())
}

// Stop ends playback, kills ffmpeg and closes the audio source
func (s *AudioSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	if s.stop != nil {
		close(s.stop)
	}
	if s.Cmd != nil && s.Cmd.Process != nil {
		s.Cmd.Process.Kill()
	}
	if s.source != nil {
		s.source.Close()
	}
	s.Encoder = nil
}

func (s *AudioSession) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// play streams the session's source to Discord. It returns nil when the source
// is exhausted or the session was stopped.
func (s *AudioSession) play() error {
	vc := s.VC
	if !vc.Ready {
		for i := 0; i < 20; i++ {
			time.Sleep(250 * time.Millisecond)
			if vc.Ready || s.isStopped() {
				break
			}
		}
		if s.isStopped() {
			return nil
		}
		if !vc.Ready {
			return fmt.Errorf("voice connection never became ready")
		}
	}

	vc.Speaking(true)
	defer vc.Speaking(false)

	cmd := exec.Command("ffmpeg",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "error",
		"pipe:1",
	)
	cmd.Stdin = s.source

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.Cmd = cmd
	s.Encoder = encoder
	stop := s.stop
	s.mu.Unlock()

	defer s.Stop()

	buf := make([]int16, frameSize*channels)
	for {
		err := binary.Read(stdout, binary.LittleEndian, buf)
		if err != nil {
			if s.isStopped() {
				cmd.Wait()
				return nil
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return err
		}

		scalePCM(buf, s.Gain())

		opus, err := encoder.Encode(buf, frameSize, maxOpusFrameSize)
		if err != nil {
			return err
		}

		if len(opus) > 0 {
			select {
			case vc.OpusSend <- opus:
			case <-time.After(time.Second):
				return fmt.Errorf("timeout sending opus frame")
			case <-stop:
				cmd.Wait()
				return nil
			}
		}
	}

	return cmd.Wait()
}

// scalePCM applies gain to PCM samples in place, clipping at the int16 range
func scalePCM(samples []int16, gain float64) {
	if gain == 1 {
		return
	}
	for i, sample := range samples {
		v := float64(sample) * gain
		switch {
		case v > math.MaxInt16:
			samples[i] = math.MaxInt16
		case v < math.MinInt16:
			samples[i] = math.MinInt16
		default:
			samples[i] = int16(v)
		}
	}
}

// VoiceTransport joins Discord voice channels, keeping one connection per guild
type VoiceTransport struct {
	Session *discordgo.Session
	mu      sync.Mutex
	conns   map[string]*voiceConn
}

func NewVoiceTransport(s *discordgo.Session) *VoiceTransport {
	return &VoiceTransport{
		Session: s,
		conns:   make(map[string]*voiceConn),
	}
}

// Join connects the bot to the voice channel, reusing the connection when it is already there
func (t *VoiceTransport) Join(ctx context.Context, guildID, channelID string) (Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Session.RLock()
	vc, ok := t.Session.VoiceConnections[guildID]
	t.Session.RUnlock()

	if !ok || vc == nil || vc.ChannelID != channelID {
		var err error
		vc, err = t.Session.ChannelVoiceJoin(guildID, channelID, false, true)
		if err != nil {
			return nil, err
		}
	}

	conn, ok := t.conns[guildID]
	if !ok {
		conn = &voiceConn{transport: t, guildID: guildID}
		t.conns[guildID] = conn
	}
	conn.mu.Lock()
	conn.vc = vc
	conn.mu.Unlock()
	return conn, nil
}

func (t *VoiceTransport) forget(guildID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, guildID)
}

type voiceConn struct {
	transport *VoiceTransport
	guildID   string
	mu        sync.Mutex
	vc        *discordgo.VoiceConnection
	session   *AudioSession
}

func (c *voiceConn) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vc == nil {
		return ""
	}
	return c.vc.ChannelID
}

func (c *voiceConn) Play(stream io.ReadCloser, gain float64) <-chan error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.Stop()
	}
	session := newAudioSession(c.vc, stream, gain)
	c.session = session

	done := make(chan error, 1)
	go func() {
		done <- session.play()
		close(done)
	}()
	return done
}

func (c *voiceConn) SetGain(gain float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.SetGain(gain)
	}
}

func (c *voiceConn) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Stop()
	}
}

func (c *voiceConn) Leave() error {
	c.Stop()
	c.transport.forget(c.guildID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vc == nil {
		return nil
	}
	err := c.vc.Disconnect()
	c.vc = nil
	return err
}
