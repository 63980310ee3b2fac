package game

import (
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	BitDepth     = 0 // 32-bit float (oto.FormatFloat32LE)
)

// SoundKind identifies different sound effects.
type SoundKind int

const (
	SoundWhoosh SoundKind = iota // lane change started
	SoundSettle                  // lane change finished
	SoundTune                    // tuning hotkey accepted
	SoundReject                  // tuning hotkey refused
	SoundReset
)

// AudioSystem manages the engine loop and procedural sound effects.
type AudioSystem struct {
	ctx          *oto.Context
	ready        chan struct{}
	enginePlayer oto.Player
	engine       *engineReader
}

var globalAudio *AudioSystem

var sfxVolume float64 = 0.5
var engineVolume float64 = 0.12

// activeWhooshes keeps rapid lane changes from stacking into clipping.
var activeWhooshes int32
var whooshVariantCounter uint64

// InitAudio initializes the audio system.
func InitAudio() error {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, BitDepth)
	if err != nil {
		return err
	}
	globalAudio = &AudioSystem{ctx: ctx, ready: ready}
	return nil
}

func audioReady() bool {
	if globalAudio == nil {
		return false
	}
	select {
	case <-globalAudio.ready:
		return true
	default:
		return false
	}
}

// PlaySound plays a procedurally generated sound effect.
func PlaySound(kind SoundKind) {
	PlaySoundWithGain(kind, 1.0)
}

func PlaySoundWithGain(kind SoundKind, gain float64) {
	if gain <= 0 || !audioReady() {
		return
	}
	if kind == SoundWhoosh {
		if atomic.LoadInt32(&activeWhooshes) >= 2 {
			return
		}
		atomic.AddInt32(&activeWhooshes, 1)
	}
	samples := generateSound(kind)
	if len(samples) == 0 {
		if kind == SoundWhoosh {
			atomic.AddInt32(&activeWhooshes, -1)
		}
		return
	}
	go func() {
		if kind == SoundWhoosh {
			defer atomic.AddInt32(&activeWhooshes, -1)
		}
		reader := &soundReader{data: samples}
		player := globalAudio.ctx.NewPlayer(reader)
		player.SetVolume(sfxVolume * clampF(gain, 0, 1))
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		player.Close()
	}()
}

type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both stereo channels at frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	putStereoF32LR(buf, i, sample, sample)
}

// putStereoF32LR writes independent left/right samples in [-1,1].
func putStereoF32LR(buf []byte, i int, left, right float64) {
	lv := math.Float32bits(float32(left))
	rv := math.Float32bits(float32(right))
	buf[i*8] = byte(lv)
	buf[i*8+1] = byte(lv >> 8)
	buf[i*8+2] = byte(lv >> 16)
	buf[i*8+3] = byte(lv >> 24)
	buf[i*8+4] = byte(rv)
	buf[i*8+5] = byte(rv >> 8)
	buf[i*8+6] = byte(rv >> 16)
	buf[i*8+7] = byte(rv >> 24)
}

// softSat applies gentle tanh-like saturation.
func softSat(x float64) float64 {
	if x > 1.0 {
		return 1.0 - 0.5/(x)
	}
	if x < -1.0 {
		return -1.0 + 0.5/(-x)
	}
	return x - x*x*x/3.0
}

// adsr returns an envelope at normalized progress [0,1].
// attack/decay/release are fractions of the total duration.
func adsr(progress, attack, decay, sustain, release float64) float64 {
	switch {
	case progress < attack:
		return progress / attack
	case progress < attack+decay:
		return 1.0 - (progress-attack)/decay*(1.0-sustain)
	case progress < 1.0-release:
		return sustain
	default:
		return sustain * (1.0 - (progress-(1.0-release))/release)
	}
}

// fm returns an FM-synthesized sample.
func fm(t, carrier, modRatio, modIdx float64) float64 {
	mod := math.Sin(2 * math.Pi * carrier * modRatio * t)
	return math.Sin(2*math.Pi*carrier*t + modIdx*mod)
}

// lcg advances an LCG seed and returns a noise sample in [-1,1].
func lcg(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>33)-int64(1<<30)) / float64(1<<30)
}

// makeBuf allocates a stereo float32 buffer for n samples.
func makeBuf(n int) []byte { return make([]byte, n*8) }

// ---- Sound effects -------------------------------------------------------

func generateSound(kind SoundKind) []byte {
	switch kind {
	case SoundWhoosh:
		return genWhoosh()
	case SoundSettle:
		return genSettle()
	case SoundTune:
		return genBlip(880, 0.05)
	case SoundReject:
		return genBlip(220, 0.09)
	case SoundReset:
		return genReset()
	}
	return nil
}

// genWhoosh: band-passed noise swept upward, panned across the stereo field.
func genWhoosh() []byte {
	n := int(0.32 * SampleRate)
	buf := makeBuf(n)
	seed := atomic.AddUint64(&whooshVariantCounter, 1) ^ uint64(time.Now().UnixNano())
	lp1, lp2 := 0.0, 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		env := adsr(p, 0.25, 0.35, 0.4, 0.4)
		cut := 0.04 + 0.3*p
		raw := lcg(&seed)
		lp1 = lp1*(1-cut) + raw*cut
		lp2 = lp2*0.985 + raw*0.015
		s := (lp1 - lp2) * env * 0.9
		pan := p*2 - 1
		putStereoF32LR(buf, i, softSat(s*(1-0.4*pan)), softSat(s*(1+0.4*pan)))
	}
	return buf
}

// genSettle: soft low thump when the car lands in its new lane.
func genSettle() []byte {
	n := int(0.08 * SampleRate)
	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		s := fm(t, 140-60*p, 0.5, 0.8) * math.Exp(-p*9) * 0.35
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

func genBlip(freq, dur float64) []byte {
	n := int(dur * SampleRate)
	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		env := adsr(p, 0.02, 0.4, 0.3, 0.3)
		putStereoF32(buf, i, softSat(fm(t, freq, 2.0, 1.5*env)*env*0.3))
	}
	return buf
}

// genReset: short descending FM chirp.
func genReset() []byte {
	n := int(0.22 * SampleRate)
	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		env := adsr(p, 0.01, 0.5, 0.2, 0.3)
		freq := 660 - 330*p
		putStereoF32(buf, i, softSat(fm(t, freq, 1.5, 2.0*env)*env*0.3))
	}
	return buf
}

// ---- Engine loop --------------------------------------------------------

const (
	EngineIdleHz = 55.0
	EngineTopHz  = 165.0
	EngineGlide  = 0.0005 // per-sample pitch smoothing
)

// engineReader is an endless engine drone. Pitch is set from the game
// thread and glides per sample on the audio thread.
type engineReader struct {
	target atomic.Uint64 // float64 bits, Hz
	freq   float64
	phase  float64
	seed   uint64
	lp     float64
}

func (e *engineReader) setFreq(hz float64) {
	e.target.Store(math.Float64bits(hz))
}

func (e *engineReader) Read(p []byte) (int, error) {
	samples := len(p) / 8
	target := math.Float64frombits(e.target.Load())
	for i := 0; i < samples; i++ {
		e.freq += (target - e.freq) * EngineGlide
		e.phase += e.freq / SampleRate
		if e.phase >= 1 {
			e.phase -= 1
		}
		// Firing pulses plus a little intake noise.
		pulse := math.Exp(-e.phase*6) - 0.3
		harm := math.Sin(2*math.Pi*e.phase*2) * 0.25
		e.lp = e.lp*0.9 + lcg(&e.seed)*0.1
		putStereoF32(p, i, softSat((pulse+harm)*0.5+e.lp*0.2))
	}
	return samples * 8, nil
}

// StartEngine begins the engine loop; safe to call before audio is ready.
func StartEngine() {
	if !audioReady() || globalAudio.enginePlayer != nil {
		return
	}
	e := &engineReader{freq: EngineIdleHz, seed: 4242}
	e.setFreq(EngineIdleHz)
	player := globalAudio.ctx.NewPlayer(e)
	player.SetVolume(engineVolume)
	player.Play()
	globalAudio.engine = e
	globalAudio.enginePlayer = player
}

// SetEngineLoad maps a normalized speed in [0,1] to engine pitch.
func SetEngineLoad(load float64) {
	if globalAudio == nil || globalAudio.engine == nil {
		return
	}
	load = clampF(load, 0, 1)
	globalAudio.engine.setFreq(EngineIdleHz + (EngineTopHz-EngineIdleHz)*load)
}

func StopAudio() {
	if globalAudio == nil {
		return
	}
	if globalAudio.enginePlayer != nil {
		globalAudio.enginePlayer.Close()
		globalAudio.enginePlayer = nil
		globalAudio.engine = nil
	}
}

func SetSFXVolume(vol float64) {
	sfxVolume = clampF(vol, 0, 1)
}
