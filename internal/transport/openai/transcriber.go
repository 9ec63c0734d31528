package openai

import (
	"bytes"
	"context"
	"encoding/binary"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ecoquerai/quer/internal/domain"
)

// PCM parameters of the browser audio contract: 16-bit little-endian samples,
// 16 kHz, mono.
const (
	pcmSampleRate    = 16000
	pcmBitsPerSample = 16
	pcmChannels      = 1
)

// Transcriber converts spoken audio to text via the OpenAI-compatible
// transcription API (Whisper).
type Transcriber struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewTranscriber creates an OpenAI-compatible speech-to-text provider.
func NewTranscriber(cfg ClientConfig, model string, logger *zap.Logger) *Transcriber {
	return &Transcriber{
		client: newClient(cfg),
		model:  model,
		logger: logger,
	}
}

// Transcribe implements domain.Transcriber. The raw PCM bytes are wrapped in a
// WAV container, since the transcription API only accepts audio files.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, lang string) (string, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: "question.wav",
		Reader:   bytes.NewReader(wrapWAV(audio)),
		Language: lang,
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", parseAPIError(err, domain.ErrTranscriptionProviderError)
	}

	t.logger.Debug("Audio transcribed",
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_chars", len(resp.Text)),
	)
	return resp.Text, nil
}

// wrapWAV prepends a canonical 44-byte RIFF/WAVE header to raw PCM16LE data.
func wrapWAV(pcm []byte) []byte {
	const headerSize = 44
	byteRate := pcmSampleRate * pcmChannels * pcmBitsPerSample / 8
	blockAlign := pcmChannels * pcmBitsPerSample / 8

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(pcm)))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm))) //nolint:errcheck // bytes.Buffer cannot fail
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))             //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint16(1))              //nolint:errcheck // PCM format
	binary.Write(buf, binary.LittleEndian, uint16(pcmChannels))    //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint32(pcmSampleRate))  //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))       //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))     //nolint:errcheck
	binary.Write(buf, binary.LittleEndian, uint16(pcmBitsPerSample)) //nolint:errcheck
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm))) //nolint:errcheck
	buf.Write(pcm)

	return buf.Bytes()
}
