package provider

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGCPClient is a mock for the GCP TTS client
type MockGCPClient struct {
	mock.Mock
}

func (m *MockGCPClient) ListVoices(ctx context.Context, req *texttospeechpb.ListVoicesRequest, opts ...gax.CallOption) (*texttospeechpb.ListVoicesResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*texttospeechpb.ListVoicesResponse), args.Error(1)
}

func (m *MockGCPClient) SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*texttospeechpb.SynthesizeSpeechResponse), args.Error(1)
}

func (m *MockGCPClient) Close() error {
	return nil
}

func TestGCPProvider_Name(t *testing.T) {
	p := &GCPProvider{}
	assert.Equal(t, "gcp", p.Name())
}

func TestDetectEngineType(t *testing.T) {
	tests := []struct {
		voiceName string
		expected  string
	}{
		{"ja-JP-Wavenet-A", "WaveNet"},
		{"ja-JP-Neural2-B", "Neural2"},
		{"ja-JP-Studio-A", "Studio"},
		{"ja-JP-Standard-A", "Standard"},
		{"en-US-Polyglot-1", "Polyglot"},
		{"en-US-News-K", "News"},
		{"en-US-Casual-K", "Casual"},
		{"unknown-voice", "Standard"},
	}

	for _, tt := range tests {
		t.Run(tt.voiceName, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectEngineType(tt.voiceName))
		})
	}
}

func TestSpeakingRate(t *testing.T) {
	tests := []struct {
		name     string
		speed    float64
		expected float64
	}{
		{"default", 0, 1.0},
		{"negative", -1.0, 1.0},
		{"normal", 1.0, 1.0},
		{"slow", 0.5, 0.5},
		{"too_slow", 0.1, 0.25},
		{"too_fast", 5.0, 4.0},
		{"boundary_max", 4.0, 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, speakingRate(tt.speed))
		})
	}
}

func TestIsSSML(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"plain_text", "Hello world", false},
		{"speak_tag", "<speak>Hello world</speak>", true},
		{"prosody_tag", "Text with <prosody rate='slow'>slow speech</prosody>", true},
		{"break_tag", "Hello <break time='1s'/> world", true},
		{"emphasis_tag", "This is <emphasis>important</emphasis>", true},
		{"html_not_ssml", "<p>This is HTML</p>", false},
		{"whitespace_speak", "  <speak>Hello</speak>  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isSSML(tt.text))
		})
	}
}

func TestLanguageFromVoice(t *testing.T) {
	tests := []struct {
		voice    string
		expected string
	}{
		{"ja-JP-Neural2-B", "ja-JP"},
		{"en-US-Wavenet-A", "en-US"},
		{"cmn-CN-Wavenet-A", "cmn-CN"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.voice, func(t *testing.T) {
			assert.Equal(t, tt.expected, languageFromVoice(tt.voice))
		})
	}
}

func TestGCPProvider_ListVoices(t *testing.T) {
	client := &MockGCPClient{}
	p := NewGCPProviderWith(client, WithGCPLanguage("en-US"))

	client.On("ListVoices", mock.Anything, mock.MatchedBy(func(req *texttospeechpb.ListVoicesRequest) bool {
		return req.LanguageCode == "en-US"
	})).Return(&texttospeechpb.ListVoicesResponse{
		Voices: []*texttospeechpb.Voice{
			{Name: "en-US-Wavenet-A", LanguageCodes: []string{"en-US"}, SsmlGender: texttospeechpb.SsmlVoiceGender_MALE},
			{Name: "en-US-Neural2-C", LanguageCodes: []string{"en-US"}, SsmlGender: texttospeechpb.SsmlVoiceGender_FEMALE},
		},
	}, nil)

	voices, err := p.ListVoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Voice{
		{ID: "en-US-Wavenet-A", Name: "en-US-Wavenet-A", Language: "en-US", Gender: "male", Description: "WaveNet voice (en-US)"},
		{ID: "en-US-Neural2-C", Name: "en-US-Neural2-C", Language: "en-US", Gender: "female", Description: "Neural2 voice (en-US)"},
	}, voices)
	client.AssertExpectations(t)
}

func TestGCPProvider_ListVoices_Error(t *testing.T) {
	client := &MockGCPClient{}
	p := NewGCPProviderWith(client)
	client.On("ListVoices", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))

	_, err := p.ListVoices(context.Background())
	assert.EqualError(t, err, "failed to list GCP voices: denied")
}

func TestGCPProvider_Synthesize(t *testing.T) {
	client := &MockGCPClient{}
	p := NewGCPProviderWith(client, WithGCPVoice("ja-JP-Neural2-B"))
	pcm := []byte{1, 0, 2, 0, 3, 0}

	client.On("SynthesizeSpeech", mock.Anything, mock.MatchedBy(func(req *texttospeechpb.SynthesizeSpeechRequest) bool {
		return req.GetInput().GetText() == "hello" &&
			req.GetVoice().GetName() == "en-US-Wavenet-A" &&
			req.GetVoice().GetLanguageCode() == "en-US" &&
			req.GetAudioConfig().GetAudioEncoding() == texttospeechpb.AudioEncoding_LINEAR16 &&
			req.GetAudioConfig().GetSampleRateHertz() == SampleRate
	})).Return(&texttospeechpb.SynthesizeSpeechResponse{AudioContent: testWAV(SampleRate, pcm)}, nil)

	out, err := p.Synthesize(context.Background(), "hello", SynthesizeOptions{Voice: "en-US-Wavenet-A"})
	require.NoError(t, err)
	assert.Equal(t, pcm, out.Data)
	assert.Equal(t, SampleRate, out.SampleRate)
	client.AssertExpectations(t)
}

func TestGCPProvider_Synthesize_SSML(t *testing.T) {
	client := &MockGCPClient{}
	p := NewGCPProviderWith(client, WithGCPVoice("ja-JP-Neural2-B"))

	client.On("SynthesizeSpeech", mock.Anything, mock.MatchedBy(func(req *texttospeechpb.SynthesizeSpeechRequest) bool {
		return req.GetInput().GetSsml() != "" && req.GetVoice().GetLanguageCode() == "ja-JP"
	})).Return(&texttospeechpb.SynthesizeSpeechResponse{AudioContent: []byte{0, 0}}, nil)

	out, err := p.Synthesize(context.Background(), `<speak>hi<break time="1s"/></speak>`, SynthesizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, out.Data)
}

func TestGCPProvider_Synthesize_Errors(t *testing.T) {
	p := NewGCPProviderWith(&MockGCPClient{})
	_, err := p.Synthesize(context.Background(), "", SynthesizeOptions{})
	assert.EqualError(t, err, "text cannot be empty")

	client := &MockGCPClient{}
	p = NewGCPProviderWith(client)
	client.On("SynthesizeSpeech", mock.Anything, mock.Anything).Return(nil, errors.New("quota"))
	_, err = p.Synthesize(context.Background(), "hi", SynthesizeOptions{Voice: "en-US-Standard-A"})
	assert.EqualError(t, err, "failed to synthesize speech: quota")
}

func TestGCPProvider_IsAvailable(t *testing.T) {
	client := &MockGCPClient{}
	p := NewGCPProviderWith(client)
	client.On("ListVoices", mock.Anything, mock.Anything).Return(&texttospeechpb.ListVoicesResponse{}, nil).Once()
	client.On("ListVoices", mock.Anything, mock.Anything).Return(nil, errors.New("down")).Once()

	assert.True(t, p.IsAvailable(context.Background()))
	assert.False(t, p.IsAvailable(context.Background()))
}
