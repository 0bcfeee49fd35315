package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewElevenLabsProvider(t *testing.T) {
	provider := NewElevenLabsProvider("test-api-key", "", "https://custom.elevenlabs.io/v1/")

	assert.Equal(t, "test-api-key", provider.apiKey)
	assert.Equal(t, "https://custom.elevenlabs.io/v1", provider.baseURL)
	assert.Equal(t, DefaultElevenLabsModel, provider.model)
	assert.NotNil(t, provider.httpClient)
	assert.Equal(t, "elevenlabs", provider.Name())

	assert.Equal(t, ElevenLabsBaseURL, NewElevenLabsProvider("k", "", "").baseURL)
}

func TestElevenLabsProvider_ListVoices(t *testing.T) {
	t.Run("successful voice listing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "/voices", r.URL.Path)
			assert.Equal(t, "test-api-key", r.Header.Get("xi-api-key"))

			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{
				"voices": [
					{
						"voice_id": "voice1",
						"name": "Test Voice",
						"category": "premade",
						"description": "A test voice",
						"labels": {"language": "en", "gender": "female"},
						"available_for_tts": true
					},
					{
						"voice_id": "voice2",
						"name": "Hidden",
						"available_for_tts": false
					}
				]
			}`))
		}))
		defer server.Close()

		provider := NewElevenLabsProvider("test-api-key", "", server.URL)

		voices, err := provider.ListVoices(context.Background())
		require.NoError(t, err)
		require.Len(t, voices, 1)
		assert.Equal(t, Voice{ID: "voice1", Name: "Test Voice", Language: "en", Gender: "female", Description: "A test voice"}, voices[0])
	})

	t.Run("handles API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": {"status": "invalid_api_key"}}`))
		}))
		defer server.Close()

		provider := NewElevenLabsProvider("test-api-key", "", server.URL)

		_, err := provider.ListVoices(context.Background())
		assert.EqualError(t, err, "ElevenLabs API error: invalid_api_key")
	})
}

func TestElevenLabsProvider_Synthesize(t *testing.T) {
	t.Run("returns error for empty text", func(t *testing.T) {
		provider := NewElevenLabsProvider("test-api-key", "", "")

		_, err := provider.Synthesize(context.Background(), "", SynthesizeOptions{})
		assert.ErrorContains(t, err, "text cannot be empty")
	})

	t.Run("successful synthesis", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/text-to-speech/test-voice-id", r.URL.Path)
			assert.Equal(t, "pcm_22050", r.URL.Query().Get("output_format"))
			assert.Equal(t, "test-api-key", r.Header.Get("xi-api-key"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body ElevenLabsTTSRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Hello world", body.Text)
			assert.Equal(t, "eleven_turbo_v2", body.ModelID)

			w.WriteHeader(http.StatusOK)
			w.Write([]byte("mock audio data"))
		}))
		defer server.Close()

		provider := NewElevenLabsProvider("test-api-key", "eleven_turbo_v2", server.URL)

		out, err := provider.Synthesize(context.Background(), "Hello world", SynthesizeOptions{Voice: "test-voice-id"})
		require.NoError(t, err)
		assert.Equal(t, "mock audio data", string(out.Data))
		assert.Equal(t, SampleRate, out.SampleRate)
	})

	t.Run("handles API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail": {"message": "Bad request"}}`))
		}))
		defer server.Close()

		provider := NewElevenLabsProvider("test-api-key", "", server.URL)

		_, err := provider.Synthesize(context.Background(), "Test", SynthesizeOptions{})
		assert.EqualError(t, err, "ElevenLabs API error: Bad request")
	})

	t.Run("handles non-JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
		}))
		defer server.Close()

		provider := NewElevenLabsProvider("test-api-key", "", server.URL)

		_, err := provider.Synthesize(context.Background(), "Test", SynthesizeOptions{})
		assert.EqualError(t, err, "ElevenLabs API error: status 502, body: upstream down")
	})
}

func TestElevenLabsProvider_IsAvailable(t *testing.T) {
	t.Run("returns false with empty API key", func(t *testing.T) {
		provider := NewElevenLabsProvider("", "", "")
		assert.False(t, provider.IsAvailable(context.Background()))
	})

	t.Run("returns true when API responds OK", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"voices": []}`))
		}))
		defer server.Close()

		provider := NewElevenLabsProvider("test-api-key", "", server.URL)
		assert.True(t, provider.IsAvailable(context.Background()))
	})

	t.Run("returns false when API responds with error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		provider := NewElevenLabsProvider("test-api-key", "", server.URL)
		assert.False(t, provider.IsAvailable(context.Background()))
	})
}

func TestElevenLabsError_String(t *testing.T) {
	tests := []struct {
		name     string
		detail   interface{}
		expected string
	}{
		{"string detail", "Test error message", "Test error message"},
		{"map with message", map[string]interface{}{"message": "Error from map", "status": "x"}, "Error from map"},
		{"map with status", map[string]interface{}{"status": "quota_exceeded"}, "quota_exceeded"},
		{"list detail", []interface{}{map[string]interface{}{"msg": "field required"}}, "field required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ElevenLabsError{Detail: tt.detail}.String())
		})
	}
}
