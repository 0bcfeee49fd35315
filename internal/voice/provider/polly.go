package provider

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultPollyRegion = "us-east-1"

// PollySampleRate is the highest rate Polly offers for the pcm output format.
const PollySampleRate = 16000

// PollyClient interface defines the methods we need from the Polly client
type PollyClient interface {
	DescribeVoices(ctx context.Context, params *polly.DescribeVoicesInput, optFns ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error)
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// PollyProvider implements the Provider interface for Amazon Polly
type PollyProvider struct {
	client PollyClient
	engine string
}

// NewPollyProvider creates a new Amazon Polly TTS provider
func NewPollyProvider(ctx context.Context, region, engine string) (*PollyProvider, error) {
	if region == "" {
		region = DefaultPollyRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewPollyProviderWith(polly.NewFromConfig(cfg), engine), nil
}

// NewPollyProviderWith wraps an existing Polly client.
func NewPollyProviderWith(client PollyClient, engine string) *PollyProvider {
	return &PollyProvider{client: client, engine: engine}
}

// Name returns the provider name
func (p *PollyProvider) Name() string {
	return "polly"
}

// ListVoices returns available Amazon Polly voices
func (p *PollyProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	voices := make([]Voice, 0)
	input := &polly.DescribeVoicesInput{}
	for {
		result, err := p.client.DescribeVoices(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list Polly voices: %w", err)
		}

		for _, v := range result.Voices {
			voice := Voice{
				ID:       string(v.Id),
				Name:     aws.ToString(v.Name),
				Language: string(v.LanguageCode),
				Description: fmt.Sprintf("%s voice, %s engine supported",
					cases.Title(language.English).String(string(v.Gender)),
					formatSupportedEngines(v.SupportedEngines)),
			}

			switch v.Gender {
			case types.GenderFemale:
				voice.Gender = "female"
			case types.GenderMale:
				voice.Gender = "male"
			}

			voices = append(voices, voice)
		}

		if aws.ToString(result.NextToken) == "" {
			break
		}
		input = &polly.DescribeVoicesInput{NextToken: result.NextToken}
	}

	return voices, nil
}

// Synthesize generates 16 kHz PCM from text using Amazon Polly
func (p *PollyProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (*PCM, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	voiceID := options.Voice
	if voiceID == "" {
		voiceID = "Joanna"
	}

	engineName := options.Engine
	if engineName == "" {
		engineName = p.engine
	}

	input := &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		VoiceId:      types.VoiceId(voiceID),
		OutputFormat: types.OutputFormatPcm,
		SampleRate:   aws.String(strconv.Itoa(PollySampleRate)),
		Engine:       parseEngine(engineName),
		TextType:     types.TextTypeText,
	}

	if strings.Contains(text, "<speak>") || strings.Contains(text, "<prosody") {
		input.TextType = types.TextTypeSsml
	}

	log.Debug().
		Str("voice_id", voiceID).
		Str("engine", string(input.Engine)).
		Str("text_type", string(input.TextType)).
		Msg("Making Polly synthesis request")

	result, err := p.client.SynthesizeSpeech(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	defer result.AudioStream.Close()

	data, err := io.ReadAll(result.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read Polly audio stream: %w", err)
	}

	log.Debug().
		Str("content_type", aws.ToString(result.ContentType)).
		Int("audio_bytes", len(data)).
		Msg("Polly synthesis request successful")

	return &PCM{Data: data, SampleRate: PollySampleRate}, nil
}

// IsAvailable checks if Amazon Polly provider is available
func (p *PollyProvider) IsAvailable(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.client.DescribeVoices(checkCtx, &polly.DescribeVoicesInput{})
	return err == nil
}

func parseEngine(name string) types.Engine {
	switch strings.ToLower(name) {
	case "", "neural":
		return types.EngineNeural
	case "standard":
		return types.EngineStandard
	case "long-form":
		return types.EngineLongForm
	case "generative":
		return types.EngineGenerative
	default:
		log.Warn().Str("engine", name).Msg("Unknown engine, using neural")
		return types.EngineNeural
	}
}

// formatSupportedEngines formats the list of supported engines for display
func formatSupportedEngines(engines []types.Engine) string {
	if len(engines) == 0 {
		return "unknown"
	}

	engineNames := make([]string, len(engines))
	for i, engine := range engines {
		engineNames[i] = string(engine)
	}

	return strings.Join(engineNames, ", ")
}
