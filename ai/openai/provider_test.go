package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/newsroom/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// scriptedModel answers GenerateContent with canned responses in order.
type scriptedModel struct {
	answers []string
	err     error
	calls   int
}

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.answers) == 0 {
		return &llms.ContentResponse{}, nil
	}
	answer := m.answers[0]
	if len(m.answers) > 1 {
		m.answers = m.answers[1:]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: answer}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

var labels = []string{"Politics", "Finance", "Science", "Culture", "Sport"}

func TestTopicClassifier_Rank(t *testing.T) {
	model := &scriptedModel{answers: []string{"```json\n{\"labels\":[\"Science\",\"Weather\",\"Finance\",\"Science\"]}\n```"}}
	classifier := newTopicClassifier(model)

	ranked, err := classifier.Rank(context.Background(), "Telescope finds water", labels)
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "Science", ranked[0].Label)
	assert.Equal(t, "Finance", ranked[1].Label)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, 1, model.calls)
}

func TestTopicClassifier_RetriesMalformedJSON(t *testing.T) {
	model := &scriptedModel{answers: []string{"not json", `{"labels":["Sport"]}`}}
	classifier := newTopicClassifier(model)

	ranked, err := classifier.Rank(context.Background(), "Cup final", labels)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Sport", ranked[0].Label)
	assert.Equal(t, 2, model.calls)
}

func TestTopicClassifier_GivesUpAfterRetries(t *testing.T) {
	model := &scriptedModel{answers: []string{"still not json"}}
	classifier := newTopicClassifier(model)

	_, err := classifier.Rank(context.Background(), "text", labels)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrMalformedResponse))
	assert.Equal(t, maxAttempts, model.calls)
}

func TestTopicClassifier_NoChoices(t *testing.T) {
	classifier := newTopicClassifier(&scriptedModel{})

	ranked, err := classifier.Rank(context.Background(), "text", labels)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestTopicClassifier_ClientError(t *testing.T) {
	model := &scriptedModel{err: errors.New("connection refused")}
	classifier := newTopicClassifier(model)

	_, err := classifier.Rank(context.Background(), "text", labels)
	assert.Error(t, err)
	assert.Equal(t, 1, model.calls)
}

func TestEntityExtractor_Tag(t *testing.T) {
	model := &scriptedModel{answers: []string{`{"entities":[{"word":"Angela Merkel","type":"per"},{"word":"Paris","type":""}]}`}}
	extractor := newEntityExtractor(model)

	tokens, err := extractor.Tag(context.Background(), "Angela Merkel visited Paris")
	require.NoError(t, err)

	require.Len(t, tokens, 2)
	assert.Equal(t, "PER", tokens[0].EntityGroup)
	assert.Equal(t, "MISC", tokens[1].EntityGroup)
	assert.Equal(t, []string{"Angela Merkel", "Paris"}, ai.GroupTokens(tokens))
}

func TestEntityExtractor_RepairsUnquotedKeys(t *testing.T) {
	model := &scriptedModel{answers: []string{`{"entities":[{"word":"NASA", type":"ORG"}]}`}}
	extractor := newEntityExtractor(model)

	tokens, err := extractor.Tag(context.Background(), "NASA launches probe")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "ORG", tokens[0].EntityGroup)
}

func TestEntityExtractor_BlankTextSkipsModel(t *testing.T) {
	model := &scriptedModel{}
	extractor := newEntityExtractor(model)

	tokens, err := extractor.Tag(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, tokens)
	assert.Zero(t, model.calls)
}

func TestNewProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		provider, err := NewProvider(ai.NewConfig(
			ai.WithBackend(ai.BackendOpenAI),
			ai.WithHost("http://localhost:11434"),
		))
		require.NoError(t, err)
		assert.NotNil(t, provider.TopicClassifier())
		assert.NotNil(t, provider.EntityExtractor())
		assert.NoError(t, provider.Close())
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewProvider(ai.NewConfig(ai.WithBackend(ai.BackendOpenAI), ai.WithChatModel("")))
		assert.Error(t, err)
	})
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1} "))
}

func TestRepairJSON(t *testing.T) {
	cases := map[string]string{
		`{"labels":["Sport"]}`:                      `{"labels":["Sport"]}`,
		`{labels":["Sport"]}`:                       `{"labels":["Sport"]}`,
		`{labels: ["Sport"]}`:                       `{"labels": ["Sport"]}`,
		`{"labels":["Sport",],}`:                    `{"labels":["Sport"]}`,
		`Sure! {"entities":["NASA"]} Hope it helps`: `{"entities":["NASA"]}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, repairJSON(in), in)
	}
}
