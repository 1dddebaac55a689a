package answer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/models"
	"github.com/ternarybob/ticketctx/internal/services/llm"
)

type fakeGenerator struct {
	text     string
	err      error
	requests []*llm.ContentRequest
}

func (g *fakeGenerator) GenerateContent(ctx context.Context, request *llm.ContentRequest) (*llm.ContentResponse, error) {
	g.requests = append(g.requests, request)
	if g.err != nil {
		return nil, g.err
	}
	return &llm.ContentResponse{Text: g.text, Provider: llm.ProviderOpenAI, Model: "gpt-4o"}, nil
}

func rawConfig() common.AnswerConfig {
	cfg := common.NewDefaultConfig().Answer
	cfg.ContextFormat = "raw"
	return cfg
}

var testTicket = &models.Ticket{Key: "NB_0001", Summary: "Login fails", Description: "Users see a 500"}

func TestAnswer_EmptyDocumentsNeverCallsModel(t *testing.T) {
	gen := &fakeGenerator{text: "should not be used"}
	svc := NewService(gen, rawConfig(), "", arbor.NewLogger())

	for _, docs := range [][]*models.SearchResult{nil, {}} {
		got, err := svc.Answer(context.Background(), "why?", testTicket, docs)
		require.NoError(t, err)
		assert.Equal(t, NoRelevantPagesMessage, got)
	}

	assert.Empty(t, gen.requests)
}

func TestAnswer_ReturnsModelTextVerbatim(t *testing.T) {
	gen := &fakeGenerator{text: "  The session cookie expired.\n"}
	cfg := rawConfig()
	cfg.Model = "openai/gpt-4o"
	svc := NewService(gen, cfg, "", arbor.NewLogger())
	docs := []*models.SearchResult{
		{Title: "Runbook", Body: "Restart the auth service"},
		{Title: "Postmortem", Body: "Cookie expiry was too short"},
	}

	got, err := svc.Answer(context.Background(), "What broke?", testTicket, docs)

	require.NoError(t, err)
	assert.Equal(t, "  The session cookie expired.\n", got)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, "openai/gpt-4o", req.Model)
	assert.Equal(t, float32(0), req.Temperature)
	require.Len(t, req.Messages, 1)

	prompt := req.Messages[0].Content
	assert.Contains(t, prompt, "Context:\n--- Page: Runbook ---\nRestart the auth service\n\n--- Page: Postmortem ---\nCookie expiry was too short")
	assert.Contains(t, prompt, "Ticket Summary: Login fails")
	assert.Contains(t, prompt, "Ticket Description: Users see a 500")
	assert.Contains(t, prompt, "Question: What broke?")
	assert.Contains(t, prompt, "If you don't know the answer, just say that you don't know.")
}

func TestAnswer_PropagatesGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: common.Errorf(common.KindConfiguration, "llm.openai", "no key")}
	svc := NewService(gen, rawConfig(), "", arbor.NewLogger())

	_, err := svc.Answer(context.Background(), "q", testTicket, []*models.SearchResult{{Title: "a", Body: "b"}})

	assert.True(t, common.IsKind(err, common.KindConfiguration))
}

func TestFormatContext(t *testing.T) {
	svc := NewService(&fakeGenerator{}, rawConfig(), "", arbor.NewLogger())

	assert.Equal(t, "", svc.FormatContext(nil))
	assert.Equal(t, "--- Page: One ---\n<p>x</p>", svc.FormatContext([]*models.SearchResult{{Title: "One", Body: "<p>x</p>"}}))
}

func TestFormatContext_Markdown(t *testing.T) {
	svc := NewService(&fakeGenerator{}, common.NewDefaultConfig().Answer, "https://wiki.example.com", arbor.NewLogger())

	got := svc.FormatContext([]*models.SearchResult{{Title: "Spec", Body: "<h2>Goal</h2><p>Ship it</p>"}})

	assert.Contains(t, got, "--- Page: Spec ---\n")
	assert.Contains(t, got, "## Goal")
	assert.NotContains(t, got, "<p>")
}

func TestBuildPrompt_NilTicket(t *testing.T) {
	svc := NewService(&fakeGenerator{}, rawConfig(), "", arbor.NewLogger())

	prompt, err := svc.BuildPrompt("q", nil, []*models.SearchResult{{Title: "t", Body: "b"}})

	require.NoError(t, err)
	assert.Contains(t, prompt, "Ticket Summary: \n")
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("**Fix** the `config`\n\n<script>alert(1)</script>")

	require.NoError(t, err)
	assert.Contains(t, html, "<strong>Fix</strong>")
	assert.Contains(t, html, "<code>config</code>")
	assert.NotContains(t, html, "<script>")
}

func TestRenderHTML_SanitizesLinks(t *testing.T) {
	html, err := RenderHTML("See [the runbook](https://example.atlassian.net/wiki/x) <a href=\"javascript:alert(1)\" onclick=\"x()\">here</a>")

	require.NoError(t, err)
	assert.Contains(t, html, `href="https://example.atlassian.net/wiki/x"`)
	assert.Contains(t, html, `rel="nofollow"`)
	assert.NotContains(t, html, "javascript:")
	assert.NotContains(t, html, "onclick")
}
