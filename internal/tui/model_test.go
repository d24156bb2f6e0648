package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model)
}

func typeQuestion(m Model, q string) Model {
	for _, r := range q {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestModel_AskRoundTrip(t *testing.T) {
	var asked string
	ask := func(_ context.Context, q string) (domain.Answer, error) {
		asked = q
		return domain.Answer{
			Text:       "Gophers dig tunnels.",
			UsedChunks: []domain.Chunk{{Index: 2, Text: "gophers dig"}, {Index: 0, Text: "tunnels are long"}},
		}, nil
	}
	m := sized(t, New(context.Background(), ask, "docrag", "summary"))
	assert.Contains(t, m.View(), "No answer yet.")

	m = typeQuestion(m, "what do gophers dig")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, "what do gophers dig", asked)
	assert.False(t, m.busy)
	assert.Contains(t, m.status, "from 2 chunks")
	assert.Contains(t, m.render(), "Source 1/2  chunk #2")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Contains(t, m.render(), "Source 2/2  chunk #0")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)
}

func TestModel_AskError(t *testing.T) {
	ask := func(context.Context, string) (domain.Answer, error) {
		return domain.Answer{}, domain.NewError(domain.CodeNotReady, "no document ingested")
	}
	m := sized(t, New(context.Background(), ask, "docrag", ""))
	next, _ := m.Update(answerMsg{question: "q", err: errors.New("boom")})
	m = next.(Model)
	assert.Equal(t, "Error: boom", m.status)
	assert.Nil(t, m.answer)
}

func TestModel_EmptyEnterIsIgnored(t *testing.T) {
	m := sized(t, New(context.Background(), nil, "docrag", ""))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestModel_Quit(t *testing.T) {
	m := sized(t, New(context.Background(), nil, "docrag", ""))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_AsksUnderGivenContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ask := func(ctx context.Context, _ string) (domain.Answer, error) {
		return domain.Answer{}, ctx.Err()
	}
	m := typeQuestion(sized(t, New(ctx, ask, "docrag", "")), "gophers")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	next, _ = next.(Model).Update(cmd())
	assert.Equal(t, "Error: "+context.Canceled.Error(), next.(Model).status)
}

func TestHighlightTerms(t *testing.T) {
	assert.Equal(t, "plain text", highlightTerms("plain text", "a"))
	out := highlightTerms("Gophers dig", "gophers")
	assert.Contains(t, out, "Gophers")
	assert.Contains(t, out, "dig")
}
