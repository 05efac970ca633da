package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/config"
	"github.com/alexanderramin/prdchat/internal/export"
	"github.com/alexanderramin/prdchat/internal/intelligence"
	"github.com/alexanderramin/prdchat/internal/llm"
)

// scriptedClient answers intake calls and draft calls from separate queues.
type scriptedClient struct {
	mu     sync.Mutex
	intake []string
	draft  []string
	err    error
	calls  int
}

func (c *scriptedClient) reply(task llm.TaskType) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	queue := &c.intake
	if task == llm.TaskDraft {
		queue = &c.draft
	}
	if len(*queue) == 0 {
		return "", fmt.Errorf("%w: no scripted reply", llm.ErrRemoteCall)
	}
	text := (*queue)[0]
	*queue = (*queue)[1:]
	return text, nil
}

func (c *scriptedClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	text, err := c.reply(req.Task)
	if err != nil {
		return nil, err
	}
	return &llm.GenerateResponse{Text: text}, nil
}

func (c *scriptedClient) Stream(_ context.Context, req llm.GenerateRequest, onDelta llm.DeltaFunc) (*llm.GenerateResponse, error) {
	text, err := c.reply(req.Task)
	if err != nil {
		return nil, err
	}
	for _, word := range strings.SplitAfter(text, " ") {
		onDelta(word)
	}
	return &llm.GenerateResponse{Text: text}, nil
}

func (c *scriptedClient) Available(context.Context) bool { return true }

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *scriptedClient) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// intakeJSON renders a well-formed intake reply.
func intakeJSON(t *testing.T, text string, fields map[string]string, completed bool) string {
	t.Helper()
	if fields == nil {
		fields = map[string]string{}
	}
	data, err := json.Marshal(map[string]any{
		"response":       text,
		"collected_data": fields,
		"isCompleted":    completed,
	})
	require.NoError(t, err)
	return string(data)
}

// newTestApp wires an App against client with services already built.
func newTestApp(client llm.LLMClient) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	app := &App{
		Config:        config.Default(),
		Logger:        zap.NewNop(),
		Client:        client,
		Intake:        intelligence.NewIntakeService(client, intelligence.DefaultChecklist()),
		Draft:         intelligence.NewDraftService(client),
		Exports:       export.NewFactory(),
		In:            strings.NewReader(""),
		Out:           out,
		IsInteractive: func() bool { return false },
		Now:           func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
	return app, out
}
