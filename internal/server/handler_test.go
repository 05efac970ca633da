package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexanderramin/prdchat/internal/export"
	"github.com/alexanderramin/prdchat/internal/intelligence"
	"github.com/alexanderramin/prdchat/internal/llm"
)

// scriptedClient answers intake calls and draft calls from separate queues.
type scriptedClient struct {
	mu      sync.Mutex
	intake  []string
	draft   []string
	err     error
	block   chan struct{}
	entered chan struct{}
}

func (c *scriptedClient) reply(task llm.TaskType) (string, error) {
	if c.entered != nil {
		c.entered <- struct{}{}
	}
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
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

func newTestServer(t *testing.T, client llm.LLMClient) *httptest.Server {
	t.Helper()
	h := NewHandler(
		NewRegistry(time.Hour, false),
		intelligence.NewIntakeService(client, intelligence.DefaultChecklist()),
		intelligence.NewDraftService(client),
		export.NewFactory(),
	)
	srv := httptest.NewServer(SetupRouter(h, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createSession(t *testing.T, srv *httptest.Server) SessionDTO {
	t.Helper()
	resp := postJSON(t, srv.URL+"/sessions", struct{}{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[SessionDTO](t, resp)
}

const (
	acmeReply = `{"response":"Thanks! What are your brand guidelines?","collected_data":{"company_name":"Acme"},"isCompleted":false}`
	doneReply = `{"response":"All set.","collected_data":{"company_name":"Acme","tone":"friendly"},"isCompleted":true}`
)

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &scriptedClient{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntakeFlow(t *testing.T) {
	srv := newTestServer(t, &scriptedClient{intake: []string{acmeReply}})
	sess := createSession(t, srv)
	assert.Equal(t, "gathering", string(sess.Phase))
	assert.True(t, sess.Active)

	resp := postJSON(t, srv.URL+"/sessions/"+sess.ID+"/intake", MessageRequest{Message: "We are Acme"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	turn := decode[IntakeTurnDTO](t, resp)
	assert.Equal(t, "Thanks! What are your brand guidelines?", turn.Text)
	assert.Equal(t, map[string]string{"company_name": "Acme"}, turn.Fields)
	assert.Equal(t, intelligence.TierDocument, turn.Tier)
	assert.True(t, turn.Active)

	getResp, err := http.Get(srv.URL + "/sessions/" + sess.ID)
	require.NoError(t, err)
	snap := decode[SessionDTO](t, getResp)
	assert.Len(t, snap.History, 2)
	assert.Equal(t, map[string]string{"company_name": "Acme"}, snap.Collected)
}

func TestIntake_RemoteFailureKeepsState(t *testing.T) {
	srv := newTestServer(t, &scriptedClient{err: llm.ErrTimeout})
	sess := createSession(t, srv)

	resp := postJSON(t, srv.URL+"/sessions/"+sess.ID+"/intake", MessageRequest{Message: "hello"})
	resp.Body.Close()
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/sessions/" + sess.ID)
	require.NoError(t, err)
	snap := decode[SessionDTO](t, getResp)
	assert.Empty(t, snap.History)
}

func TestIntake_UnknownSession(t *testing.T) {
	srv := newTestServer(t, &scriptedClient{})

	resp := postJSON(t, srv.URL+"/sessions/missing/intake", MessageRequest{Message: "hi"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIntake_BadBody(t *testing.T) {
	srv := newTestServer(t, &scriptedClient{})
	sess := createSession(t, srv)

	resp, err := http.Post(srv.URL+"/sessions/"+sess.ID+"/intake", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIntake_BusySessionConflict(t *testing.T) {
	client := &scriptedClient{
		intake:  []string{acmeReply},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	srv := newTestServer(t, client)
	sess := createSession(t, srv)

	done := make(chan int, 1)
	go func() {
		resp := postJSON(t, srv.URL+"/sessions/"+sess.ID+"/intake", MessageRequest{Message: "first"})
		resp.Body.Close()
		done <- resp.StatusCode
	}()

	<-client.entered
	resp := postJSON(t, srv.URL+"/sessions/"+sess.ID+"/intake", MessageRequest{Message: "second"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(client.block)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestIntake_AfterCompletionConflict(t *testing.T) {
	srv := newTestServer(t, &scriptedClient{intake: []string{doneReply}})
	sess := createSession(t, srv)

	resp := postJSON(t, srv.URL+"/sessions/"+sess.ID+"/intake", MessageRequest{Message: "that's all"})
	turn := decode[IntakeTurnDTO](t, resp)
	assert.True(t, turn.Completed)
	assert.False(t, turn.Active)

	resp = postJSON(t, srv.URL+"/sessions/"+sess.ID+"/intake", MessageRequest{Message: "more"})
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDraft_RequiresCompletedIntake(t *testing.T) {
	srv := newTestServer(t, &scriptedClient{})
	sess := createSession(t, srv)

	resp := postJSON(t, srv.URL+"/sessions/"+sess.ID+"/draft", MessageRequest{Message: "draft"})
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, intelligence.IncompleteWarning, body.Message)
}

func TestDraftAndExportFlow(t *testing.T) {
	srv := newTestServer(t, &scriptedClient{
		intake: []string{doneReply},
		draft:  []string{"# Onboarding PRD\n\n## Goals\n- Activate users faster"},
	})
	sess := createSession(t, srv)
	base := srv.URL + "/sessions/" + sess.ID

	postJSON(t, base+"/intake", MessageRequest{Message: "that's all"}).Body.Close()

	exportResp, err := http.Get(base + "/export?format=md")
	require.NoError(t, err)
	exportResp.Body.Close()
	assert.Equal(t, http.StatusConflict, exportResp.StatusCode)

	resp := postJSON(t, base+"/draft", MessageRequest{Message: "Draft an onboarding PRD"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reply := decode[DraftReplyDTO](t, resp)
	assert.Contains(t, reply.Reply, "# Onboarding PRD")

	getResp, err := http.Get(base + "/draft")
	require.NoError(t, err)
	draft := decode[DraftDTO](t, getResp)
	assert.Len(t, draft.Messages, 2)
	assert.Equal(t, "friendly", draft.CompanyInfo["tone"])

	mdResp, err := http.Get(base + "/export?format=md")
	require.NoError(t, err)
	defer mdResp.Body.Close()
	assert.Equal(t, http.StatusOK, mdResp.StatusCode)
	assert.Equal(t, "text/markdown; charset=utf-8", mdResp.Header.Get("Content-Type"))
	md, err := io.ReadAll(mdResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(md), "company_name: Acme")
	assert.Contains(t, string(md), "## Goals")

	pdfResp, err := http.Get(base + "/export?format=pdf")
	require.NoError(t, err)
	pdfResp.Body.Close()
	assert.Equal(t, "application/pdf", pdfResp.Header.Get("Content-Type"))

	badResp, err := http.Get(base + "/export?format=docx")
	require.NoError(t, err)
	badResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

func TestDraft_StreamsServerSentEvents(t *testing.T) {
	srv := newTestServer(t, &scriptedClient{
		intake: []string{doneReply},
		draft:  []string{"Here is the PRD"},
	})
	sess := createSession(t, srv)
	base := srv.URL + "/sessions/" + sess.ID
	postJSON(t, base+"/intake", MessageRequest{Message: "done"}).Body.Close()

	req, err := http.NewRequest(http.MethodPost, base+"/draft", strings.NewReader(`{"message":"go"}`))
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimPrefix(line, "event: "))
		}
	}
	assert.Equal(t, []string{"delta", "delta", "delta", "delta", "done"}, events)
}
