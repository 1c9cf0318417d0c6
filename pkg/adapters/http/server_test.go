package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	handheldhttp "github.com/aretw0/handheld/pkg/adapters/http"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type staticDoc string

func (d staticDoc) Render(w io.Writer) error {
	_, err := io.WriteString(w, string(d))
	return err
}

type fakeKiosk struct {
	state     domain.WorkflowState
	dispatchE error
	deleteE   error
	editMode  bool
	lastInput map[string]string
	lastID    string
	onEdit    func(bool)
}

func (k *fakeKiosk) State() domain.WorkflowState { return k.state }
func (k *fakeKiosk) Dispatch(_ context.Context, id string, input map[string]string) error {
	k.lastID, k.lastInput = id, input
	return k.dispatchE
}
func (k *fakeKiosk) DeletePage(context.Context, int) error { return k.deleteE }
func (k *fakeKiosk) ToggleEditMode() bool {
	k.editMode = !k.editMode
	if k.onEdit != nil {
		k.onEdit(k.editMode)
	}
	return k.editMode
}
func (k *fakeKiosk) Document() ports.Renderable { return staticDoc("<html>chrome</html>") }
func (k *fakeKiosk) Report() ports.Renderable   { return staticDoc(`<div class="a4-document"></div>`) }

func newServer(k *fakeKiosk, opts ...handheldhttp.ServerOption) (http.Handler, *handheldhttp.StreamManager) {
	streams := handheldhttp.NewStreamManager(4, nil)
	return handheldhttp.NewHandler(k, streams, opts...), streams
}

func do(h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Documents(t *testing.T) {
	h, _ := newServer(&fakeKiosk{state: domain.NewState("standby_state")})

	rec := do(h, "GET", "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<html>chrome</html>", rec.Body.String())

	rec = do(h, "GET", "/report", "", "")
	assert.Equal(t, `<div class="a4-document"></div>`, rec.Body.String())

	rec = do(h, "GET", "/state", "", "")
	var state domain.WorkflowState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "standby_state", state.CurrentState)

	rec = do(h, "OPTIONS", "/controls/btn-yes", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_PostControlInput(t *testing.T) {
	k := &fakeKiosk{}
	h, _ := newServer(k)

	rec := do(h, "POST", "/controls/standby-form", "application/x-www-form-urlencoded", "partnumber=PN-1&serialnumber=SN-2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "standby-form", k.lastID)
	assert.Equal(t, map[string]string{"partnumber": "PN-1", "serialnumber": "SN-2"}, k.lastInput)

	rec = do(h, "POST", "/controls/project-inspector-form", "application/json", `{"project":"P","inspector":"Ada","count":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"project": "P", "inspector": "Ada", "count": "2"}, k.lastInput)

	rec = do(h, "POST", "/controls/btn-yes", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, k.lastInput)

	rec = do(h, "POST", "/controls/btn-yes", "application/json", `{broken`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", domain.ErrUnknownControl), http.StatusNotFound},
		{fmt.Errorf("%w: x", domain.ErrControlBusy), http.StatusConflict},
		{fmt.Errorf("%w: project", domain.ErrMissingFields), http.StatusUnprocessableEntity},
		{fmt.Errorf("dispatch: %w", domain.ErrTransport), http.StatusBadGateway},
		{fmt.Errorf("dispatch: %w", domain.ErrMalformedResponse), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h, _ := newServer(&fakeKiosk{dispatchE: tt.err})
			rec := do(h, "POST", "/controls/x", "", "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.err.Error())
		})
	}
}

func TestServer_DeletePage(t *testing.T) {
	h, _ := newServer(&fakeKiosk{})
	assert.Equal(t, http.StatusOK, do(h, "POST", "/report/pages/2/delete", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, "POST", "/report/pages/zero/delete", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(h, "POST", "/report/pages/0/delete", "", "").Code)

	h, _ = newServer(&fakeKiosk{deleteE: fmt.Errorf("delete page 9: %w", domain.ErrPageNotFound)})
	assert.Equal(t, http.StatusNotFound, do(h, "POST", "/report/pages/9/delete", "", "").Code)
}

func TestServer_HealthInfoMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "handheld_report_pages 0") })
	h, _ := newServer(&fakeKiosk{state: domain.NewState("inspecting")}, handheldhttp.WithMetrics(metrics))

	assert.JSONEq(t, `{"status":"ok"}`, do(h, "GET", "/health", "", "").Body.String())

	var info map[string]any
	require.NoError(t, json.Unmarshal(do(h, "GET", "/info", "", "").Body.Bytes(), &info))
	assert.Equal(t, "handheld-kiosk", info["app"])
	assert.Equal(t, "inspecting", info["current_state"])

	assert.Equal(t, "handheld_report_pages 0", do(h, "GET", "/metrics", "", "").Body.String())

	h, _ = newServer(&fakeKiosk{})
	assert.Equal(t, http.StatusNotFound, do(h, "GET", "/metrics", "", "").Code)
}

func readEvent(t *testing.T, r *bufio.Reader) map[string]string {
	t.Helper()
	ev := map[string]string{}
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			if len(ev) > 0 {
				return ev
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		key, value, _ := strings.Cut(line, ": ")
		ev[key] = value
	}
}

func TestServer_EventStream(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	k := &fakeKiosk{}
	h, streams := newServer(k, handheldhttp.WithKeepAlive(time.Hour))
	k.onEdit = streams.NotifyEditMode
	srv := httptest.NewServer(h)
	defer srv.Close()

	transport := &http.Transport{}
	defer transport.CloseIdleConnections()
	client := &http.Client{Transport: transport}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, map[string]string{"event": "ping", "data": "connected"}, readEvent(t, reader))
	require.Equal(t, 1, streams.Subscribers())

	streams.Notify(domain.WorkflowState{CurrentState: "inspecting", Data: &domain.Data{Screen: "/cam"}})
	ev := readEvent(t, reader)
	assert.Equal(t, handheldhttp.EventState, ev["event"])
	_, err = ulid.Parse(ev["id"])
	assert.NoError(t, err)
	var state domain.WorkflowState
	require.NoError(t, json.Unmarshal([]byte(ev["data"]), &state))
	assert.Equal(t, "inspecting", state.CurrentState)

	rec := do(h, "POST", "/report/edit-mode", "", "")
	assert.JSONEq(t, `{"edit_mode":true}`, rec.Body.String())
	ev = readEvent(t, reader)
	assert.Equal(t, handheldhttp.EventEditMode, ev["event"])
	assert.JSONEq(t, `{"edit_mode":true}`, ev["data"])

	cancel()
	resp.Body.Close()
	require.Eventually(t, func() bool { return streams.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	streams := handheldhttp.NewStreamManager(1, nil)
	ch, cancel := streams.Subscribe()

	streams.Broadcast("a", []byte("1"))
	streams.Broadcast("b", []byte("2"))

	ev := <-ch
	assert.Equal(t, "a", ev.Name)
	select {
	case <-ch:
		t.Fatal("second event should have been dropped")
	default:
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, streams.Subscribers())
}
