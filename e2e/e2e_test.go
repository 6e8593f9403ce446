package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

// installPlugin writes a media-control stand-in that appends every request
// to requests.log and reports success.
func installPlugin(t *testing.T, root string) string {
	t.Helper()

	dir := filepath.Join(root, "media-control")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir plugin: %v", err)
	}
	manifest := `{"name":"media-control","executable":"run.sh","actions":["play","pause"]}`
	if err := os.WriteFile(filepath.Join(dir, plugin.ManifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	script := "#!/bin/sh\ncat >> requests.log\necho >> requests.log\necho '{\"success\":true}'\n"
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return filepath.Join(dir, "requests.log")
}

type stack struct {
	app   *app.App
	store *store.Store
	ts    *httptest.Server
	log   string
}

func newStack(t *testing.T, configure ...func(*config.Config)) *stack {
	t.Helper()

	tmpDir := t.TempDir()
	pluginDir := filepath.Join(tmpDir, "plugins")
	requestLog := installPlugin(t, pluginDir)

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg := config.Default()
	cfg.PluginDir = &pluginDir
	for _, fn := range configure {
		fn(cfg)
	}

	a, err := app.New(cfg, app.Options{Store: s})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(a.Stop)

	ts := httptest.NewServer(server.New(server.Config{App: a}))
	t.Cleanup(ts.Close)

	return &stack{app: a, store: s, ts: ts, log: requestLog}
}

func (st *stack) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(st.ts.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial stream: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// perform streams a builtin template as pinch ticks, ends the attempt and
// returns the broadcast recognition.
func perform(t *testing.T, conn *websocket.Conn, name string) app.Recognition {
	t.Helper()

	var tpl gesture.Template
	for _, b := range gesture.BuiltinTemplates() {
		if b.Name == name {
			tpl = b
		}
	}
	if len(tpl.Points) == 0 {
		t.Fatalf("no builtin template %q", name)
	}
	return replay(t, conn, tpl.Points)
}

// replay streams points as pinch ticks with a released pinch between
// strokes, then flushes and reads the broadcast recognition.
func replay(t *testing.T, conn *websocket.Conn, points []geometry.Point) app.Recognition {
	t.Helper()

	for i, p := range points {
		if i > 0 && p.StrokeID != points[i-1].StrokeID {
			if err := conn.WriteJSON(map[string]bool{"pinch": false}); err != nil {
				t.Fatalf("write gap: %v", err)
			}
		}
		if err := conn.WriteJSON(map[string]float64{"x": p.X, "y": p.Y}); err != nil {
			t.Fatalf("write tick: %v", err)
		}
	}
	if err := conn.WriteJSON(map[string]bool{"flush": true}); err != nil {
		t.Fatalf("write flush: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg server.StreamMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read recognition: %v", err)
	}
	if msg.Type != "recognition" || msg.Recognition == nil {
		t.Fatalf("message = %+v, want a recognition", msg)
	}
	return *msg.Recognition
}

func getJSON(t *testing.T, client *http.Client, url string, v interface{}) {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestE2E_GestureToMediaCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("shell plugins are not supported on Windows")
	}

	st := newStack(t)
	conn := st.dial(t)
	client := st.ts.Client()

	var ids []string

	t.Run("PlayThenPause", func(t *testing.T) {
		for _, name := range []string{gesture.NamePlay, gesture.NamePause} {
			rec := perform(t, conn, name)
			if rec.Name != name {
				t.Fatalf("recognized %q, want %q", rec.Name, name)
			}
			if rec.Score < 0.9 {
				t.Errorf("score = %f, want > 0.9 for a builtin replay", rec.Score)
			}
			ids = append(ids, rec.ID)
		}

		data, err := os.ReadFile(st.log)
		if err != nil {
			t.Fatalf("read request log: %v", err)
		}
		requests := strings.Count(string(data), `"command":`)
		if requests != 2 {
			t.Errorf("plugin ran %d times, want 2", requests)
		}
		if !strings.Contains(string(data), `"action":"play"`) || !strings.Contains(string(data), `"action":"pause"`) {
			t.Errorf("request log missing actions: %s", data)
		}
	})

	t.Run("RepeatIsIgnored", func(t *testing.T) {
		rec := perform(t, conn, gesture.NamePause)
		ids = append(ids, rec.ID)

		if got := st.app.Controller().Fired(); got != 2 {
			t.Errorf("Fired() = %d, want 2", got)
		}
		if got := st.app.Controller().State(); got != app.Pause {
			t.Errorf("State() = %v, want pause", got)
		}
	})

	t.Run("Journal", func(t *testing.T) {
		var list struct {
			Recognitions []store.Recognition `json:"recognitions"`
			Counts       map[string]int      `json:"counts"`
		}
		getJSON(t, client, st.ts.URL+"/api/recognitions", &list)

		if len(list.Recognitions) != 3 {
			t.Fatalf("journaled %d recognitions, want 3", len(list.Recognitions))
		}
		if list.Counts[gesture.NamePause] != 2 || list.Counts[gesture.NamePlay] != 1 {
			t.Errorf("counts = %v", list.Counts)
		}

		var detail struct {
			ID      string          `json:"id"`
			Actions []*store.Action `json:"actions"`
		}
		getJSON(t, client, st.ts.URL+"/api/recognitions/"+ids[0], &detail)
		if len(detail.Actions) != 1 || !detail.Actions[0].Success || detail.Actions[0].ActionName != "play" {
			t.Errorf("actions for %s = %+v", ids[0], detail.Actions)
		}

		getJSON(t, client, st.ts.URL+"/api/recognitions/"+ids[2], &detail)
		if len(detail.Actions) != 0 {
			t.Errorf("repeated pause recorded %d actions, want 0", len(detail.Actions))
		}
	})

	t.Run("Status", func(t *testing.T) {
		var status struct {
			Running    bool     `json:"running"`
			Command    string   `json:"command"`
			Processed  int64    `json:"processed"`
			Actuations int      `json:"actuations"`
			Plugins    []string `json:"plugins"`
			Clients    int      `json:"clients"`
		}
		getJSON(t, client, st.ts.URL+"/api/status", &status)

		if !status.Running || status.Command != "pause" {
			t.Errorf("status = %+v", status)
		}
		if status.Processed != 3 || status.Actuations != 2 {
			t.Errorf("processed = %d actuations = %d, want 3 and 2", status.Processed, status.Actuations)
		}
		if len(status.Plugins) != 1 || status.Clients != 1 {
			t.Errorf("plugins = %v clients = %d, want 1 and 1", status.Plugins, status.Clients)
		}
	})
}

func TestE2E_TrainAndRecognize(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStack(t)
	client := st.ts.Client()

	// Three slightly different "L" attempts.
	var samples [][]map[string]float64
	for k := 0; k < 3; k++ {
		var sample []map[string]float64
		skew := float64(k) * 0.02
		for i := 0; i <= 10; i++ {
			sample = append(sample, map[string]float64{"x": skew, "y": float64(i) / 10})
		}
		for i := 1; i <= 10; i++ {
			sample = append(sample, map[string]float64{"x": float64(i)/10 + skew, "y": 1})
		}
		samples = append(samples, sample)
	}

	body, _ := json.Marshal(map[string]interface{}{"name": "ell", "samples": samples})
	resp, err := client.Post(st.ts.URL+"/api/templates", "application/json", strings.NewReader(string(body)))
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	if st.app.Recognizer().Len() != 3 {
		t.Fatalf("Len() = %d, want 3", st.app.Recognizer().Len())
	}

	attempt, _ := json.Marshal(map[string]interface{}{"points": samples[1]})
	resp, err = client.Post(st.ts.URL+"/api/recognize", "application/json", strings.NewReader(string(attempt)))
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	defer resp.Body.Close()

	var result gesture.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Name != "ell" {
		t.Errorf("recognized %q, want ell", result.Name)
	}
}

// zigzag is an up-down sawtooth sampled at n points in one stroke.
func zigzag(n int) []geometry.Point {
	points := make([]geometry.Point, n)
	for i := range points {
		t := 4 * float64(i) / float64(n-1)
		y := t - float64(int(t))
		if int(t)%2 == 1 {
			y = 1 - y
		}
		points[i] = geometry.Point{X: t * 25, Y: y * 100}
	}
	return points
}

func TestE2E_TemplatesFileAtOtherDensity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	// Neither template is stored at the segmenter's 20 points per stroke.
	path := filepath.Join(t.TempDir(), "templates.json")
	err := gesture.SaveTemplates(path, []gesture.Template{
		{Name: "zigzag", Points: zigzag(57)},
		{Name: "tee", Points: append(line(0, 0, 0, 100, 0, 13), line(1, 50, 0, 50, 100, 29)...)},
	})
	if err != nil {
		t.Fatalf("SaveTemplates() error = %v", err)
	}

	st := newStack(t, func(cfg *config.Config) { cfg.TemplatesFile = &path })
	conn := st.dial(t)

	for _, tc := range []struct {
		name   string
		points []geometry.Point
	}{
		{"zigzag", zigzag(33)},
		{"tee", append(line(0, 0, 0, 100, 0, 45), line(1, 50, 0, 50, 100, 8)...)},
	} {
		rec := replay(t, conn, tc.points)
		if rec.Name != tc.name {
			t.Errorf("recognized %q, want %q", rec.Name, tc.name)
		}
		if rec.Score < 0.9 {
			t.Errorf("%s score = %f, want > 0.9", tc.name, rec.Score)
		}
	}
}

// line is a straight stroke from (x0, y0) to (x1, y1) sampled at n points.
func line(stroke int, x0, y0, x1, y1 float64, n int) []geometry.Point {
	points := make([]geometry.Point, n)
	for i := range points {
		f := float64(i) / float64(n-1)
		points[i] = geometry.Point{X: x0 + (x1-x0)*f, Y: y0 + (y1-y0)*f, StrokeID: stroke}
	}
	return points
}
