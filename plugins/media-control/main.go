// Command media-control is a mudra plugin that drives the active media
// player. It uses playerctl on Linux and AppleScript on macOS.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request is read from stdin.
type Request struct {
	Action  string          `json:"action"`
	Command string          `json:"command"`
	Gesture string          `json:"gesture"`
	Score   float64         `json:"score"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type params struct {
	// DryRun reports the command that would run without running it.
	DryRun bool   `json:"dry_run"`
	Player string `json:"player"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var p params
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			writeErrorResponse(fmt.Sprintf("invalid params: %v", err))
			return
		}
	}

	argv, err := commandFor(runtime.GOOS, req.Action, p.Player)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	if !p.DryRun {
		if out, err := exec.Command(argv[0], argv[1:]...).CombinedOutput(); err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v: %s", req.Action, err, out))
			return
		}
	}

	data, _ := json.Marshal(map[string]any{"argv": argv, "dry_run": p.DryRun})
	writeResponse(Response{Success: true, Data: data})
}

// commandFor returns the process that performs action on goos.
func commandFor(goos, action, player string) ([]string, error) {
	switch goos {
	case "darwin":
		key, ok := map[string]string{
			"play":       "play",
			"pause":      "pause",
			"play-pause": "playpause",
		}[action]
		if !ok {
			return nil, fmt.Errorf("unknown action: %s", action)
		}
		app := player
		if app == "" {
			app = "Music"
		}
		return []string{"osascript", "-e", fmt.Sprintf(`tell application %q to %s`, app, key)}, nil
	case "linux":
		verb, ok := map[string]string{
			"play":       "play",
			"pause":      "pause",
			"play-pause": "play-pause",
		}[action]
		if !ok {
			return nil, fmt.Errorf("unknown action: %s", action)
		}
		argv := []string{"playerctl"}
		if player != "" {
			argv = append(argv, "--player="+player)
		}
		return append(argv, verb), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

func writeErrorResponse(msg string) {
	writeResponse(Response{Success: false, Error: msg})
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
