package discovery

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
)

// Toolbox App state file. Only the fields discovery needs are declared.
// Tools and projects stay raw so one malformed element is skipped alone.
type toolboxState struct {
	Tools []json.RawMessage `json:"tools"`
}

type toolboxTool struct {
	ToolID          string            `json:"toolId"`
	ChannelID       string            `json:"channelId"`
	ProductCode     string            `json:"productCode"`
	DisplayName     string            `json:"displayName"`
	InstallLocation string            `json:"installLocation"`
	LaunchCommand   string            `json:"launchCommand"`
	RecentProjects  []json.RawMessage `json:"recentProjects"`
}

type toolboxProject struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	LastOpened int64  `json:"lastOpened"`
}

func (t toolboxTool) executable() string {
	if t.LaunchCommand == "" {
		return ""
	}
	if filepath.IsAbs(t.LaunchCommand) || t.InstallLocation == "" {
		return t.LaunchCommand
	}
	return filepath.Join(t.InstallLocation, t.LaunchCommand)
}

// parseToolbox reads the toolbox state and keeps the channels whose product
// code is one of codes. Comments and trailing commas are tolerated.
func parseToolbox(data []byte, codes []string, home string) ([]entry, int, error) {
	var state toolboxState
	if err := json.Unmarshal(jsonc.ToJSON(data), &state); err != nil {
		return nil, 0, fmt.Errorf("failed to parse toolbox state: %w", err)
	}

	var out []entry
	skipped := 0
	for _, raw := range state.Tools {
		var tool toolboxTool
		if err := json.Unmarshal(raw, &tool); err != nil {
			skipped++
			continue
		}
		if !slices.Contains(codes, tool.ProductCode) {
			continue
		}
		exe := tool.executable()
		for _, rawProject := range tool.RecentProjects {
			var p toolboxProject
			if err := json.Unmarshal(rawProject, &p); err != nil {
				skipped++
				continue
			}
			path := expandTilde(expandHome(p.Path, home), home)
			if path == "" || !filepath.IsAbs(path) {
				skipped++
				continue
			}
			e := entry{path: path, name: strings.TrimSpace(p.Name), executable: exe}
			if p.LastOpened > 0 {
				e.lastOpened = time.UnixMilli(p.LastOpened).UTC()
			}
			out = append(out, e)
		}
	}
	return out, skipped, nil
}

func expandTilde(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}
