package xray

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Usage is one user's cumulative byte counters as reported by the
// daemon. The daemon resets them to zero when it restarts.
type Usage struct {
	Up   int64
	Down int64
}

// StatsSource yields per-user traffic counters keyed by username.
type StatsSource interface {
	FetchCounters() (map[string]Usage, error)
}

// CLIStats scrapes the daemon's `api statsquery` text output. The format
// is loosely structured and version-dependent; unparseable lines are
// skipped rather than failing the whole fetch.
type CLIStats struct {
	Binary string // path to the xray binary
	Server string // stats API address, e.g. 127.0.0.1:10085
}

func (s CLIStats) FetchCounters() (map[string]Usage, error) {
	up, err := s.query("uplink")
	if err != nil {
		return nil, err
	}
	down, err := s.query("downlink")
	if err != nil {
		return nil, err
	}
	counters := make(map[string]Usage, len(up))
	for user, v := range up {
		counters[user] = Usage{Up: v}
	}
	for user, v := range down {
		u := counters[user]
		u.Down = v
		counters[user] = u
	}
	return counters, nil
}

func (s CLIStats) query(direction string) (map[string]int64, error) {
	bin := s.Binary
	if bin == "" {
		bin = "xray"
	}
	pattern := fmt.Sprintf("user>>>*>>>traffic>>>%s", direction)
	out, err := exec.Command(bin, "api", "statsquery",
		"--server="+s.Server, "--pattern", pattern).Output()
	if err != nil {
		return nil, fmt.Errorf("statsquery %s: %w", direction, err)
	}
	return ParseStats(string(out)), nil
}

// ParseStats extracts username/value pairs from statsquery output lines
// of the shape "name: user>>>email>>>traffic>>>uplink value: 12345".
func ParseStats(output string) map[string]int64 {
	counters := make(map[string]int64)
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "user>>>") {
			continue
		}
		fields := strings.Fields(line)
		var name, value string
		for i := 0; i < len(fields)-1; i++ {
			switch fields[i] {
			case "name:":
				name = fields[i+1]
			case "value:":
				value = fields[i+1]
			}
		}
		parts := strings.Split(name, ">>>")
		if len(parts) < 2 || value == "" {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		counters[parts[1]] = n
	}
	return counters
}
