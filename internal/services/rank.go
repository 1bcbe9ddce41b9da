package services

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Tier is one rung of the rank ladder.
type Tier struct {
	MinXP int    `yaml:"min_xp"`
	Level int    `yaml:"level"`
	Title string `yaml:"title"`
	Icon  string `yaml:"icon"`
}

// Ladder is the ascending tier table shared by every rank call site. Both the
// dashboard read path and the snapshot write path rank against the same
// instance so they can never disagree.
type Ladder []Tier

// RankInfo is the derived rank for a cumulative XP total.
type RankInfo struct {
	Level          int     `json:"level"`
	Title          string  `json:"title"`
	Icon           string  `json:"icon"`
	ProgressToNext float64 `json:"progress_to_next"`
	NextTitle      string  `json:"next_title,omitempty"`
}

// DefaultLadder is the built-in ten-tier ladder: one badge unlocks per tier
// crossed, so a learner's badge count equals their level.
func DefaultLadder() Ladder {
	return Ladder{
		{MinXP: 0, Level: 1, Title: "New Star", Icon: "⭐"},
		{MinXP: 100, Level: 2, Title: "Seeker", Icon: "🌱"},
		{MinXP: 200, Level: 3, Title: "Explorer", Icon: "🧭"},
		{MinXP: 300, Level: 4, Title: "Reciter", Icon: "📖"},
		{MinXP: 400, Level: 5, Title: "Memorizer", Icon: "🧠"},
		{MinXP: 500, Level: 6, Title: "Storyteller", Icon: "📜"},
		{MinXP: 600, Level: 7, Title: "Helper", Icon: "🤝"},
		{MinXP: 700, Level: 8, Title: "Guide", Icon: "🕌"},
		{MinXP: 800, Level: 9, Title: "Sage", Icon: "🎓"},
		{MinXP: 900, Level: 10, Title: "Young Scholar", Icon: "🏆"},
	}
}

// LoadLadder reads a replacement ladder from YAML. The thresholds are policy,
// not domain constants, so deployments can re-tune them without a rebuild.
func LoadLadder(r io.Reader) (Ladder, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ladder: %w", err)
	}
	var out struct {
		Tiers []Tier `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse ladder: %w", err)
	}
	ladder := Ladder(out.Tiers)
	if err := ladder.validate(); err != nil {
		return nil, err
	}
	return ladder, nil
}

// LoadLadderFile returns the default ladder when path is empty.
func LoadLadderFile(path string) (Ladder, error) {
	if path == "" {
		return DefaultLadder(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ladder file: %w", err)
	}
	defer f.Close()
	return LoadLadder(f)
}

func (l Ladder) validate() error {
	if len(l) == 0 {
		return fmt.Errorf("ladder has no tiers")
	}
	if l[0].MinXP != 0 {
		return fmt.Errorf("first tier must start at 0 XP, got %d", l[0].MinXP)
	}
	if !sort.SliceIsSorted(l, func(i, j int) bool { return l[i].MinXP < l[j].MinXP }) {
		return fmt.Errorf("tier thresholds must be strictly ascending")
	}
	for i := 1; i < len(l); i++ {
		if l[i].MinXP == l[i-1].MinXP {
			return fmt.Errorf("duplicate tier threshold %d", l[i].MinXP)
		}
	}
	return nil
}

// Rank maps cumulative XP to the highest tier whose threshold it has reached.
// Negative input clamps to 0. At the top tier progress reports 100 with no
// next title.
func (l Ladder) Rank(totalXP int) RankInfo {
	if totalXP < 0 {
		totalXP = 0
	}

	idx := 0
	for i := range l {
		if l[i].MinXP <= totalXP {
			idx = i
		} else {
			break
		}
	}

	current := l[idx]
	info := RankInfo{
		Level: current.Level,
		Title: current.Title,
		Icon:  current.Icon,
	}

	if idx == len(l)-1 {
		info.ProgressToNext = 100
		return info
	}

	next := l[idx+1]
	span := next.MinXP - current.MinXP
	progress := float64(totalXP-current.MinXP) / float64(span) * 100
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	info.ProgressToNext = progress
	info.NextTitle = next.Title
	return info
}

// Badges returns the titles unlocked at or below the given level, oldest
// first, for the dashboard's badge shelf.
func (l Ladder) Badges(level int) []string {
	out := make([]string, 0, len(l))
	for _, t := range l {
		if t.Level <= level {
			out = append(out, t.Title)
		}
	}
	return out
}
