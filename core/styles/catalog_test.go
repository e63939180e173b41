package styles

import (
	"strings"
	"testing"
)

func TestAllStylesOrder(t *testing.T) {
	want := []string{"jazz", "classical", "electronic", "rock", "ambient", "pop"}
	got := AllStyles()
	if len(got) != len(want) {
		t.Fatalf("AllStyles returned %d styles, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i] != id {
			t.Errorf("AllStyles()[%d] = %q, want %q", i, got[i], id)
		}
	}
}

func TestInfoKnownStyle(t *testing.T) {
	desc, ok := Info("jazz")
	if !ok {
		t.Fatal("Info(jazz) reported unknown style")
	}
	if desc.Name != "Jazz" {
		t.Errorf("Name = %q, want Jazz", desc.Name)
	}
	if desc.Mood != "sophisticated" {
		t.Errorf("Mood = %q, want sophisticated", desc.Mood)
	}
	if len(desc.Keywords) < 3 {
		t.Errorf("jazz has %d keywords, want at least 3", len(desc.Keywords))
	}
}

func TestInfoUnknownStyle(t *testing.T) {
	desc, ok := Info("dubstep")
	if ok {
		t.Error("Info(dubstep) reported a known style")
	}
	if desc.ID != "" {
		t.Errorf("unknown style returned non-zero descriptor: %+v", desc)
	}
}

func TestEnhancePromptUnknownStylePassThrough(t *testing.T) {
	for _, id := range []string{"", "dubstep", "JAZZ", "general"} {
		base := "a calm evening melody"
		if got := EnhancePrompt(base, id); got != base {
			t.Errorf("EnhancePrompt(%q, %q) = %q, want unchanged prompt", base, id, got)
		}
	}
}

func TestEnhancePromptKnownStyles(t *testing.T) {
	base := "a slow waltz for a rainy day"
	for _, id := range AllStyles() {
		got := EnhancePrompt(base, id)
		if !strings.HasPrefix(got, base) {
			t.Errorf("EnhancePrompt(%q, %q) = %q, does not start with the base prompt", base, id, got)
		}
		desc, _ := Info(id)
		if !strings.Contains(got, desc.Mood) {
			t.Errorf("EnhancePrompt(%q, %q) = %q, missing mood %q", base, id, got, desc.Mood)
		}
		for _, kw := range desc.Keywords[:3] {
			if !strings.Contains(got, kw) {
				t.Errorf("EnhancePrompt for %q missing keyword %q", id, kw)
			}
		}
	}
}

func TestEnhancePromptExactFormat(t *testing.T) {
	got := EnhancePrompt("night drive", "electronic")
	want := "night drive, electronic, synth, digital, energetic"
	if got != want {
		t.Errorf("EnhancePrompt = %q, want %q", got, want)
	}
}

func TestSuggestionsNonEmpty(t *testing.T) {
	if n := len(MoodSuggestions()); n != 6 {
		t.Errorf("MoodSuggestions returned %d entries, want 6", n)
	}
	if n := len(InstrumentSuggestions()); n != 5 {
		t.Errorf("InstrumentSuggestions returned %d entries, want 5", n)
	}
	for _, s := range MoodSuggestions() {
		if s.Label == "" || s.Prompt == "" {
			t.Errorf("empty suggestion: %+v", s)
		}
	}
}
