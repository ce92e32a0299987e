package gateway

import "testing"

func TestKnownAction(t *testing.T) {
	for _, action := range Actions {
		if !KnownAction(action) {
			t.Fatalf("registered action %q reported unknown", action)
		}
	}
	for _, action := range []string{"", "generateSequel", "GENERATETITLE", "generateTitle "} {
		if KnownAction(action) {
			t.Fatalf("unregistered action %q reported known", action)
		}
	}
}

func TestMediaAction(t *testing.T) {
	media := map[string]bool{
		ActionPosterImage:  true,
		ActionTrailerAudio: true,
	}
	for _, action := range Actions {
		if got := MediaAction(action); got != media[action] {
			t.Fatalf("MediaAction(%q) = %v, want %v", action, got, media[action])
		}
	}
}
