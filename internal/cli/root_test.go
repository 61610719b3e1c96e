package cli

import "testing"

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "starwatch" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	want := []string{"watch", "render", "inspect", "validate", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Missing subcommand: %s", name)
		}
	}
}
