package commands_test

import (
	"testing"

	"taskdeck/internal/commands"
)

func TestRegistryResolvesAliases(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatal(err)
	}

	byName, ok := r.Find("add")
	if !ok {
		t.Fatal("primary name should resolve")
	}
	byAlias, ok := r.Find("create")
	if !ok {
		t.Fatal("alias should resolve")
	}
	if byName != byAlias {
		t.Error("name and alias should resolve to the same command")
	}
}

func TestRegistryRejectsCollisions(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&commands.AddCmd{}); err == nil {
		t.Error("registering the same name twice should fail")
	}
}

func TestRegistryAllIsSortedAndUnique(t *testing.T) {
	r := commands.NewRegistry()
	for _, c := range []commands.Command{&commands.RmCmd{}, &commands.AddCmd{}, &commands.ListCmd{}} {
		if err := r.Register(c); err != nil {
			t.Fatal(err)
		}
	}

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 commands despite aliases, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name() >= all[i].Name() {
			t.Errorf("commands out of order: %q before %q", all[i-1].Name(), all[i].Name())
		}
	}
}
