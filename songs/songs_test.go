package songs

import (
	"testing"
	"time"

	"go-piano/dsp"
)

func TestLookup_AllSongsValid(t *testing.T) {
	for _, name := range Names() {
		plan, title, ok := Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) not found", name)
		}
		if title == "" {
			t.Errorf("%s has no title", name)
		}
		if len(plan) == 0 {
			t.Errorf("%s is empty", name)
		}
		if err := plan.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) found a song")
	}
}

func TestLookup_ReturnsCopy(t *testing.T) {
	plan, _, _ := Lookup("scale")
	plan[0].Frequency = 1
	again, _, _ := Lookup("scale")
	if again[0].Frequency != C4 {
		t.Error("Lookup exposed the catalog's backing array")
	}
}

func TestScale_IsCMajor(t *testing.T) {
	plan, _, _ := Lookup("scale")
	want := []int{60, 62, 64, 65, 67, 69, 71, 72}
	if len(plan) != len(want) {
		t.Fatalf("scale has %d notes, want %d", len(plan), len(want))
	}
	for i, n := range plan {
		if k := dsp.FrequencyToNote(n.Frequency); k != want[i] {
			t.Errorf("note %d key = %d, want %d", i, k, want[i])
		}
	}
	if d := plan.Duration(50 * time.Millisecond); d != 8*400*time.Millisecond+7*50*time.Millisecond {
		t.Errorf("scale duration = %v", d)
	}
}

func TestHappyBirthday_Shape(t *testing.T) {
	plan, _, _ := Lookup(Default)
	if len(plan) != 25 {
		t.Fatalf("len = %d, want 25", len(plan))
	}
	long := 0
	for _, n := range plan {
		if n.Duration == 1.8 {
			long++
		}
	}
	if long != 4 {
		t.Errorf("%d long notes, want one per phrase (4)", long)
	}
}
