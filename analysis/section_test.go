package analysis

import "testing"

func TestLabelSectionsFirstIsIntroWhenQuiet(t *testing.T) {
	boundaries := []Boundary{{Time: 10, Frame: 100}, {Time: 30, Frame: 300}}
	frameDuration := 0.1
	rms := make([]float64, 400)
	for i := range rms {
		switch {
		case i < 100:
			rms[i] = 0.05 // quiet intro
		case i < 300:
			rms[i] = 0.8 // loud verse/chorus
		default:
			rms[i] = 0.8
		}
	}

	sections := LabelSections(boundaries, 40, rms, frameDuration, SectionConfig{MinSectionSec: 5})
	if len(sections) == 0 {
		t.Fatal("expected at least one section")
	}
	if sections[0].Type != Intro {
		t.Fatalf("first section type = %v, want Intro", sections[0].Type)
	}
}

func TestFormConcatenatesLetters(t *testing.T) {
	sections := []Section{{Type: Intro}, {Type: Verse}, {Type: Chorus}, {Type: Outro}}
	if got := Form(sections); got != "IACO" {
		t.Fatalf("form = %q, want IACO", got)
	}
}
