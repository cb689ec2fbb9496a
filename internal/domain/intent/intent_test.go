package intent

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Intent
	}{
		{"symptom", "The door won't close all the way", Diagnose},
		{"contraction keyword", "it doesn't open", Diagnose},
		{"multi-word keyword", "the sensor is not working", Diagnose},
		{"noise", "loud noise when the door opens", Diagnose},
		{"how to", "How to program the controller", Manual},
		{"procedure", "installation procedure for the operator", Manual},
		{"documentation", "where is the documentation", Manual},
		{"part number", "part number for the belt", Parts},
		{"replacement", "I need a replacement roller", Parts},
		{"sku", "what's the sku for this motor", Parts},
		{"no signal", "hello there", General},
		{"empty", "", General},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.query); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	if got := Classify("THE DOOR WON'T CLOSE"); got != Diagnose {
		t.Errorf("expected %q, got %q", Diagnose, got)
	}
}

// A diagnose tie never wins: diagnose must be strictly greater than both
// other scores.
func TestClassify_DiagnoseTieLosesToManual(t *testing.T) {
	// One diagnose hit ("broken"), one manual hit ("manual").
	if got := Classify("broken link in the manual"); got != Manual {
		t.Errorf("expected %q on tie, got %q", Manual, got)
	}
}

func TestClassify_PartsWinsManualTie(t *testing.T) {
	// One manual hit ("install"), one parts hit ("order"). Manual needs a
	// strictly greater score, so the tie falls through to parts.
	if got := Classify("install the order"); got != Parts {
		t.Errorf("expected %q on tie, got %q", Parts, got)
	}
}

func TestClassify_DiagnoseStrictWin(t *testing.T) {
	// Two diagnose hits ("won't", "stuck"), one manual hit ("adjust").
	if got := Classify("door is stuck and won't adjust"); got != Diagnose {
		t.Errorf("expected %q, got %q", Diagnose, got)
	}
}
