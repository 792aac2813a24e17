package prompts

import (
	"strings"
	"testing"
	"time"
)

func TestSlotFillingSystemPrompt(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	p := SlotFillingSystemPrompt(now)

	if !strings.HasSuffix(p, "Today's date is 2024-03-05 14:07:09.") {
		t.Errorf("prompt should end with the current date, got tail %q", p[len(p)-50:])
	}
	for _, want := range []string{`"message": string`, `"ticker": string | null`, "q1, q2, q3, q4, fy", "GOOG", "META"} {
		if !strings.Contains(p, want) {
			t.Errorf("slot-filling prompt missing %q", want)
		}
	}
}

func TestAnalystSystemPrompt(t *testing.T) {
	for _, want := range []string{"AI Financial Analyst", "do their own research", "Source Link 1"} {
		if !strings.Contains(AnalystSystemPrompt, want) {
			t.Errorf("analyst prompt missing %q", want)
		}
	}
}

func TestDialogueStrings(t *testing.T) {
	if Apology != "Oops! I broke. Sorry about that!" {
		t.Errorf("Apology: got %q", Apology)
	}
	if Corrective != "Remember, you MUST generate a syntactically correct JSON object." {
		t.Errorf("Corrective: got %q", Corrective)
	}
	if AnotherStockAck != "The user wants to analyze another stock." {
		t.Errorf("AnotherStockAck: got %q", AnotherStockAck)
	}
	if ExitCommand != "exit" {
		t.Errorf("ExitCommand: got %q", ExitCommand)
	}
}
