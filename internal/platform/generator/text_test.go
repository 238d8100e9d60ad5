package generator

import "testing"

func TestCleanText(t *testing.T) {
	in := "“Smart” ‘quotes’ – dash— • bullet… café \U0001F680"
	want := `"Smart" 'quotes' - dash- - bullet... caf `
	if got := CleanText(in); got != want {
		t.Fatalf("CleanText:\n got %q\nwant %q", got, want)
	}
}
