package debug

import "testing"

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "test", nil, "test\n"},
		{"depth 1", 1, "indented", nil, "  indented\n"},
		{"depth 2", 2, "double indent", nil, "    double indent\n"},
		{"with formatting", 1, "product %s: %d", []any{"mug", 3}, "  product mug: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tw := NewTreeWriter()
	tw.TextBlock(1, "name", "Team \"A\"")
	tw.TextBlock(0, "empty", "")
	want := "  name: \"Team \\\"A\\\"\"\nempty: \n"
	if got := tw.String(); got != want {
		t.Errorf("TextBlock() = %q, want %q", got, want)
	}
}

func TestTreeWriter_Value(t *testing.T) {
	tw := NewTreeWriter()
	tw.Value(0, "zoom", 1.5)
	tw.Value(0, "missing", nil)
	tw.Value(2, "applied", true)
	want := "zoom: 1.5\n    applied: true\n"
	if got := tw.String(); got != want {
		t.Errorf("Value() = %q, want %q", got, want)
	}
}
