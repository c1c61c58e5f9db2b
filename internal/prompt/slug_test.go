package prompt

import "testing"

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Write an Email", "write-an-email"},
		{"  Hello,   World!  ", "hello-world"},
		{"Q3 Report (v2)", "q3-report-v2"},
		{"---", "prompt"},
		{"", "prompt"},
		{"Ünïcode Tîtle", "n-code-t-tle"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}
