package upstream

import "testing"

func TestStripHTML(t *testing.T) {
	cases := map[string]string{
		"<p>Hello <b>world</b></p>":        "Hello world",
		"no tags here":                     "no tags here",
		"line1<br>line2":                   "line1 line2",
		"&amp; and &lt;tag&gt;":            "& and <tag>",
		"  <div>  extra   spaces </div> ":  "extra spaces",
	}

	for input, want := range cases {
		if got := StripHTML(input); got != want {
			t.Errorf("StripHTML(%q) = %q, want %q", input, got, want)
		}
	}
}
