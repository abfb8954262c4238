package logger

import (
	"testing"
)

const aptOutput = "Reading package lists...\nBuilding dependency tree...\nE: Unable to locate package nginxx\n"

var lastNLinesTests = []struct {
	testName string
	input    string
	n        int
	want     string
}{{
	testName: "Empty",
	input:    "",
	n:        3,
	want:     "",
}, {
	testName: "ZeroLines",
	input:    aptOutput,
	n:        0,
	want:     "",
}, {
	testName: "LastLine",
	input:    aptOutput,
	n:        1,
	want:     "E: Unable to locate package nginxx\n",
}, {
	testName: "TwoLines",
	input:    aptOutput,
	n:        2,
	want:     "Building dependency tree...\nE: Unable to locate package nginxx\n",
}, {
	testName: "MoreLinesThanThereAre",
	input:    aptOutput,
	n:        20,
	want:     aptOutput,
}, {
	testName: "PartialLastLine",
	input:    "Setting up nginx\nDone",
	n:        1,
	want:     "Done",
}, {
	testName: "LeadingNewline",
	input:    "\npsql: error",
	n:        2,
	want:     "\npsql: error",
}}

func TestLastNLines(t *testing.T) {
	for _, test := range lastNLinesTests {
		t.Run(test.testName, func(t *testing.T) {
			got := string(LastNLines([]byte(test.input), test.n))
			if got != test.want {
				t.Fatalf("unexpected output;\ngot %q\nwant %q", got, test.want)
			}
		})
	}
}
