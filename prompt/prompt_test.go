package prompt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

var yesNoTests = []struct {
	testName string
	input    string
	want     bool
}{{
	testName: "Yes",
	input:    "y\n",
	want:     true,
}, {
	testName: "CRLF",
	input:    "y\r\n",
	want:     true,
}, {
	testName: "UpperYes",
	input:    "Y\n",
	want:     false,
}, {
	testName: "PaddedYes",
	input:    " y \n",
	want:     false,
}, {
	testName: "No",
	input:    "n\n",
	want:     false,
}, {
	testName: "Word",
	input:    "yes\n",
	want:     false,
}, {
	testName: "Empty",
	input:    "",
	want:     false,
}}

func TestYesNo(t *testing.T) {
	for _, test := range yesNoTests {
		t.Run(test.testName, func(t *testing.T) {
			var out bytes.Buffer
			p := New(strings.NewReader(test.input), &out)
			got, err := p.YesNo("Reset?")
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, got, qt.Equals, test.want)
			qt.Assert(t, out.String(), qt.Equals, "Reset? [y/n]: ")
		})
	}
}

func TestInputSequence(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("blog\n  bloguser \nlast"), &out)
	name, err := p.Input("Database name")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, name, qt.Equals, "blog")
	user, err := p.Input("Database username")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, user, qt.Equals, "bloguser")
	last, err := p.Input("Domain")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, last, qt.Equals, "last")
	_, err = p.Input("Missing")
	qt.Assert(t, errors.Is(err, ErrNoInput), qt.IsTrue)
}

func TestPasswordKeepsSpaces(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader(" s3cr'et \n"), &out)
	pw, err := p.Password("Database password")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, pw, qt.Equals, " s3cr'et ")
}

func TestAnswersLeaveRemainingInput(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("y\nnew password\nnew password\n")
	p := New(in, &out)
	ok, err := p.YesNo("Reset?")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, ok, qt.IsTrue)
	rest, err := io.ReadAll(in)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(rest), qt.Equals, "new password\nnew password\n")
}
