package siteprov

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

type node struct {
	name string
	deps []string
}

func stepsFor(nodes []node) []*Step {
	var steps []*Step
	for _, n := range nodes {
		steps = append(steps, &Step{Name: n.name, DependsOn: n.deps})
	}
	return steps
}

func levelNames(levels [][]*Step) [][]string {
	result := make([][]string, len(levels))
	for i, steps := range levels {
		result[i] = make([]string, len(steps))
		for j, s := range steps {
			result[i][j] = s.Name
		}
	}
	return result
}

var newPlanTests = []struct {
	testName string
	steps    []node
	want     [][]string
}{{
	testName: "Initial",
	steps: []node{
		{"B", nil},
		{"D", nil},
		{"F", nil},
		{"E", []string{"F"}},
		{"C", []string{"D", "E"}},
		{"A", []string{"B", "C", "F"}},
	},
	want: [][]string{
		{"B", "D", "F"},
		{"E"},
		{"C"},
		{"A"},
	},
}, {
	testName: "Independent",
	steps: []node{
		{"A", nil},
		{"B", nil},
		{"C", nil},
		{"D", nil},
	},
	want: [][]string{{"A", "B", "C", "D"}},
}, {
	testName: "WithJoin",
	steps: []node{
		{"E", nil},
		{"F", nil},
		{"G", nil},
		{"D", []string{"E", "F"}},
		{"B", []string{"D"}},
		{"C", []string{"D", "F"}},
		{"A", []string{"B", "C", "G"}},
	},
	want: [][]string{
		{"E", "F", "G"},
		{"D"},
		{"B", "C"},
		{"A"},
	},
}}

func TestNewPlan(t *testing.T) {
	for _, test := range newPlanTests {
		t.Run(test.testName, func(t *testing.T) {
			steps := stepsFor(test.steps)
			plan, err := NewPlan(steps)
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, levelNames(plan.Levels), qt.DeepEquals, test.want)
			for i := range steps {
				qt.Assert(t, plan.Steps[i] == steps[i], qt.IsTrue)
			}
		})
	}
}

var newPlanErrorTests = []struct {
	testName string
	steps    []node
	err      string
}{{
	testName: "Duplicate",
	steps:    []node{{"a", nil}, {"a", nil}},
	err:      `duplicate step "a"`,
}, {
	testName: "Unknown",
	steps:    []node{{"a", []string{"b"}}},
	err:      `step "a" depends on unknown step "b"`,
}, {
	testName: "Cycle",
	steps:    []node{{"a", []string{"b"}}, {"b", []string{"a"}}},
	err:      `dependency cycle: \[a <= b <= a\]`,
}, {
	testName: "SelfCycle",
	steps:    []node{{"a", []string{"a"}}},
	err:      `dependency cycle: \[a <= a\]`,
}, {
	testName: "RunsLater",
	steps:    []node{{"a", []string{"b"}}, {"b", nil}},
	err:      `step "a" depends on "b", which runs later`,
}}

func TestNewPlanErrors(t *testing.T) {
	for _, test := range newPlanErrorTests {
		t.Run(test.testName, func(t *testing.T) {
			_, err := NewPlan(stepsFor(test.steps))
			qt.Assert(t, err, qt.ErrorMatches, test.err)
		})
	}
}

func TestProvisioningPlan(t *testing.T) {
	c := qt.New(t)
	plan, err := NewPlan(Steps())
	c.Assert(err, qt.IsNil)
	c.Assert(plan.Names(), qt.DeepEquals, []string{
		"password", "firewall", "packages", "database", "virtualenv", "settings",
		"bootstrap", "gunicorn", "nginx", "certificate", "renewal",
	})
	c.Assert(levelNames(plan.Levels), qt.DeepEquals, [][]string{
		{"password", "firewall", "packages", "settings"},
		{"database", "virtualenv"},
		{"bootstrap"},
		{"gunicorn"},
		{"nginx"},
		{"certificate"},
		{"renewal"},
	})
	c.Assert(plan.Step("nginx").DependsOn, qt.DeepEquals, []string{"gunicorn"})
	c.Assert(plan.Step("nope"), qt.IsNil)
}
