package siteprov

import (
	"context"
	"fmt"
)

// Step is a named unit of a provisioning run.
type Step struct {
	Name  string
	Title string
	// DependsOn names steps that must succeed (or be skipped) before
	// this one runs.
	DependsOn []string

	run func(p *Provisioner, ctx context.Context) error
}

// Plan is a validated list of steps in execution order.
type Plan struct {
	Steps []*Step
	// Levels groups the steps by dependency depth: steps in a level
	// depend only on steps in earlier levels.
	Levels [][]*Step

	byName map[string]*Step
}

// NewPlan validates steps and returns them as a plan. Every dependency
// must name a step declared earlier in the list.
func NewPlan(steps []*Step) (*Plan, error) {
	p := &Plan{
		Steps:  steps,
		byName: make(map[string]*Step, len(steps)),
	}
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if _, ok := p.byName[s.Name]; ok {
			return nil, fmt.Errorf("duplicate step %q", s.Name)
		}
		p.byName[s.Name] = s
		index[s.Name] = i
	}
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if _, ok := p.byName[dep]; !ok {
				return nil, fmt.Errorf("step %q depends on unknown step %q", s.Name, dep)
			}
		}
	}
	sorted, cycles := topoSort(steps, p.byName)
	if len(cycles) > 0 {
		return nil, fmt.Errorf("dependency cycle: %s", dumpCycles(cycles))
	}
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if index[dep] > index[s.Name] {
				return nil, fmt.Errorf("step %q depends on %q, which runs later", s.Name, dep)
			}
		}
	}

	depth := make(map[string]int, len(steps))
	for _, name := range sorted {
		d := 0
		for _, dep := range p.byName[name].DependsOn {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[name] = d
	}
	for _, s := range steps {
		d := depth[s.Name]
		for len(p.Levels) <= d {
			p.Levels = append(p.Levels, nil)
		}
		p.Levels[d] = append(p.Levels[d], s)
	}
	return p, nil
}

// Step returns the named step, or nil.
func (p *Plan) Step(name string) *Step {
	return p.byName[name]
}

// Names returns the step names in execution order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Name
	}
	return names
}

// The topological sort below is derived from the code in the
// v.io/x/lib/toposort package as later modified inside
// github.com/rogpeppe/generic/graph.

// topoSort returns the step names in dependency order, along with some of
// the cycles (if any) that were encountered. len(cycles)==0 iff there are
// no cycles. The result only depends on the order of steps.
func topoSort(steps []*Step, byName map[string]*Step) (sorted []string, cycles [][]string) {
	v := &visitor{
		steps: byName,
		done:  make(map[string]bool),
	}
	for _, s := range steps {
		v.visiting = make(map[string]bool)
		cycles = append(cycles, v.visit(s.Name)...)
	}
	return v.sorted, cycles
}

type visitor struct {
	steps    map[string]*Step
	done     map[string]bool
	visiting map[string]bool
	sorted   []string
}

// visit performs a depth-first search from n. On hitting a node that is
// still being visited, it starts a cycle; as the recursion unwinds each
// node appends itself until the cycle is closed.
func (v *visitor) visit(n string) (cycles [][]string) {
	if v.done[n] {
		return nil
	}
	if v.visiting[n] {
		return [][]string{{n}}
	}
	v.visiting[n] = true
	for _, dep := range v.steps[n].DependsOn {
		cycles = append(cycles, v.visit(dep)...)
	}
	v.done[n] = true
	v.sorted = append(v.sorted, n)
	// A self-cycle is represented as the same node appearing twice.
	for i, cycle := range cycles {
		if len(cycle) == 1 || cycle[0] != cycle[len(cycle)-1] {
			cycles[i] = append(cycle, n)
		}
	}
	return cycles
}

func dumpCycles(cycles [][]string) string {
	var str string
	for i, cycle := range cycles {
		if i > 0 {
			str += " "
		}
		str += "["
		for j, node := range cycle {
			if j > 0 {
				str += " <= "
			}
			str += node
		}
		str += "]"
	}
	return str
}
