// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file holds the structural analyses run once the automaton exists:
// recursion detection over the call graph and loop-exit detection over
// strongly connected components. Both walk with explicit stacks.
//

package cfa

import "sort"

// findRecursion returns a call cycle, or nil if the call graph is acyclic.
func findRecursion(p *Program, order []string) []string {
	callees := make(map[string][]string)
	for _, e := range p.Edges {
		if e.Kind == CallEdge {
			callees[e.From.Function] = append(callees[e.From.Function], e.Callee.Name)
		}
	}
	for fn := range callees {
		sort.Strings(callees[fn])
	}

	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int)
	type frame struct {
		fn   string
		next int
	}

	for _, start := range order {
		if color[start] != white {
			continue
		}
		stack := []frame{{fn: start}}
		color[start] = grey
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(callees[top.fn]) {
				color[top.fn] = black
				stack = stack[:len(stack)-1]
				continue
			}
			callee := callees[top.fn][top.next]
			top.next++
			switch color[callee] {
			case grey:
				var cycle []string
				for i := range stack {
					if stack[i].fn == callee || cycle != nil {
						cycle = append(cycle, stack[i].fn)
					}
				}
				return append(cycle, callee)
			case white:
				color[callee] = grey
				stack = append(stack, frame{fn: callee})
			}
		}
	}
	return nil
}

// intraSuccessors lists the successors of loc within its own function. A call
// edge is replaced by its return site.
func intraSuccessors(loc *Location) []*Location {
	var out []*Location
	for _, e := range loc.Leaving {
		switch e.Kind {
		case ReturnEdge:
		case CallEdge:
			out = append(out, e.ReturnSite)
		default:
			out = append(out, e.To)
		}
	}
	return out
}

// markLoopExits finds the strongly connected components of the
// intraprocedural graph with Tarjan's algorithm and marks every assume edge
// that leaves a non-trivial component. It returns the number of marked edges.
func markLoopExits(p *Program) int {
	n := len(p.Locations)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	comp := make([]int, n)
	for i := range index {
		index[i] = -1
	}
	var sccStack []int
	next, comps := 0, 0
	compSize := []int{}

	type frame struct {
		v    int
		succ []*Location
		i    int
	}

	for _, root := range p.Locations {
		if index[root.ID] >= 0 {
			continue
		}
		work := []frame{{v: root.ID, succ: intraSuccessors(root)}}
		index[root.ID], low[root.ID] = next, next
		next++
		sccStack = append(sccStack, root.ID)
		onStack[root.ID] = true

		for len(work) > 0 {
			top := &work[len(work)-1]
			if top.i < len(top.succ) {
				w := top.succ[top.i].ID
				top.i++
				if index[w] < 0 {
					index[w], low[w] = next, next
					next++
					sccStack = append(sccStack, w)
					onStack[w] = true
					work = append(work, frame{v: w, succ: intraSuccessors(p.Locations[w])})
				} else if onStack[w] && index[w] < low[top.v] {
					low[top.v] = index[w]
				}
				continue
			}

			v := top.v
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1].v
				if low[v] < low[parent] {
					low[parent] = low[v]
				}
			}
			if low[v] == index[v] {
				size := 0
				for {
					w := sccStack[len(sccStack)-1]
					sccStack = sccStack[:len(sccStack)-1]
					onStack[w] = false
					comp[w] = comps
					size++
					if w == v {
						break
					}
				}
				compSize = append(compSize, size)
				comps++
			}
		}
	}

	selfLoop := make(map[int]bool)
	for _, loc := range p.Locations {
		for _, s := range intraSuccessors(loc) {
			if s == loc {
				selfLoop[loc.ID] = true
			}
		}
	}

	marked := 0
	for _, e := range p.Edges {
		if e.Kind != AssumeEdge {
			continue
		}
		c := comp[e.From.ID]
		inLoop := compSize[c] > 1 || selfLoop[e.From.ID]
		if inLoop && comp[e.To.ID] != c {
			e.LoopExit = true
			marked++
		}
	}
	return marked
}
