// Package cegar runs counterexample-guided abstraction refinement over one
// program: explore until a target shows up, refine, and repeat until the
// program is proven safe, a real counterexample is found or refinement gives
// up.
package cegar
