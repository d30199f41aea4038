// Package explore populates the abstract reachability graph. It pops nodes
// off the reached set's waitlist, computes their successors with a domain
// and covers new nodes by existing ones at the same location. Exploration
// stops at the first target so the caller can refine.
package explore
